package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/XSAM/otelsql"
	"github.com/alimikegami/point-of-sales/storefront-service/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

var lock = &sync.Mutex{}
var db *sqlx.DB

func GetDBInstance(conf config.PostgreSQLConfig) (*sqlx.DB, error) {
	lock.Lock()
	defer lock.Unlock()

	if db != nil {
		log.Info().Str("component", "GetDBInstance").Msg("instance is already created")
		return db, nil
	}

	sqlDB, err := otelsql.Open("postgres",
		fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			conf.DBHost, conf.DBPort, conf.DBUsername, conf.DBPassword, conf.DBName),
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBNameKey.String(conf.DBName),
		),
		otelsql.WithSpanOptions(otelsql.SpanOptions{
			DisableQuery: true,
		}),
	)
	if err != nil {
		return nil, err
	}

	instance := sqlx.NewDb(sqlDB, "postgres")
	if err := instance.Ping(); err != nil {
		return nil, err
	}
	db = instance

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id                     TEXT PRIMARY KEY,
	outlet_id              BIGINT NOT NULL,
	outlet_name            TEXT NOT NULL DEFAULT '',
	customer_name          TEXT NOT NULL,
	customer_phone         TEXT NOT NULL,
	note                   TEXT NOT NULL DEFAULT '',
	total                  BIGINT NOT NULL,
	status                 TEXT NOT NULL,
	payment_type           TEXT NOT NULL DEFAULT '',
	payment_transaction_id TEXT NOT NULL DEFAULT '',
	pos_reference          TEXT NOT NULL DEFAULT '',
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS orders_status_created_at_idx ON orders (status, created_at);

CREATE TABLE IF NOT EXISTS order_items (
	order_id      TEXT NOT NULL REFERENCES orders (id),
	product_id    BIGINT NOT NULL,
	variant_id    BIGINT NOT NULL,
	product_name  TEXT NOT NULL,
	variant_name  TEXT NOT NULL DEFAULT '',
	price         BIGINT NOT NULL CHECK (price >= 0),
	quantity      BIGINT NOT NULL CHECK (quantity >= 1),
	category_id   BIGINT NOT NULL DEFAULT 0,
	category_name TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS order_items_order_id_idx ON order_items (order_id);
`

// Migrate creates the order tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating order schema: %w", err)
	}
	return nil
}
