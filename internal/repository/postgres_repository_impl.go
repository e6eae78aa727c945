package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/errs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const uniqueViolation = "23505"

type queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

type OrderRepositoryImpl struct {
	db *sqlx.DB
	tx *sqlx.Tx
	// conn is the session holding an order lock.
	conn *sqlx.Conn
	now  func() time.Time
}

func CreateOrderRepository(db *sqlx.DB) OrderRepository {
	return &OrderRepositoryImpl{
		db:  db,
		now: time.Now,
	}
}

func (r *OrderRepositoryImpl) ext() queryer {
	if r.tx != nil {
		return r.tx
	}
	if r.conn != nil {
		return r.conn
	}
	return r.db
}

func (r *OrderRepositoryImpl) AddOrder(ctx context.Context, data domain.Order) (err error) {
	if r.tx == nil {
		return r.handleTrx(ctx, func(ctx context.Context, repo *OrderRepositoryImpl) error {
			return repo.AddOrder(ctx, data)
		})
	}

	data = data.Clone()
	if data.CreatedAt.IsZero() {
		data.CreatedAt = r.now()
	}
	data.UpdatedAt = data.CreatedAt

	_, err = sqlx.NamedExecContext(ctx, r.tx, `INSERT INTO orders(id, outlet_id, outlet_name, customer_name, customer_phone, note, total, status, payment_type, payment_transaction_id, pos_reference, created_at, updated_at)
		VALUES (:id, :outlet_id, :outlet_name, :customer_name, :customer_phone, :note, :total, :status, :payment_type, :payment_transaction_id, :pos_reference, :created_at, :updated_at)`, data)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("order %s: %w", data.ID, errs.ErrDuplicateOrder)
		}
		log.Ctx(ctx).Error().Err(err).Str("component", "AddOrder").Msg("")
		return err
	}

	if len(data.Items) == 0 {
		return nil
	}

	for i := range data.Items {
		data.Items[i].OrderID = data.ID
	}

	_, err = sqlx.NamedExecContext(ctx, r.tx, `INSERT INTO order_items(order_id, product_id, variant_id, product_name, variant_name, price, quantity, category_id, category_name)
		VALUES (:order_id, :product_id, :variant_id, :product_name, :variant_name, :price, :quantity, :category_id, :category_name)`, data.Items)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddOrder").Msg("")
		return err
	}

	return nil
}

func (r *OrderRepositoryImpl) GetOrderByID(ctx context.Context, id string) (data domain.Order, err error) {
	err = sqlx.GetContext(ctx, r.ext(), &data, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return data, fmt.Errorf("order %s: %w", id, errs.ErrOrderNotFound)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrderByID").Msg("")
		return data, err
	}

	err = sqlx.SelectContext(ctx, r.ext(), &data.Items, "SELECT * FROM order_items WHERE order_id = $1", id)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrderByID").Msg("")
		return data, err
	}

	return data, nil
}

func (r *OrderRepositoryImpl) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, patch domain.OrderPatch) (data domain.Order, err error) {
	err = sqlx.GetContext(ctx, r.ext(), &data, `UPDATE orders SET
		status = $2,
		payment_type = COALESCE($3::text, payment_type),
		payment_transaction_id = COALESCE($4::text, payment_transaction_id),
		pos_reference = COALESCE($5::text, pos_reference),
		updated_at = $6
		WHERE id = $1 RETURNING *`,
		id, status, patch.PaymentType, patch.PaymentTransactionID, patch.PosReference, r.now())
	if errors.Is(err, sql.ErrNoRows) {
		return data, fmt.Errorf("order %s: %w", id, errs.ErrOrderNotFound)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpdateOrderStatus").Msg("")
		return data, err
	}

	err = sqlx.SelectContext(ctx, r.ext(), &data.Items, "SELECT * FROM order_items WHERE order_id = $1", id)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpdateOrderStatus").Msg("")
		return data, err
	}

	return data, nil
}

func (r *OrderRepositoryImpl) GetOrders(ctx context.Context, filter OrderFilter) (data []domain.Order, err error) {
	query := "SELECT * FROM orders WHERE TRUE"
	args := make(map[string]interface{})

	if filter.Status != "" {
		query += " AND status = :status"
		args["status"] = filter.Status
	}
	if filter.Unrecorded {
		query += " AND pos_reference = ''"
	}
	if !filter.CreatedBefore.IsZero() {
		query += " AND created_at < :created_before"
		args["created_before"] = filter.CreatedBefore
	}
	query += " ORDER BY created_at, id"
	if filter.Limit > 0 {
		query += " LIMIT :limit"
		args["limit"] = filter.Limit
	}

	query, bound, err := sqlx.Named(query, args)
	if err != nil {
		return nil, err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	data = make([]domain.Order, 0)
	err = sqlx.SelectContext(ctx, r.ext(), &data, query, bound...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrders").Msg("")
		return nil, err
	}
	if len(data) == 0 {
		return data, nil
	}

	ids := make([]string, len(data))
	index := make(map[string]int, len(data))
	for i, order := range data {
		ids[i] = order.ID
		index[order.ID] = i
	}

	var items []domain.OrderItem
	err = sqlx.SelectContext(ctx, r.ext(), &items, "SELECT * FROM order_items WHERE order_id = ANY($1)", pq.Array(ids))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrders").Msg("")
		return nil, err
	}
	for _, item := range items {
		i := index[item.OrderID]
		data[i].Items = append(data[i].Items, item)
	}

	return data, nil
}

// WithOrderLock holds a session advisory lock on the order for the duration
// of fn. Writes made through the repo passed to fn commit one by one, so a
// status stored before an outbound call survives a later failure.
func (r *OrderRepositoryImpl) WithOrderLock(ctx context.Context, id string, fn func(ctx context.Context, repo OrderRepository) error) (err error) {
	if r.conn != nil || r.tx != nil {
		return fn(ctx, r)
	}

	var exists bool
	err = sqlx.GetContext(ctx, r.db, &exists, "SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)", id)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "WithOrderLock").Msg("")
		return err
	}
	if !exists {
		return fmt.Errorf("order %s: %w", id, errs.ErrOrderNotFound)
	}

	conn, err := r.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err = conn.ExecContext(ctx, orderLockQuery, id); err != nil {
		return fmt.Errorf("locking order %s: %w", id, err)
	}
	defer func() {
		if _, unlockErr := conn.ExecContext(context.Background(), orderUnlockQuery, id); unlockErr != nil {
			log.Ctx(ctx).Error().Err(unlockErr).Str("component", "WithOrderLock").Str("order_id", id).Msg("")
			// A session that may still hold the lock must not go back to the pool.
			conn.Raw(func(driverConn interface{}) error { return driver.ErrBadConn })
		}
	}()

	lockedRepo := &OrderRepositoryImpl{
		db:   r.db,
		conn: conn,
		now:  r.now,
	}

	return fn(ctx, lockedRepo)
}

const (
	orderLockQuery   = "SELECT pg_advisory_lock(hashtext('order:' || $1::text))"
	orderUnlockQuery = "SELECT pg_advisory_unlock(hashtext('order:' || $1::text))"
)

func (r *OrderRepositoryImpl) handleTrx(ctx context.Context, fn func(ctx context.Context, repo *OrderRepositoryImpl) error) (err error) {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	txRepo := &OrderRepositoryImpl{
		db:  r.db,
		tx:  tx,
		now: r.now,
	}

	err = fn(ctx, txRepo)

	return err
}
