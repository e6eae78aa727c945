package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	OrderStoreMemory   = "memory"
	OrderStorePostgres = "postgres"

	SaleRecordingCheckout      = "checkout"
	SaleRecordingAdvancedOrder = "advanced_order"
)

type Config struct {
	ServiceName      string
	ServicePort      string
	MetricsPort      string
	LogLevel         string
	AppURL           string
	OrderStore       string
	JWTSecret        string
	PostgreSQLConfig PostgreSQLConfig
	MidtransConfig   MidtransConfig
	MokaConfig       MokaConfig
	KafkaConfig      KafkaConfig
	TracingConfig    TracingConfig
	SchedulerConfig  SchedulerConfig
}

type PostgreSQLConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUsername string
	DBPassword string
}

type MidtransConfig struct {
	ServerKey    string
	IsProduction bool
	// VerifyRecordedPayments makes the client record path ask Midtrans for the
	// transaction status instead of trusting the caller.
	VerifyRecordedPayments bool
}

type MokaConfig struct {
	BaseURL       string
	AccessToken   string
	RecordingMode string
}

type KafkaConfig struct {
	BrokerAddress   string
	BrokerTopic     string
	BrokerPartition int
}

type TracingConfig struct {
	CollectorHost string
}

type SchedulerConfig struct {
	Enabled             bool
	SyncInterval        time.Duration
	PendingMinAge       time.Duration
	PosRetryInterval    time.Duration
	PosRetryGracePeriod time.Duration
}

func CreateNewConfig() *Config {
	godotenv.Load(".env")

	conf := Config{
		ServiceName: getEnv("SERVICE_NAME", "storefront-service"),
		ServicePort: getEnv("SERVICE_PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		AppURL:      getEnv("APP_URL", "http://localhost:3000"),
		OrderStore:  getEnv("ORDER_STORE", OrderStoreMemory),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		PostgreSQLConfig: PostgreSQLConfig{
			DBHost:     os.Getenv("DB_HOST"),
			DBName:     os.Getenv("DB_NAME"),
			DBPort:     os.Getenv("DB_PORT"),
			DBUsername: os.Getenv("DB_USERNAME"),
			DBPassword: os.Getenv("DB_PASSWORD"),
		},
		MidtransConfig: MidtransConfig{
			ServerKey:              os.Getenv("MIDTRANS_SERVER_KEY"),
			IsProduction:           getEnvBool("MIDTRANS_IS_PRODUCTION", false),
			VerifyRecordedPayments: getEnvBool("MIDTRANS_VERIFY_RECORDED_PAYMENTS", true),
		},
		MokaConfig: MokaConfig{
			BaseURL:       getEnv("MOKA_API_URL", "https://api.mokapos.com"),
			AccessToken:   os.Getenv("MOKA_ACCESS_TOKEN"),
			RecordingMode: getEnv("MOKA_RECORDING_MODE", SaleRecordingCheckout),
		},
		KafkaConfig: KafkaConfig{
			BrokerAddress:   os.Getenv("BROKER_ADDRESS"),
			BrokerTopic:     getEnv("BROKER_TOPIC", "storefront-orders"),
			BrokerPartition: getEnvInt("BROKER_PARTITION", 0),
		},
		TracingConfig: TracingConfig{
			CollectorHost: os.Getenv("COLLECTOR_HOST"),
		},
		SchedulerConfig: SchedulerConfig{
			Enabled:             getEnvBool("SCHEDULER_ENABLED", true),
			SyncInterval:        getEnvDuration("PAYMENT_SYNC_INTERVAL", time.Minute),
			PendingMinAge:       getEnvDuration("PAYMENT_SYNC_MIN_AGE", 2*time.Minute),
			PosRetryInterval:    getEnvDuration("POS_RETRY_INTERVAL", 5*time.Minute),
			PosRetryGracePeriod: getEnvDuration("POS_RETRY_GRACE_PERIOD", time.Minute),
		},
	}

	return &conf
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
