package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	GHL      GHLConfig
	Auth     AuthConfig
	Sync     SyncConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	OrderSynced     string
	TicketValidated string
}

// GHLConfig holds credentials and endpoints for the external commerce platform.
type GHLConfig struct {
	BaseURL       string
	APIToken      string
	LocationID    string
	WebhookSecret string
	Timeout       time.Duration
}

type AuthConfig struct {
	OIDCIssuer string
	// Admin API of the identity provider, used for superadmin user management.
	AdminBaseURL string
	AdminToken   string
	QRSecretKey  string
}

type SyncConfig struct {
	// OrderListPath points at the JSON file holding the valid order ID list.
	OrderListPath string
	DelaySeconds  int
	// TTL on the run lock, an upper bound on how long one job may hold it.
	LockTTL time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8085"),
			ReadTimeout:  15 * time.Second,
			// Zero keeps long-lived SSE streams from being cut off.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "qradmin"),
			Password:     getEnv("DB_PASSWORD", "qradmin"),
			Database:     getEnv("DB_NAME", "qr_admin"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", true),
			Topics: TopicConfig{
				OrderSynced:     getEnv("KAFKA_TOPIC_ORDER_SYNCED", "qrapp.order.synced"),
				TicketValidated: getEnv("KAFKA_TOPIC_TICKET_VALIDATED", "qrapp.ticket.validated"),
			},
		},
		GHL: GHLConfig{
			BaseURL:       getEnv("GHL_BASE_URL", "https://services.leadconnectorhq.com"),
			APIToken:      getEnv("GHL_API_TOKEN", ""),
			LocationID:    getEnv("GHL_LOCATION_ID", ""),
			WebhookSecret: getEnv("GHL_WEBHOOK_SECRET", ""),
			Timeout:       time.Duration(getEnvInt("GHL_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Auth: AuthConfig{
			OIDCIssuer:   getEnv("OIDC_ISSUER", ""),
			AdminBaseURL: getEnv("AUTH_ADMIN_BASE_URL", ""),
			AdminToken:   getEnv("AUTH_ADMIN_TOKEN", ""),
			QRSecretKey:  getEnv("QR_SECRET_KEY", ""),
		},
		Sync: SyncConfig{
			OrderListPath: getEnv("SYNC_ORDER_LIST_PATH", "public/valid_order_list.json"),
			DelaySeconds:  getEnvInt("SYNC_DELAY_SECONDS", 300),
			LockTTL:       time.Duration(getEnvInt("SYNC_LOCK_TTL_MINUTES", 30)) * time.Minute,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
