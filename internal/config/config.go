package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Tickets      TicketConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreConfig selects and tunes the document store.
type StoreConfig struct {
	Backend            string
	BaseURL            string
	DocumentID         string
	HandleBackend      string
	HandlePath         string
	HandleKey          string
	HTTPTimeoutSeconds int
	MaxRetries         int
	RetryBaseMillis    int
	SQLitePath         string
	FileDir            string
	Seed               bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	Provider              string
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// TicketConfig holds ticket defaults.
type TicketConfig struct {
	DefaultCategory string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

const (
	StoreBackendJSONBlob = "jsonblob"
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"
	StoreBackendFile     = "file"
	StoreBackendMemory   = "memory"

	HandleBackendFile   = "file"
	HandleBackendRedis  = "redis"
	HandleBackendMemory = "memory"

	AuthProviderDemo   = "demo"
	AuthProviderBcrypt = "bcrypt"
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Backend:            getEnv("STORE_BACKEND", StoreBackendJSONBlob),
			BaseURL:            getEnv("STORE_BASE_URL", "https://jsonblob.com/api/jsonBlob"),
			DocumentID:         os.Getenv("STORE_DOCUMENT_ID"),
			HandleBackend:      getEnv("STORE_HANDLE_BACKEND", HandleBackendFile),
			HandlePath:         getEnv("STORE_HANDLE_PATH", ".helpdesk/document_id"),
			HandleKey:          getEnv("STORE_HANDLE_KEY", "helpdesk:document_id"),
			HTTPTimeoutSeconds: getEnvAsInt("STORE_HTTP_TIMEOUT_SECONDS", 10),
			MaxRetries:         getEnvAsInt("STORE_MAX_RETRIES", 3),
			RetryBaseMillis:    getEnvAsInt("STORE_RETRY_BASE_MS", 50),
			SQLitePath:         getEnv("STORE_SQLITE_PATH", "helpdesk.db"),
			FileDir:            getEnv("STORE_FILE_DIR", ".helpdesk/documents"),
			Seed:               getEnvAsBool("STORE_SEED", true),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 28),
		},
		Auth: AuthConfig{
			Provider:              getEnv("AUTH_PROVIDER", AuthProviderDemo),
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Tickets: TicketConfig{
			DefaultCategory: getEnv("TICKET_DEFAULT_CATEGORY", "Technical Issues"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreBackendJSONBlob, StoreBackendFile, StoreBackendMemory, StoreBackendSQLite:
	case StoreBackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q", c.Store.Backend)
	}
	switch c.Store.HandleBackend {
	case HandleBackendFile, HandleBackendRedis, HandleBackendMemory:
	default:
		return fmt.Errorf("invalid STORE_HANDLE_BACKEND %q", c.Store.HandleBackend)
	}
	switch c.Auth.Provider {
	case AuthProviderDemo, AuthProviderBcrypt:
	default:
		return fmt.Errorf("invalid AUTH_PROVIDER %q", c.Auth.Provider)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// HTTPTimeout bounds each call to a remote store.
func (s StoreConfig) HTTPTimeout() time.Duration {
	if s.HTTPTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.HTTPTimeoutSeconds) * time.Second
}

// RetryBase is the first backoff delay after a revision conflict.
func (s StoreConfig) RetryBase() time.Duration {
	if s.RetryBaseMillis <= 0 {
		return 50 * time.Millisecond
	}
	return time.Duration(s.RetryBaseMillis) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
