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
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Session      SessionConfig
	Embedding    EmbeddingConfig
	Notification NotificationConfig
	Prompts      PromptsConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
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
	Level  string
	Format string // json | console
}

// SessionConfig controls session storage and per-session locking.
// TurnTimeoutMillis bounds the work done while a session lock is held; with the redis lock
// backend it must stay below the lock lease.
type SessionConfig struct {
	Store             string // redis | memory
	Codec             string // json | cbor
	KeyPrefix         string
	TTLHours          int
	LockBackend       string // redis | local
	LockTTLSeconds    int
	LockPollMillis    int
	TurnTimeoutMillis int
}

// EmbeddingConfig selects the embedding provider used for tickets.
type EmbeddingConfig struct {
	Provider   string // openai | local
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	EmailTo    string
	WebhookURL string
}

// PromptsConfig points at an optional prompt catalog override.
type PromptsConfig struct {
	File string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "membership-enrollment-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Session: SessionConfig{
			Store:             getEnv("SESSION_STORE", "redis"),
			Codec:             getEnv("SESSION_CODEC", "json"),
			KeyPrefix:         getEnv("SESSION_KEY_PREFIX", "enrollment"),
			TTLHours:          getEnvAsInt("SESSION_TTL_HOURS", 72),
			LockBackend:       getEnv("SESSION_LOCK_BACKEND", "redis"),
			LockTTLSeconds:    getEnvAsInt("SESSION_LOCK_TTL_SECONDS", 30),
			LockPollMillis:    getEnvAsInt("SESSION_LOCK_POLL_MILLIS", 50),
			TurnTimeoutMillis: getEnvAsInt("SESSION_TURN_TIMEOUT_MILLIS", 20000),
		},
		Embedding: EmbeddingConfig{
			Provider:   getEnv("EMBEDDING_PROVIDER", "local"),
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			BaseURL:    os.Getenv("OPENAI_BASE_URL"),
			Model:      getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
			Dimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			EmailTo:    getEnv("NOTIFY_EMAIL_TO", "membership-team@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Prompts: PromptsConfig{
			File: os.Getenv("PROMPTS_FILE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects option values the service cannot act on.
func (c *Config) Validate() error {
	switch c.Session.Store {
	case "redis", "memory":
	default:
		return fmt.Errorf("invalid SESSION_STORE %q", c.Session.Store)
	}
	switch c.Session.Codec {
	case "json", "cbor":
	default:
		return fmt.Errorf("invalid SESSION_CODEC %q", c.Session.Codec)
	}
	switch c.Session.LockBackend {
	case "redis":
		turn, lease := c.Session.TurnTimeout(), c.Session.LockTTL()
		if turn <= 0 || turn >= lease {
			return fmt.Errorf("SESSION_TURN_TIMEOUT_MILLIS (%v) must be positive and below SESSION_LOCK_TTL_SECONDS (%v)", turn, lease)
		}
	case "local":
	default:
		return fmt.Errorf("invalid SESSION_LOCK_BACKEND %q", c.Session.LockBackend)
	}
	switch c.Embedding.Provider {
	case "openai":
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("EMBEDDING_PROVIDER=openai requires OPENAI_API_KEY")
		}
	case "local":
	default:
		return fmt.Errorf("invalid EMBEDDING_PROVIDER %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("invalid EMBEDDING_DIMENSIONS %d", c.Embedding.Dimensions)
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

// TTL returns how long an idle session is retained, zero meaning forever.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 0
	}
	return time.Duration(s.TTLHours) * time.Hour
}

// LockTTL returns the lease length of a distributed session lock.
func (s SessionConfig) LockTTL() time.Duration {
	if s.LockTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.LockTTLSeconds) * time.Second
}

// LockPoll returns the retry interval while waiting on a held session lock.
func (s SessionConfig) LockPoll() time.Duration {
	if s.LockPollMillis <= 0 {
		return 50 * time.Millisecond
	}
	return time.Duration(s.LockPollMillis) * time.Millisecond
}

// TurnTimeout returns the deadline applied to a turn once its session lock is held, zero
// meaning none.
func (s SessionConfig) TurnTimeout() time.Duration {
	if s.TurnTimeoutMillis <= 0 {
		return 0
	}
	return time.Duration(s.TurnTimeoutMillis) * time.Millisecond
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
