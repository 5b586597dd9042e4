package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Visitor   VisitorConfig
	Events    EventsConfig
	Bootstrap BootstrapConfig
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

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
	// Output is a zap sink such as "stdout" or "stderr". Empty means stdout.
	Output string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// VisitorConfig tunes the visitor pass workflow.
type VisitorConfig struct {
	TimeZone            string
	QRCodeSize          int
	VerifyAttemptsLimit int
	VerifyWindowSeconds int
}

// EventsConfig points the event forwarder at NATS. An empty URL keeps events in process.
type EventsConfig struct {
	NATSURL       string
	SubjectPrefix string
}

// BootstrapConfig seeds the first administrator on an empty user table.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// ClientConfig configures the gatectl client.
type ClientConfig struct {
	BaseURL        string
	SessionFile    string
	TimeoutSeconds int
	LogLevel       string
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
			Name:                  getEnv("APP_NAME", "smart-community-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "5000"),
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
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 12*60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Visitor: VisitorConfig{
			TimeZone:            getEnv("VISITOR_TIME_ZONE", "Asia/Kolkata"),
			QRCodeSize:          getEnvAsInt("VISITOR_QR_SIZE", 300),
			VerifyAttemptsLimit: getEnvAsInt("VISITOR_VERIFY_ATTEMPTS_LIMIT", 30),
			VerifyWindowSeconds: getEnvAsInt("VISITOR_VERIFY_WINDOW_SECONDS", 60),
		},
		Events: EventsConfig{
			NATSURL:       os.Getenv("EVENTS_NATS_URL"),
			SubjectPrefix: getEnv("EVENTS_SUBJECT_PREFIX", "community"),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
			AdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
			AdminName:     getEnv("BOOTSTRAP_ADMIN_NAME", "Administrator"),
		},
	}

	return cfg, nil
}

// LoadClient reads gatectl settings from the environment.
func LoadClient() ClientConfig {
	_ = godotenv.Load()

	sessionFile := os.Getenv("GATECTL_SESSION_FILE")
	if sessionFile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			sessionFile = filepath.Join(dir, "gatectl", "session.json")
		} else {
			sessionFile = ".gatectl-session.json"
		}
	}

	return ClientConfig{
		BaseURL:        getEnv("GATECTL_API_URL", "http://localhost:5000/api"),
		SessionFile:    sessionFile,
		TimeoutSeconds: getEnvAsInt("GATECTL_TIMEOUT_SECONDS", 15),
		LogLevel:       getEnv("GATECTL_LOG_LEVEL", "warn"),
	}
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

// Location resolves the community time zone used to decide what "today" is.
func (v VisitorConfig) Location() (*time.Location, error) {
	if v.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(v.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid VISITOR_TIME_ZONE %q: %w", v.TimeZone, err)
	}
	return loc, nil
}

// VerifyWindow returns the attempt limiter window.
func (v VisitorConfig) VerifyWindow() time.Duration {
	if v.VerifyWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(v.VerifyWindowSeconds) * time.Second
}

// Timeout returns the client request timeout.
func (c ClientConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
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
