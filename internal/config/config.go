package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Tenants      TenantsConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	PublicIntake PublicIntakeConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
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

// PostgresConfig holds pool tuning shared by all tenant stores.
type PostgresConfig struct {
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// TenantsConfig maps tenant ids to their isolated store DSNs.
type TenantsConfig struct {
	// DSNs is parsed from TENANT_DSNS ("acme=postgres://...;globex=postgres://...").
	DSNs map[string]string
	// Default names the tenant bound to POSTGRES_DSN for single-tenant setups.
	Default string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// PublicIntakeConfig names the requester fallback chain for anonymous intake.
// Tickets created through the public channel are attributed to the designated
// intake user, or to the fixed default when that user does not exist.
type PublicIntakeConfig struct {
	RequesterEmail string
	FallbackEmail  string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// RateLimitConfig bounds the unauthenticated public surface.
type RateLimitConfig struct {
	PublicPerMinute int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	tenants, err := parseTenantDSNs(os.Getenv("TENANT_DSNS"))
	if err != nil {
		return nil, err
	}
	defaultTenant := getEnv("DEFAULT_TENANT", "default")
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		if _, exists := tenants[defaultTenant]; !exists {
			tenants[defaultTenant] = dsn
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Tenants: TenantsConfig{
			DSNs:    tenants,
			Default: defaultTenant,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		PublicIntake: PublicIntakeConfig{
			RequesterEmail: getEnv("PUBLIC_INTAKE_REQUESTER_EMAIL", "support@example.com"),
			FallbackEmail:  getEnv("PUBLIC_INTAKE_FALLBACK_EMAIL", "public-intake@example.com"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: getEnvAsInt("PUBLIC_RATE_LIMIT_PER_MINUTE", 60),
		},
	}

	return cfg, nil
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

func parseTenantDSNs(raw string) (map[string]string, error) {
	dsns := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return dsns, nil
	}
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, dsn, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(name) == "" || strings.TrimSpace(dsn) == "" {
			return nil, fmt.Errorf("invalid TENANT_DSNS entry: %q", pair)
		}
		dsns[strings.TrimSpace(name)] = strings.TrimSpace(dsn)
	}
	return dsns, nil
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
