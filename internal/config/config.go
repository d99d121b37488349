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
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Storage    StorageConfig
	SLA        SLAConfig
	Assignment AssignmentConfig
	Stats      StatsConfig
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
	Level string
}

// AuthConfig defines authentication parameters.
//
// VerifyPasswords controls whether login compares the supplied password
// against the stored bcrypt hash. Defaults off for compatibility with
// deployments that delegate password checks to an upstream identity layer.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	VerifyPasswords       bool
}

// StorageConfig points at the Supabase Storage bucket for attachments.
type StorageConfig struct {
	BaseURL string
	APIKey  string
	Bucket  string
}

// SLAConfig maps complaint priority to the resolution window in hours.
type SLAConfig struct {
	LowHours      int
	MediumHours   int
	HighHours     int
	CriticalHours int
}

// AssignmentConfig drives the category based auto-assignment policy.
// Complaints in any of the listed categories are routed to an agent at
// creation time; everything else stays unassigned.
type AssignmentConfig struct {
	Categories []string
}

// StatsConfig controls the cached dashboard snapshot.
type StatsConfig struct {
	RefreshCron     string
	CacheTTLSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "complaint-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
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
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			VerifyPasswords:       getEnvAsBool("AUTH_VERIFY_PASSWORDS", false),
		},
		Storage: StorageConfig{
			BaseURL: os.Getenv("STORAGE_URL"),
			APIKey:  os.Getenv("STORAGE_SERVICE_KEY"),
			Bucket:  getEnv("STORAGE_BUCKET", "attachments"),
		},
		SLA: SLAConfig{
			LowHours:      getEnvAsInt("SLA_LOW_HOURS", 48),
			MediumHours:   getEnvAsInt("SLA_MEDIUM_HOURS", 24),
			HighHours:     getEnvAsInt("SLA_HIGH_HOURS", 8),
			CriticalHours: getEnvAsInt("SLA_CRITICAL_HOURS", 4),
		},
		Assignment: AssignmentConfig{
			Categories: splitList(getEnv("ASSIGN_CATEGORIES", "Internet,Hardware")),
		},
		Stats: StatsConfig{
			RefreshCron:     getEnv("STATS_REFRESH_CRON", "@every 5m"),
			CacheTTLSeconds: getEnvAsInt("STATS_CACHE_TTL_SECONDS", 600),
		},
	}

	return cfg, nil
}

// Transitions returns the raw status transition table from the environment,
// in the form "From>To1|To2;From2>To3". Empty means every transition is
// legal, which matches the behavior of the system this one replaces.
func Transitions() string {
	return os.Getenv("COMPLAINT_TRANSITIONS")
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

// CacheTTL returns the snapshot TTL duration.
func (s StatsConfig) CacheTTL() time.Duration {
	if s.CacheTTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// Window returns the SLA offset for the given priority. Unknown priorities
// fall back to the medium window.
func (s SLAConfig) Window(priority string) time.Duration {
	hours := s.MediumHours
	switch priority {
	case "Low":
		hours = s.LowHours
	case "High":
		hours = s.HighHours
	case "Critical":
		hours = s.CriticalHours
	}
	return time.Duration(hours) * time.Hour
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
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
