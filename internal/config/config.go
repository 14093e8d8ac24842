package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Port           string
	FrontendURL    string
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string

	StoreDriver     string
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	DatabaseURL     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnMaxLife   time.Duration
	SnapshotTTL     time.Duration
	SessionIdle     time.Duration
	CleanupInterval time.Duration

	BotSearchDepth int
	BotDelays      BotDelays
}

// BotDelays is how long the AI pauses before moving, per difficulty
type BotDelays struct {
	Easy   time.Duration
	Medium time.Duration
	Hard   time.Duration
}

func LoadConfig() *Config {
	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")

	// Build allowed origins list (Frontend URL + Localhost + CSV values)
	allowedOrigins := []string{frontendURL}
	if frontendURL != "http://localhost:5173" {
		allowedOrigins = append(allowedOrigins, "http://localhost:5173")
	}
	for _, origin := range strings.Split(GetEnv("ALLOWED_ORIGINS", ""), ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			allowedOrigins = append(allowedOrigins, trimmed)
		}
	}

	storeDriver := strings.ToLower(GetEnv("STORE_DRIVER", StoreMemory))
	switch storeDriver {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		log.Warn().Str("store_driver", storeDriver).Msg("unknown STORE_DRIVER, using memory")
		storeDriver = StoreMemory
	}

	return &Config{
		Port:           GetEnv("PORT", "8080"),
		FrontendURL:    frontendURL,
		AllowedOrigins: allowedOrigins,
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		LogFormat:      GetEnv("LOG_FORMAT", "json"),

		StoreDriver:     storeDriver,
		RedisURL:        GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:   GetEnv("REDIS_PASSWORD", ""),
		RedisDB:         GetEnvAsInt("REDIS_DB", 0),
		DatabaseURL:     databaseURL(GetEnv("DATABASE_URL", "")),
		DBMaxOpenConns:  GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:  GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLife:   GetEnvAsDuration("DB_CONN_MAX_LIFETIME_MINUTES", 5, time.Minute),
		SnapshotTTL:     GetEnvAsDuration("SNAPSHOT_TTL_MINUTES", 24*60, time.Minute),
		SessionIdle:     GetEnvAsDuration("SESSION_IDLE_TIMEOUT_MINUTES", 30, time.Minute),
		CleanupInterval: GetEnvAsDuration("CLEANUP_INTERVAL_MINUTES", 10, time.Minute),

		BotSearchDepth: GetEnvAsInt("BOT_SEARCH_DEPTH", 3),
		BotDelays: BotDelays{
			Easy:   GetEnvAsDuration("BOT_DELAY_EASY_MS", 500, time.Millisecond),
			Medium: GetEnvAsDuration("BOT_DELAY_MEDIUM_MS", 800, time.Millisecond),
			Hard:   GetEnvAsDuration("BOT_DELAY_HARD_MS", 1200, time.Millisecond),
		},
	}
}

// Append simple_protocol for PgBouncer compatibility (pgx driver)
func databaseURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Get("default_query_exec_mode") == "" {
		q.Set("default_query_exec_mode", "simple_protocol")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Int("default", defaultValue).Msg("invalid integer value, using default")
		return defaultValue
	}
	return value
}

// GetEnvAsDuration reads an integer count of unit. Negative values fall back
// to the default.
func GetEnvAsDuration(key string, defaultValue int, unit time.Duration) time.Duration {
	value := GetEnvAsInt(key, defaultValue)
	if value < 0 {
		value = defaultValue
	}
	return time.Duration(value) * unit
}
