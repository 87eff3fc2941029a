package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds configuration for the dashboard backend.
type ServerConfig struct {
	BindAddr      string
	StaticDir     string
	LogLevel      string
	LogFile       string
	CataloguePath string

	// DBDriver is "sqlite" or "postgres"; empty disables the candle store.
	DBDriver      string
	DBDSN         string
	RunMigrations bool

	// RedisAddr empty disables the upstream cache.
	RedisAddr     string
	RedisPassword string

	UpstreamTimeout time.Duration
	// IngestRateLimit is the number of upstream calls allowed per minute during ingest.
	IngestRateLimit int
}

// LoadServer reads backend configuration from environment variables and an optional .env file.
func LoadServer() *ServerConfig {
	loadDotEnv()

	return &ServerConfig{
		BindAddr:        getEnvOrDefault("DASHBOARD_BIND_ADDR", ":5000"),
		StaticDir:       getEnvOrDefault("DASHBOARD_STATIC_DIR", "./web/static"),
		LogLevel:        strings.ToLower(getEnvOrDefault("DASHBOARD_LOG_LEVEL", "info")),
		LogFile:         getEnvOrDefault("DASHBOARD_LOG_FILE", ""),
		CataloguePath:   getEnvOrDefault("DASHBOARD_CATALOGUE", ""),
		DBDriver:        strings.ToLower(getEnvOrDefault("DB_DRIVER", "")),
		DBDSN:           getEnvOrDefault("DB_DSN", ""),
		RunMigrations:   getEnvBoolOrDefault("RUN_MIGRATIONS", true),
		RedisAddr:       getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword:   getEnvOrDefault("REDIS_PASSWORD", ""),
		UpstreamTimeout: getEnvDurationOrDefault("UPSTREAM_TIMEOUT", 30*time.Second),
		IngestRateLimit: getEnvIntOrDefault("INGEST_RATE_LIMIT", 20),
	}
}

// ClientConfig holds configuration for the headless dashboard.
type ClientConfig struct {
	ServerURL     string
	LogLevel      string
	CataloguePath string
	PrefsFile     string

	// PrefsRedisAddr, when set, stores preferences in Redis under PrefsOwner instead of PrefsFile.
	PrefsRedisAddr string
	PrefsOwner     string
	FetchTimeout   time.Duration
}

// LoadClient reads headless dashboard configuration.
func LoadClient() *ClientConfig {
	loadDotEnv()

	return &ClientConfig{
		ServerURL:      getEnvOrDefault("DASHBOARD_SERVER_URL", "http://127.0.0.1:5000"),
		LogLevel:       strings.ToLower(getEnvOrDefault("DASHBOARD_LOG_LEVEL", "warn")),
		CataloguePath:  getEnvOrDefault("DASHBOARD_CATALOGUE", ""),
		PrefsFile:      getEnvOrDefault("DASHBOARD_PREFS_FILE", ""),
		PrefsRedisAddr: getEnvOrDefault("DASHBOARD_PREFS_REDIS", ""),
		PrefsOwner:     getEnvOrDefault("DASHBOARD_PREFS_OWNER", defaultOwner()),
		FetchTimeout:   getEnvDurationOrDefault("DASHBOARD_FETCH_TIMEOUT", 15*time.Second),
	}
}

// defaultOwner names this machine's preferences; the hostname, or "default".
func defaultOwner() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "default"
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
