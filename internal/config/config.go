package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// PricingSecret is the master secret the credential signing key is
	// derived from. Startup fails in every environment when it is empty;
	// there is no fallback key.
	PricingSecret      string
	CredentialTTL      time.Duration
	FreshnessWindow    time.Duration
	CatalogCacheTTL    time.Duration
	CatalogCacheStore  string
	CatalogBuildBudget time.Duration

	SchedulerRunInterval time.Duration
	TamperRetention      time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	credentialTTL := getenvDuration("PRICING_CREDENTIAL_TTL", 5*time.Minute)

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "priceguard"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "priceguard"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		PricingSecret:      strings.TrimSpace(getenv("PRICING_SIGNING_SECRET", "")),
		CredentialTTL:      credentialTTL,
		FreshnessWindow:    getenvDuration("PRICING_FRESHNESS_WINDOW", credentialTTL),
		CatalogCacheTTL:    getenvDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		CatalogCacheStore:  strings.ToLower(getenv("CATALOG_CACHE_STORE", "memory")),
		CatalogBuildBudget: getenvDuration("CATALOG_BUILD_BUDGET", 5*time.Second),

		SchedulerRunInterval: getenvDuration("SCHEDULER_RUN_INTERVAL", time.Hour),
		TamperRetention:      getenvDuration("SCHEDULER_TAMPER_RETENTION", 90*24*time.Hour),
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
