package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Session tokens are issued by the external identity provider. Either a
	// shared HS256 secret or a JWKS endpoint verifies them.
	JWTSecret  string
	JWTJWKSURL string

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Object storage
	StorageDriver     string
	StorageLocalRoot  string
	StoragePublicURL  string
	StorageRemoteURL  string
	StorageBucket     string
	StorageServiceKey string
	StorageTimeout    time.Duration
	MaxUploadBytes    int

	// Server
	Port        string
	CORSOrigins string

	// Observability
	LogRetentionDays int
	SentryDSN        string
	AppEnv           string

	TagCacheSize int
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "travel_gallery"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		JWTJWKSURL: getEnv("JWT_JWKS_URL", ""),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		StorageDriver:     getEnv("STORAGE_DRIVER", "local"),
		StorageLocalRoot:  getEnv("STORAGE_LOCAL_ROOT", "./media"),
		StoragePublicURL:  getEnv("STORAGE_PUBLIC_URL", "http://localhost:8080/media"),
		StorageRemoteURL:  getEnv("STORAGE_REMOTE_URL", ""),
		StorageBucket:     getEnv("STORAGE_BUCKET", "travel-photos"),
		StorageServiceKey: getEnv("STORAGE_SERVICE_KEY", ""),
		StorageTimeout:    parseDuration(getEnv("STORAGE_TIMEOUT", "30s"), 30*time.Second),
		MaxUploadBytes:    parseInt(getEnv("MAX_UPLOAD_BYTES", "20971520"), 20*1024*1024),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		AppEnv:           getEnv("APP_ENV", "development"),

		TagCacheSize: parseInt(getEnv("TAG_CACHE_SIZE", "10000"), 10000),
	}
}

// Validate reports the first missing setting the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" && c.JWTJWKSURL == "" {
		return errors.New("JWT_SECRET or JWT_JWKS_URL environment variable is required")
	}
	if c.DBPassword == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}
	switch c.StorageDriver {
	case "local":
	case "supabase":
		if c.StorageRemoteURL == "" || c.StorageServiceKey == "" {
			return errors.New("STORAGE_REMOTE_URL and STORAGE_SERVICE_KEY are required for the supabase storage driver")
		}
	default:
		return errors.New("STORAGE_DRIVER must be local or supabase")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
