package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	FrontendURL string
	GinMode     string
	// Supabase (auth + optional photo storage)
	SupabaseUrl       string
	SupabaseKey       string
	SupabaseJWTSecret string
	// Admin authentication
	AuthProvider      string // "supabase" or "local"
	AdminEmail        string
	AdminPasswordHash string
	SessionSecret     string
	SessionTTL        time.Duration
	// Photo storage
	StorageProvider   string // "s3", "wasabi" or "supabase"
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3PublicBaseURL   string
	PhotoBucket       string
	PhotoMaxBytes     int64
	PhotoMaxDimension int
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Audit
	AuditLogEnabled bool
	Environment     string
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; production sets real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		// Trailing slashes would produce ".co//auth"
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:       getEnv("SUPABASE_KEY", getEnv("SUPABASE_ANON_KEY", "")),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),

		AuthProvider:      strings.ToLower(getEnv("AUTH_PROVIDER", "supabase")),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionTTL:        time.Duration(getEnvInt("SESSION_TTL_MINUTES", 480)) * time.Minute,

		StorageProvider:   strings.ToLower(getEnv("STORAGE_PROVIDER", "supabase")),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "ap-southeast-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		PhotoBucket:       getEnv("PHOTO_BUCKET", "applicant-photos"),
		PhotoMaxBytes:     getEnvInt64("PHOTO_MAX_BYTES", 2<<20),
		PhotoMaxDimension: getEnvInt("PHOTO_MAX_DIMENSION", 1024),

		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),

		AuditLogEnabled: getEnvBool("AUDIT_LOG_ENABLED", true),
		Environment:     getEnv("APP_ENV", "development"),
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = cfg.SupabaseJWTSecret
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Sign-out revocations will use in-memory fallback.")
	}

	return cfg, nil
}

// PhotoPublicOrigin is the scheme and host photos are served from, or "" when
// it cannot be told from the configuration.
func (c *Config) PhotoPublicOrigin() string {
	base := c.S3PublicBaseURL
	if c.StorageProvider == "supabase" {
		base = c.SupabaseUrl
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
