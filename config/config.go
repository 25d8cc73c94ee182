package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	AppEnv      string // development | production
	LogLevel    string
	DBUrl       string
	FrontendURL string

	// Supabase Auth
	SupabaseUrl       string
	SupabaseJWTSecret string

	// Redis/Upstash: wizard sessions and rate limits
	UpstashRedisURL      string
	UpstashRedisPassword string

	// Rate limiting
	RateLimitEnabled         bool
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int

	// Wizard
	WizardSessionTTL time.Duration
	GenerateLatency  time.Duration

	// Publishing
	DeployBaseDomain  string
	DeployLatency     time.Duration
	DomainCNAMETarget string

	// Object storage (S3-compatible). Empty bucket keeps everything in memory.
	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicURL       string
	S3PresignTTL      time.Duration
}

func LoadConfig() (*Config, error) {
	// .env only matters locally; production injects the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Trailing slash would produce .co//auth
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),

		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),

		RateLimitEnabled:         getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),

		WizardSessionTTL: getEnvDuration("WIZARD_SESSION_TTL", 2*time.Hour),
		GenerateLatency:  getEnvDuration("GENERATE_LATENCY", 1500*time.Millisecond),

		DeployBaseDomain:  getEnv("DEPLOY_BASE_DOMAIN", "quickfolio.xyz"),
		DeployLatency:     getEnvDuration("PUBLISH_LATENCY", 2*time.Second),
		DomainCNAMETarget: getEnv("DOMAIN_CNAME_TARGET", "quickfolio-domains.vercel.app"),

		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", getEnv("EXPORT_BUCKET", "")),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicURL:       strings.TrimRight(getEnv("S3_PUBLIC_URL", ""), "/"),
		S3PresignTTL:      getEnvDuration("S3_PRESIGN_TTL", time.Hour),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Sessions and rate limits stay in memory.")
	}
	if cfg.SupabaseJWTSecret == "" && cfg.SupabaseUrl == "" {
		log.Println("WARNING: neither SUPABASE_JWT_SECRET nor SUPABASE_URL is set. Every authenticated request will be rejected.")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
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

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s", "24h") or plain seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
