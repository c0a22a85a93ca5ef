package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr           = ":5000"
	defaultDatabaseURL        = "adservice.db"
	defaultRedisURL           = "localhost:6379"
	defaultRedisTimeout       = "2s"
	defaultUploadDir          = "./static/ads"
	defaultMaxUploadBytes     = "209715200" // 200 MB
	defaultAdDuration         = "30"
	defaultMinWatchPercentage = "80"
	defaultSelectionCacheTTL  = "5m"
	defaultRecencyWindow      = "24h"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultJWTTTL             = "12h"
	defaultAdminUsername      = "admin"
	defaultRateLimitRequests  = "100"
	defaultRateLimitWindow    = "15m"
	defaultRetention          = "2160h" // 90 days
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DatabaseURL  string
	RedisURL     string
	RedisTimeout time.Duration

	UploadDir      string
	MaxUploadBytes int64

	DefaultAdDuration  int
	MinWatchPercentage int
	SelectionCacheTTL  time.Duration
	RecencyWindow      time.Duration

	JWTSecret         string
	JWTTTL            time.Duration
	AdminUsername     string
	AdminPasswordHash string

	RateLimitRequests  int
	RateLimitWindow    time.Duration
	CORSAllowedOrigins []string

	ImpressionRetention time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, after merging a .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", defaultRedisURL))
	cfg.UploadDir = strings.TrimSpace(getEnv("UPLOAD_DIR", defaultUploadDir))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.AdminUsername = strings.TrimSpace(getEnv("ADMIN_USERNAME", defaultAdminUsername))
	cfg.AdminPasswordHash = strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH"))
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.LogFormat = strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat))

	var err error
	if cfg.RedisTimeout, err = parseDurationEnv("REDIS_TIMEOUT", defaultRedisTimeout); err != nil {
		return nil, err
	}
	if cfg.SelectionCacheTTL, err = parseDurationEnv("SELECTION_CACHE_TTL", defaultSelectionCacheTTL); err != nil {
		return nil, err
	}
	if cfg.RecencyWindow, err = parseDurationEnv("RECENCY_WINDOW", defaultRecencyWindow); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = parseDurationEnv("RATE_LIMIT_WINDOW", defaultRateLimitWindow); err != nil {
		return nil, err
	}
	if cfg.ImpressionRetention, err = parseDurationEnv("IMPRESSION_RETENTION", defaultRetention); err != nil {
		return nil, err
	}

	maxUpload, err := parseIntEnv("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if cfg.DefaultAdDuration, err = parseIntEnv("DEFAULT_AD_DURATION", defaultAdDuration); err != nil {
		return nil, err
	}
	if cfg.MinWatchPercentage, err = parseIntEnv("MIN_WATCH_PERCENTAGE", defaultMinWatchPercentage); err != nil {
		return nil, err
	}
	if cfg.RateLimitRequests, err = parseIntEnv("RATE_LIMIT_REQUESTS", defaultRateLimitRequests); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsProd() bool { return isProdLike(c.AppEnv) }

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if cfg.RedisTimeout <= 0 {
		return fmt.Errorf("REDIS_TIMEOUT must be > 0")
	}
	if cfg.SelectionCacheTTL <= 0 {
		return fmt.Errorf("SELECTION_CACHE_TTL must be > 0")
	}
	if cfg.RecencyWindow <= 0 {
		return fmt.Errorf("RECENCY_WINDOW must be > 0")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be > 0")
	}
	if cfg.DefaultAdDuration <= 0 {
		return fmt.Errorf("DEFAULT_AD_DURATION must be > 0")
	}
	if cfg.MinWatchPercentage < 0 || cfg.MinWatchPercentage > 100 {
		return fmt.Errorf("MIN_WATCH_PERCENTAGE must be between 0 and 100")
	}
	if cfg.RateLimitRequests <= 0 || cfg.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	if cfg.ImpressionRetention <= 0 {
		return fmt.Errorf("IMPRESSION_RETENTION must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.AdminPasswordHash == "" {
			return fmt.Errorf("in prod/release ADMIN_PASSWORD_HASH must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
