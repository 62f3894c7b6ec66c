package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
)

const (
	StorageDriverFS  = "fs"
	StorageDriverGCS = "gcs"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	Debug       bool

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIOrg         string
	OpenAIImageModel  string
	OpenAIChatModel   string
	OpenAIVisionModel string
	OpenAITimeout     time.Duration
	OpenAIMaxAttempts int

	GenerationInterval time.Duration
	PotracePath        string

	StorageDriver  string
	StoragePath    string
	StorageBaseURL string
	GCSBucket      string
	GCSPrefix      string

	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	CORSAllowedOrigins []string
	MaxUploadBytes     int64
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        port,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Debug:       getEnvBool("APP_DEBUG", false),

		OpenAIAPIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:         os.Getenv("OPENAI_ORG"),
		OpenAIImageModel:  os.Getenv("OPENAI_IMAGE_MODEL"),
		OpenAIChatModel:   os.Getenv("OPENAI_CHAT_MODEL"),
		OpenAIVisionModel: os.Getenv("OPENAI_VISION_MODEL"),
		OpenAITimeout:     getEnvDuration("OPENAI_TIMEOUT_SECONDS", 120, time.Second),
		OpenAIMaxAttempts: getEnvInt("OPENAI_MAX_ATTEMPTS", 2),

		GenerationInterval: getEnvDuration("GENERATION_INTERVAL_MS", 1000, time.Millisecond),
		PotracePath:        getEnv("POTRACE_PATH", "potrace"),

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverFS)),
		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/storage"),
		GCSBucket:      os.Getenv("GCS_BUCKET"),
		GCSPrefix:      os.Getenv("GCS_PREFIX"),

		HTTPReadTimeout:    getEnvDuration("HTTP_READ_TIMEOUT_SECONDS", 30, time.Second),
		HTTPWriteTimeout:   getEnvDuration("HTTP_WRITE_TIMEOUT_SECONDS", 600, time.Second),
		HTTPIdleTimeout:    getEnvDuration("HTTP_IDLE_TIMEOUT_SECONDS", 60, time.Second),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	switch cfg.StorageDriver {
	case StorageDriverFS:
	case StorageDriverGCS:
		if cfg.GCSBucket == "" {
			return nil, &domain.ConfigurationError{Setting: "GCS_BUCKET", Reason: "is required when STORAGE_DRIVER=gcs"}
		}
		if os.Getenv("STORAGE_BASE_URL") == "" {
			cfg.StorageBaseURL = "https://storage.googleapis.com/" + cfg.GCSBucket
		}
	default:
		return nil, &domain.ConfigurationError{Setting: "STORAGE_DRIVER", Reason: "must be fs or gcs"}
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, &domain.ConfigurationError{Setting: "MAX_UPLOAD_MB", Reason: "must be positive"}
	}

	return cfg, nil
}

// HasOpenAI reports whether remote generation can be attempted.
func (c *Config) HasOpenAI() bool {
	return c != nil && c.OpenAIAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration reads an integer count of unit.
func getEnvDuration(key string, fallback int, unit time.Duration) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * unit
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
