package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://example")
	for _, key := range []string{
		"PORT", "STORAGE_BASE_URL", "STORAGE_DRIVER", "GCS_BUCKET", "OPENAI_API_KEY",
		"GENERATION_INTERVAL_MS", "MAX_UPLOAD_MB", "CORS_ALLOWED_ORIGINS", "OPENAI_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageBaseURL != "http://localhost:8080/storage" {
		t.Fatalf("StorageBaseURL = %q", cfg.StorageBaseURL)
	}
	if cfg.StorageDriver != StorageDriverFS {
		t.Fatalf("StorageDriver = %q, want fs", cfg.StorageDriver)
	}
	if cfg.GenerationInterval != time.Second {
		t.Fatalf("GenerationInterval = %v, want 1s", cfg.GenerationInterval)
	}
	if cfg.OpenAITimeout != 120*time.Second || cfg.OpenAIMaxAttempts != 2 {
		t.Fatalf("openai timeout = %v attempts = %d", cfg.OpenAITimeout, cfg.OpenAIMaxAttempts)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.HasOpenAI() {
		t.Fatalf("HasOpenAI should be false without OPENAI_API_KEY")
	}
}

func TestLoadConfigInheritsPortInStorageBaseURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "1919")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageBaseURL != "http://localhost:1919/storage" {
		t.Fatalf("StorageBaseURL = %q", cfg.StorageBaseURL)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_BASE_URL", "https://cdn.example.com/static")
	t.Setenv("GENERATION_INTERVAL_MS", "250")
	t.Setenv("MAX_UPLOAD_MB", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("OPENAI_API_KEY", " sk-test ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageBaseURL != "https://cdn.example.com/static" {
		t.Fatalf("StorageBaseURL = %q", cfg.StorageBaseURL)
	}
	if cfg.GenerationInterval != 250*time.Millisecond {
		t.Fatalf("GenerationInterval = %v", cfg.GenerationInterval)
	}
	if cfg.MaxUploadBytes != 4<<20 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.HasOpenAI() || cfg.OpenAIAPIKey != "sk-test" {
		t.Fatalf("OpenAIAPIKey = %q", cfg.OpenAIAPIKey)
	}
}

func TestLoadConfigGCSDefaultsBaseURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_DRIVER", "GCS")
	t.Setenv("GCS_BUCKET", "print-templates")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageDriver != StorageDriverGCS {
		t.Fatalf("StorageDriver = %q", cfg.StorageDriver)
	}
	if cfg.StorageBaseURL != "https://storage.googleapis.com/print-templates" {
		t.Fatalf("StorageBaseURL = %q", cfg.StorageBaseURL)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		setting string
	}{
		{name: "missing database", env: map[string]string{"DATABASE_URL": ""}},
		{name: "gcs without bucket", env: map[string]string{"STORAGE_DRIVER": "gcs"}, setting: "GCS_BUCKET"},
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "s3"}, setting: "STORAGE_DRIVER"},
		{name: "zero upload size", env: map[string]string{"MAX_UPLOAD_MB": "0"}, setting: "MAX_UPLOAD_MB"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.setting == "" {
				return
			}
			var cfgErr *domain.ConfigurationError
			if !errors.As(err, &cfgErr) || cfgErr.Setting != tc.setting {
				t.Fatalf("err = %v, want configuration error for %s", err, tc.setting)
			}
		})
	}
}
