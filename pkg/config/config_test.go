package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8089" {
		t.Errorf("Expected Port to be 8089, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Ingest.FTDelay != time.Second {
		t.Errorf("Expected FT delay 1s, got %v", cfg.Ingest.FTDelay)
	}

	if cfg.Ingest.NvidiaDelay != 2*time.Second || cfg.Ingest.FinnhubDelay != 2*time.Second {
		t.Errorf("Expected 2s delays, got %v / %v", cfg.Ingest.NvidiaDelay, cfg.Ingest.FinnhubDelay)
	}

	if cfg.SecretsFile != filepath.Join(".secrets", "keys.toml") {
		t.Errorf("Unexpected secrets file default %s", cfg.SecretsFile)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SCRAPE_MAX_PAGES", "12")
	t.Setenv("FT_DELAY", "250ms")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}
	if cfg.Ingest.MaxPages != 12 {
		t.Errorf("Expected MaxPages 12, got %d", cfg.Ingest.MaxPages)
	}
	if cfg.Ingest.FTDelay != 250*time.Millisecond {
		t.Errorf("Expected FT delay 250ms, got %v", cfg.Ingest.FTDelay)
	}
	if !cfg.Redis.Enabled {
		t.Error("Expected Redis to be enabled")
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "qa")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown ENV, got nil")
	}
}

func TestGetEnvAsDurationFallback(t *testing.T) {
	t.Setenv("SOME_DELAY", "not-a-duration")

	if got := getEnvAsDuration("SOME_DELAY", "3s"); got != 3*time.Second {
		t.Errorf("Expected fallback 3s, got %v", got)
	}
}

const sampleSecrets = `
[database_credentials]
username = "analyst"
host = "db.internal"
port = "5433"
database = "news"

[fin_times_site]
site_ft = "https://www.ft.com/search?q=nvidia"
ft_sup = "&sort=date"
link_ft_for_href = "https://www.ft.com"

[original_nvidia_site]
site_nv_url = "https://nvidianews.nvidia.com/news?"
relative_site_nv_url = "https://nvidianews.nvidia.com"

[api_finhub]
api_key = "secret-key"
`

func writeSecrets(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write secrets: %v", err)
	}
	return path
}

func TestLoadSecrets(t *testing.T) {
	path := writeSecrets(t, sampleSecrets)

	s, err := LoadSecrets(path)
	if err != nil {
		t.Fatalf("LoadSecrets() failed: %v", err)
	}

	if s.Database.Username != "analyst" || s.Database.Port != "5433" {
		t.Errorf("Unexpected database section: %+v", s.Database)
	}
	if s.FT.Suffix != "&sort=date" || s.FT.LinkPrefix != "https://www.ft.com" {
		t.Errorf("Unexpected FT section: %+v", s.FT)
	}
	if s.Nvidia.RelativeURL != "https://nvidianews.nvidia.com" {
		t.Errorf("Unexpected NVIDIA section: %+v", s.Nvidia)
	}
	if s.Finnhub.APIKey != "secret-key" {
		t.Errorf("Unexpected API key %q", s.Finnhub.APIKey)
	}
}

func TestLoadSecretsEnvOverridesAbsentKeys(t *testing.T) {
	path := writeSecrets(t, `
[database_credentials]
username = "analyst"
database = "news"
`)
	t.Setenv("NEWSALPHA_API_FINHUB_API_KEY", "env-key")
	t.Setenv("NEWSALPHA_DATABASE_CREDENTIALS_PASSWORD", "env-pw")

	s, err := LoadSecrets(path)
	if err != nil {
		t.Fatalf("LoadSecrets() failed: %v", err)
	}
	if s.Finnhub.APIKey != "env-key" {
		t.Errorf("Expected API key from env, got %q", s.Finnhub.APIKey)
	}
	if s.Database.Password != "env-pw" {
		t.Errorf("Expected password from env, got %q", s.Database.Password)
	}
	if s.Database.Host != "localhost" {
		t.Errorf("Expected default host, got %q", s.Database.Host)
	}
}

func TestLoadSecretsMissingFile(t *testing.T) {
	if _, err := LoadSecrets(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Expected error for missing secrets file")
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name  string
		creds DatabaseCredentials
		want  string
	}{
		{
			name:  "passwordless",
			creds: DatabaseCredentials{Username: "analyst", Host: "localhost", Port: "5432", Database: "news"},
			want:  "postgres://analyst@localhost:5432/news",
		},
		{
			name:  "with password",
			creds: DatabaseCredentials{Username: "analyst", Password: "pw", Host: "localhost", Port: "5432", Database: "news"},
			want:  "postgres://analyst:pw@localhost:5432/news",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.creds.DSN(); got != tt.want {
				t.Errorf("DSN() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	path := writeSecrets(t, sampleSecrets)

	cfg := &Config{SecretsFile: path}
	got, err := cfg.DatabaseURL()
	if err != nil {
		t.Fatalf("DatabaseURL() failed: %v", err)
	}
	if got != "postgres://analyst@db.internal:5433/news" {
		t.Errorf("Unexpected URL %s", got)
	}

	cfg.Database.URL = "postgres://override@localhost:5432/x"
	got, err = cfg.DatabaseURL()
	if err != nil {
		t.Fatalf("DatabaseURL() failed: %v", err)
	}
	if got != cfg.Database.URL {
		t.Errorf("Expected override to win, got %s", got)
	}
}
