package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allKeys = []string{
	"EVENTHUB_CONFIG_FILE",
	"EVENTHUB_HTTP_PORT",
	"EVENTHUB_DATABASE_DSN",
	"EVENTHUB_JWT_SECRET",
	"EVENTHUB_SESSION_TTL",
	"EVENTHUB_PUBLIC_ORIGIN",
	"EVENTHUB_NATS_URL",
	"EVENTHUB_LOG_LEVEL",
	"EVENTHUB_STATE_DSN",
	"EVENTHUB_STATE_SLOT",
	"EVENTHUB_GATEWAY_URL",
	"EVENTHUB_OAUTH_GITHUB_CLIENT_ID",
	"EVENTHUB_OAUTH_FACEBOOK_CLIENT_ID",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EVENTHUB_JWT_SECRET", "super-secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.StateSlot != "event-storage" {
			t.Fatalf("unexpected default state slot: %q", cfg.StateSlot)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.JWTSecret != "super-secret" {
			t.Fatalf("expected secret to be loaded, got %q", cfg.JWTSecret)
		}
	})

	t.Run("errors when the server secret is missing", func(t *testing.T) {
		clearEnv(t)

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when secret is missing")
		}
		expected := "missing required environment variables: EVENTHUB_JWT_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("client configuration does not need a secret", func(t *testing.T) {
		clearEnv(t)

		cfg, err := LoadClient()
		if err != nil {
			t.Fatalf("LoadClient returned error: %v", err)
		}
		if cfg.GatewayURL != "http://localhost:8080" {
			t.Fatalf("unexpected gateway url: %q", cfg.GatewayURL)
		}
	})

	t.Run("reports invalid numeric and duration values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EVENTHUB_JWT_SECRET", "secret")
		t.Setenv("EVENTHUB_HTTP_PORT", "-1")
		t.Setenv("EVENTHUB_SESSION_TTL", "soon")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected validation error")
		}
		expected := "invalid configuration values: EVENTHUB_HTTP_PORT, EVENTHUB_SESSION_TTL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("environment overrides the yaml file", func(t *testing.T) {
		clearEnv(t)

		path := filepath.Join(t.TempDir(), "eventhub.yaml")
		content := "http_port: 9090\njwt_secret: from-file\nsession_ttl: 2h\npublic_origin: https://events.example.com/\nnats_url: nats://localhost:4222\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		t.Setenv("EVENTHUB_CONFIG_FILE", path)
		t.Setenv("EVENTHUB_HTTP_PORT", "7070")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 7070 {
			t.Fatalf("expected env port to win, got %d", cfg.HTTPPort)
		}
		if cfg.JWTSecret != "from-file" {
			t.Fatalf("expected secret from file, got %q", cfg.JWTSecret)
		}
		if cfg.SessionTTL != 2*time.Hour {
			t.Fatalf("expected TTL from file, got %s", cfg.SessionTTL)
		}
		if cfg.PublicOrigin != "https://events.example.com" {
			t.Fatalf("expected trailing slash trimmed, got %q", cfg.PublicOrigin)
		}
		if cfg.NATSURL != "nats://localhost:4222" {
			t.Fatalf("unexpected nats url: %q", cfg.NATSURL)
		}
	})

	t.Run("collects oauth client ids from the environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EVENTHUB_OAUTH_GITHUB_CLIENT_ID", "gh-client")

		cfg, err := LoadClient()
		if err != nil {
			t.Fatalf("LoadClient returned error: %v", err)
		}
		if cfg.OAuthClientIDs["github"] != "gh-client" {
			t.Fatalf("unexpected github client id: %v", cfg.OAuthClientIDs)
		}
		if _, ok := cfg.OAuthClientIDs["facebook"]; ok {
			t.Fatalf("facebook should not be enabled: %v", cfg.OAuthClientIDs)
		}
	})

	t.Run("fails on unreadable config file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EVENTHUB_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

		if _, err := LoadClient(); err == nil {
			t.Fatalf("expected error for missing config file")
		}
	})
}
