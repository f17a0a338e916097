package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings shared by the gateway server and the client CLI.
type Config struct {
	HTTPPort     int           `yaml:"http_port"`
	DatabaseDSN  string        `yaml:"database_dsn"`
	JWTSecret    string        `yaml:"jwt_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	PublicOrigin string        `yaml:"public_origin"`
	NATSURL      string        `yaml:"nats_url"`
	LogLevel     string        `yaml:"log_level"`
	StateDSN     string        `yaml:"state_dsn"`
	StateSlot    string        `yaml:"state_slot"`
	GatewayURL   string        `yaml:"gateway_url"`

	// OAuthClientIDs enables third-party sign-in, keyed by provider name.
	OAuthClientIDs map[string]string `yaml:"oauth_client_ids"`
}

// Defaults returns the configuration used when neither a file nor the
// environment provides a value.
func Defaults() Config {
	return Config{
		HTTPPort:     8080,
		DatabaseDSN:  "file:eventhub.db?_pragma=foreign_keys(1)",
		SessionTTL:   24 * time.Hour,
		PublicOrigin: "http://localhost:8080",
		LogLevel:     "info",
		StateDSN:     "file:eventhub-client.db",
		StateSlot:    "event-storage",
		GatewayURL:   "http://localhost:8080",
	}
}

// Load parses configuration for the gateway server. The JWT secret is required.
func Load() (Config, error) {
	return load(true)
}

// LoadClient parses configuration for the client CLI, which never signs tokens.
func LoadClient() (Config, error) {
	return load(false)
}

// load applies, in order: defaults, the YAML file named by EVENTHUB_CONFIG_FILE,
// then individual environment variables.
func load(requireSecret bool) (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("EVENTHUB_CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("EVENTHUB_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "EVENTHUB_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("EVENTHUB_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "EVENTHUB_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	overrideString(&cfg.DatabaseDSN, "EVENTHUB_DATABASE_DSN")
	overrideString(&cfg.JWTSecret, "EVENTHUB_JWT_SECRET")
	overrideString(&cfg.PublicOrigin, "EVENTHUB_PUBLIC_ORIGIN")
	overrideString(&cfg.NATSURL, "EVENTHUB_NATS_URL")
	overrideString(&cfg.LogLevel, "EVENTHUB_LOG_LEVEL")
	overrideString(&cfg.StateDSN, "EVENTHUB_STATE_DSN")
	overrideString(&cfg.StateSlot, "EVENTHUB_STATE_SLOT")
	overrideString(&cfg.GatewayURL, "EVENTHUB_GATEWAY_URL")

	for _, provider := range []string{"github", "facebook"} {
		key := "EVENTHUB_OAUTH_" + strings.ToUpper(provider) + "_CLIENT_ID"
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			if cfg.OAuthClientIDs == nil {
				cfg.OAuthClientIDs = make(map[string]string)
			}
			cfg.OAuthClientIDs[provider] = value
		}
	}

	cfg.PublicOrigin = strings.TrimRight(cfg.PublicOrigin, "/")
	cfg.GatewayURL = strings.TrimRight(cfg.GatewayURL, "/")

	if requireSecret && cfg.JWTSecret == "" {
		missing = append(missing, "EVENTHUB_JWT_SECRET")
	}
	if cfg.HTTPPort <= 0 {
		invalid = append(invalid, "http_port")
	}
	if cfg.SessionTTL <= 0 {
		invalid = append(invalid, "session_ttl")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func overrideString(target *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	}
}
