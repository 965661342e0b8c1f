// Package config loads service configuration from the environment in the
// twelve-factor style, with a .env convenience file for development.
package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config is the service configuration.
type Config struct {
	Port            string `mapstructure:"PORT"`
	Env             string `mapstructure:"ENV"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32  `mapstructure:"DB_MIN_CONNS"`
	DefaultOrg      string `mapstructure:"DEFAULT_ORG"`
	MasterSecret    string `mapstructure:"MASTER_SECRET"`
	AuthSecret      string `mapstructure:"AUTH_SECRET"`
	KeyServiceURL   string `mapstructure:"KEY_SERVICE_URL"`
	KeyServiceToken string `mapstructure:"KEY_SERVICE_TOKEN"`
	SharedConfigURL string `mapstructure:"SHARED_CONFIG_URL"`
	LocalConfigPath string `mapstructure:"LOCAL_CONFIG_PATH"`
}

// Load reads configuration from the environment (and .env when present).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DEFAULT_ORG", "default")
	v.SetDefault("LOCAL_CONFIG_PATH", "settings.local.json")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DEFAULT_ORG")
	v.BindEnv("MASTER_SECRET")
	v.BindEnv("AUTH_SECRET")
	v.BindEnv("KEY_SERVICE_URL")
	v.BindEnv("KEY_SERVICE_TOKEN")
	v.BindEnv("SHARED_CONFIG_URL")
	v.BindEnv("LOCAL_CONFIG_PATH")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() && cfg.MasterSecret == "" {
		log.Println("WARNING: MASTER_SECRET is not set; org key derivation is disabled and form data is stored in plaintext.")
	}

	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. In production the
// master and auth secrets are required so encryption at rest and
// key-service authentication are actually enforced.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.MasterSecret == "" {
			return fmt.Errorf("MASTER_SECRET is required in production")
		}
		if c.AuthSecret == "" {
			return fmt.Errorf("AUTH_SECRET is required in production")
		}
	}
	if len(c.MasterSecret) > 0 && len(c.MasterSecret) < 16 {
		return fmt.Errorf("MASTER_SECRET must be at least 16 characters, got %d", len(c.MasterSecret))
	}
	return nil
}
