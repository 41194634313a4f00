// Package config reads process settings from the environment (and a .env
// file when one exists).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ovaphlow/pitchfork/service-opofit/pkg/database"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/utilities"
)

const (
	BackendLocal    = "local"
	BackendPostgres = "postgres"
)

type Admin struct {
	Email    string
	Password string
	Name     string
}

// Enabled reports whether start-up admin provisioning was configured.
func (a Admin) Enabled() bool { return a.Email != "" && a.Password != "" }

type Config struct {
	HTTPAddr         string
	Backend          string
	Database         database.Config
	SessionSecret    string
	SessionTTL       time.Duration
	SnowflakeNode    int64
	Log              utilities.Config
	ProfileRetryBase time.Duration
	Admin            Admin
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("http_addr", "0.0.0.0:8431")
	v.SetDefault("store_backend", BackendLocal)
	v.SetDefault("database_url", "")
	v.SetDefault("database_max_conns", 5)
	v.SetDefault("database_timezone", "")
	v.SetDefault("database_client_encoding", "")
	v.SetDefault("session_secret", "")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("snowflake_node", 1)
	v.SetDefault("log_level", "")
	v.SetDefault("log_dev", false)
	v.SetDefault("log_file", "")
	v.SetDefault("profile_retry_base", 100*time.Millisecond)
	v.SetDefault("admin_email", "")
	v.SetDefault("admin_password", "")
	v.SetDefault("admin_name", "Administrador")
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPAddr: v.GetString("http_addr"),
		Backend:  strings.ToLower(strings.TrimSpace(v.GetString("store_backend"))),
		Database: database.Config{
			DSN:            v.GetString("database_url"),
			MaxConns:       v.GetInt("database_max_conns"),
			TimeZone:       v.GetString("database_timezone"),
			ClientEncoding: v.GetString("database_client_encoding"),
		},
		SessionSecret: v.GetString("session_secret"),
		SessionTTL:    v.GetDuration("session_ttl"),
		SnowflakeNode: v.GetInt64("snowflake_node"),
		Log: utilities.Config{
			Level: v.GetString("log_level"),
			Dev:   v.GetBool("log_dev"),
			File:  v.GetString("log_file"),
		},
		ProfileRetryBase: v.GetDuration("profile_retry_base"),
		Admin: Admin{
			Email:    strings.TrimSpace(v.GetString("admin_email")),
			Password: v.GetString("admin_password"),
			Name:     strings.TrimSpace(v.GetString("admin_name")),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendLocal:
	case BackendPostgres:
		if c.Database.DSN == "" {
			return errors.New("config: DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Backend)
	}
	if c.SessionSecret == "" {
		return errors.New("config: SESSION_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.ProfileRetryBase <= 0 {
		return fmt.Errorf("config: PROFILE_RETRY_BASE must be positive, got %s", c.ProfileRetryBase)
	}
	if c.SnowflakeNode < 0 || c.SnowflakeNode > 1023 {
		return fmt.Errorf("config: SNOWFLAKE_NODE out of range: %d", c.SnowflakeNode)
	}
	return nil
}
