package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the top-level TOML structure consumed by the serve command.
type Config struct {
	Server  *ServerConfig  `toml:"server" mapstructure:"server"`
	Metrics *MetricsConfig `toml:"metrics" mapstructure:"metrics"`
	Audit   *AuditConfig   `toml:"audit" mapstructure:"audit"`
	Log     *LogConfig     `toml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Listen  string `toml:"listen" mapstructure:"listen"`
}

// AuditConfig selects the sink for per-pid action events by DSN.
// Supported schemes: sqlite://, postgres://, clickhouse:// and bare file
// paths (SQLite).
type AuditConfig struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

type LogConfig struct {
	Level      string `toml:"level" mapstructure:"level"`
	File       string `toml:"file" mapstructure:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// Load parses a TOML config file. Missing sections fall back to defaults:
// a local listener on :8080 under /api, metrics disabled, no audit sink.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("log.level", "info")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Server == nil {
		cfg.Server = &ServerConfig{Listen: ":8080", BasePath: "/api"}
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Log == nil {
		cfg.Log = &LogConfig{Level: "info"}
	}
	return &cfg, nil
}
