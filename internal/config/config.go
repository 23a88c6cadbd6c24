// Package config loads server configuration from environment variables,
// an optional config file, and command-line flags, using viper the way the
// cache-server teacher does, trimmed to the settings this core needs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/jffjs/kyev/internal/logging"
)

// Config holds the server's runtime settings.
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	MaxClients int           `mapstructure:"max_clients"`
	ReadBuffer int           `mapstructure:"read_buffer_bytes"`
	Timeout    time.Duration `mapstructure:"timeout"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	MetricsAddr string `mapstructure:"metrics_addr"`

	LaunchDarklyKey string `mapstructure:"launchdarkly_key"`
	SentryDSN       string `mapstructure:"sentry_dsn"`
}

// DefaultConfig returns a Config with the server's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:        "127.0.0.1",
		Port:        8080,
		MaxClients:  10000,
		ReadBuffer:  4096,
		Timeout:     30 * time.Second,
		LogLevel:    "info",
		LogFormat:   "json",
		MetricsAddr: "127.0.0.1:9090",
	}
}

// Load reads configuration from (in ascending priority) defaults, an
// optional kyev.yaml config file, KYEV_-prefixed environment variables,
// and already-bound command-line flags.
func Load() (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigName("kyev")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/kyev/")
	viper.AddConfigPath("$HOME/.kyev")

	viper.SetEnvPrefix("KYEV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("host", config.Host)
	viper.SetDefault("port", config.Port)
	viper.SetDefault("max_clients", config.MaxClients)
	viper.SetDefault("read_buffer_bytes", config.ReadBuffer)
	viper.SetDefault("timeout", config.Timeout)
	viper.SetDefault("log_level", config.LogLevel)
	viper.SetDefault("log_format", config.LogFormat)
	viper.SetDefault("metrics_addr", config.MetricsAddr)
	viper.SetDefault("launchdarkly_key", config.LaunchDarklyKey)
	viper.SetDefault("sentry_dsn", config.SentryDSN)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, nil
}

// Validate rejects an unusable configuration before the listener starts.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Port)
	}
	if c.MaxClients < 1 {
		return fmt.Errorf("max_clients must be at least 1")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	ok := false
	for _, lvl := range validLevels {
		if c.LogLevel == lvl {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("invalid log_level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLevels, ", "))
	}

	return nil
}

// Addr is the host:port the listener binds.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WatchLogLevel hot-reloads the log level only, via fsnotify on the config
// file. Host and port are never reloaded at runtime — rebinding the
// listener out from under live connections isn't something this core
// supports.
func WatchLogLevel() {
	log := logging.New("config").Sugar()
	viper.OnConfigChange(func(e fsnotify.Event) {
		level := viper.GetString("log_level")
		if err := logging.SetLevel(level); err != nil {
			log.Warnw("ignoring invalid log_level from reloaded config", "log_level", level, "error", err)
			return
		}
		log.Infow("log level reloaded", "log_level", level)
	})
	viper.WatchConfig()
}
