package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is built once at startup and handed to the components that need it.
type Config struct {
	Port          string        `mapstructure:"port"`
	APIKey        string        `mapstructure:"countrylayer_api_key"`
	BaseURL       string        `mapstructure:"countries_base_url"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	UserAgent     string        `mapstructure:"user_agent"`
	// OutboundRPS of 0 disables the outbound limiter.
	OutboundRPS   float64       `mapstructure:"outbound_rps"`
	OutboundBurst int           `mapstructure:"outbound_burst"`
	LogLevel      string        `mapstructure:"log_level"`
	CORSOrigins   []string      `mapstructure:"cors_origins"`
	StaticDir     string        `mapstructure:"static_dir"`
}

const (
	DefaultBaseURL   = "https://restcountries.com/v3.1"
	DefaultUserAgent = "Global-Country-Explorer/1.0"
)

// Load merges defaults, an optional config.yaml and environment variables.
// Environment keys are the upper-cased field keys, e.g. PORT, FETCH_TIMEOUT.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "3000")
	v.SetDefault("countrylayer_api_key", "")
	v.SetDefault("countries_base_url", DefaultBaseURL)
	v.SetDefault("fetch_timeout", "10s")
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("outbound_rps", 0)
	v.SetDefault("outbound_burst", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("static_dir", "web")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("config: port is required")
	}
	if c.BaseURL == "" {
		return errors.New("config: countries_base_url is required")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("config: fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.OutboundRPS < 0 || c.OutboundBurst <= 0 {
		return fmt.Errorf("config: invalid outbound rate (rps=%v burst=%d)", c.OutboundRPS, c.OutboundBurst)
	}
	return nil
}

// Addr is the listen address for http.Server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func (c Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
