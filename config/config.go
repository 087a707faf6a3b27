// Package config holds the runtime settings of the catalog client.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New()

// Config is the validated client configuration.
type Config struct {
	APIURL    string        `validate:"required,url"`
	APIPrefix string        `validate:"omitempty,startswith=/"`
	Timeout   time.Duration `validate:"gt=0"`
	PageSize  int           `validate:"gt=0"`
	LogLevel  string
	LogFormat string `validate:"oneof=console json"`
	Listen    string `validate:"required"`
}

// Default values, shared by the CLI flag definitions.
const (
	DefaultAPIURL    = "http://localhost:3002"
	DefaultAPIPrefix = "/bp"
	DefaultTimeout   = 10 * time.Second
	DefaultPageSize  = 5
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
	DefaultListen    = ":3002"
)

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api-url", DefaultAPIURL)
	v.SetDefault("api-prefix", DefaultAPIPrefix)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("page-size", DefaultPageSize)
	v.SetDefault("log-level", DefaultLogLevel)
	v.SetDefault("log-format", DefaultLogFormat)
	v.SetDefault("listen", DefaultListen)
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		APIURL:    strings.TrimRight(v.GetString("api-url"), "/"),
		APIPrefix: strings.TrimRight(v.GetString("api-prefix"), "/"),
		Timeout:   v.GetDuration("timeout"),
		PageSize:  v.GetInt("page-size"),
		LogLevel:  strings.ToLower(v.GetString("log-level")),
		LogFormat: strings.ToLower(v.GetString("log-format")),
		Listen:    v.GetString("listen"),
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// BaseURL is the API url joined with the gateway prefix.
func (c *Config) BaseURL() string {
	return c.APIURL + c.APIPrefix
}
