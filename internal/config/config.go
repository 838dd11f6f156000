// Package config handles configuration loading for wheelcommittee.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WHEELCOMMITTEE_API_PORT.
const EnvPrefix = "WHEELCOMMITTEE"

// Config represents the complete application configuration.
type Config struct {
	LLM        LLMConfig        `mapstructure:"llm"         yaml:"llm"`
	MarketData MarketDataConfig `mapstructure:"market_data" yaml:"market_data"`
	API        APIConfig        `mapstructure:"api"         yaml:"api"`
	Logging    LoggingConfig    `mapstructure:"logging"     yaml:"logging"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	AnthropicKey string  `mapstructure:"anthropic_key" yaml:"anthropic_key"`
	BaseURL      string  `mapstructure:"base_url"      yaml:"base_url"`
	Model        string  `mapstructure:"model"         yaml:"model"`
	Temperature  float64 `mapstructure:"temperature"   yaml:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"    yaml:"max_tokens"`
}

// Enabled reports whether an LLM key is configured.
func (c LLMConfig) Enabled() bool { return c.AnthropicKey != "" }

// MarketDataConfig holds upstream market data settings.
type MarketDataConfig struct {
	BaseURL          string        `mapstructure:"base_url"          yaml:"base_url"`
	HTTPTimeout      time.Duration `mapstructure:"http_timeout"      yaml:"http_timeout"`
	ExtraExpirations int           `mapstructure:"extra_expirations" yaml:"extra_expirations"`
	MaxTickers       int           `mapstructure:"max_tickers"       yaml:"max_tickers"`
	LookbackDays     int           `mapstructure:"lookback_days"     yaml:"lookback_days"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host           string        `mapstructure:"host"            yaml:"host"`
	Port           int           `mapstructure:"port"            yaml:"port"`
	CORSOrigins    []string      `mapstructure:"cors_origins"    yaml:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// Addr returns the host:port listen address.
func (c APIConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
	Output string `mapstructure:"output" yaml:"output"` // "stderr", "stdout" or a file path
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.wheelcommittee/config.yaml (home directory)
//  3. /etc/wheelcommittee/config.yaml (system)
//
// Environment variables override config file values.
// Format: WHEELCOMMITTEE_<SECTION>_<KEY>, e.g., WHEELCOMMITTEE_MARKET_DATA_HTTP_TIMEOUT
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".wheelcommittee"))
	v.AddConfigPath("/etc/wheelcommittee")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override sensitive values from environment
	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.MarketData.HTTPTimeout <= 0:
		return fmt.Errorf("market_data.http_timeout must be positive, got %s", c.MarketData.HTTPTimeout)
	case c.MarketData.ExtraExpirations < 0:
		return fmt.Errorf("market_data.extra_expirations must not be negative, got %d", c.MarketData.ExtraExpirations)
	case c.MarketData.MaxTickers <= 0:
		return fmt.Errorf("market_data.max_tickers must be positive, got %d", c.MarketData.MaxTickers)
	case c.MarketData.LookbackDays <= 0:
		return fmt.Errorf("market_data.lookback_days must be positive, got %d", c.MarketData.LookbackDays)
	case c.API.Port <= 0 || c.API.Port > 65535:
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.base_url", "https://api.anthropic.com/v1")
	v.SetDefault("llm.model", "claude-sonnet-4-20250514")
	v.SetDefault("llm.max_tokens", 16384)

	// Market data defaults
	v.SetDefault("market_data.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("market_data.http_timeout", 30*time.Second)
	v.SetDefault("market_data.extra_expirations", 5)
	v.SetDefault("market_data.max_tickers", 20)
	v.SetDefault("market_data.lookback_days", 365)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.request_timeout", 300*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The prefixed variable wins over the provider's conventional one.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.LLM.AnthropicKey = key
	}
	if key := os.Getenv(EnvPrefix + "_LLM_ANTHROPIC_KEY"); key != "" {
		cfg.LLM.AnthropicKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
