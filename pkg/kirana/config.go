package kirana

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Backend       VendorConfig        `mapstructure:"backend"`
	Weather       VendorConfig        `mapstructure:"weather"`
	Search        VendorConfig        `mapstructure:"search"`
	Loop          LoopConfig          `mapstructure:"loop"`
	Tools         ToolsConfig         `mapstructure:"tools"`
	BasePrompt    string              `mapstructure:"base_prompt"`
	Environment   string              `mapstructure:"environment"`
	LogLevel      string              `mapstructure:"log_level"`
	LogFormat     string              `mapstructure:"log_format"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Privacy       PrivacyConfig       `mapstructure:"privacy"`
}

// VendorConfig names a provider implementation plus its free-form
// settings, decoded per provider with configutil.DecodeSettings.
type VendorConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type LoopConfig struct {
	// MaxRounds bounds the submit/dispatch cycles of one turn.
	MaxRounds int `mapstructure:"max_rounds"`
}

type ToolsConfig struct {
	Concurrency    int `mapstructure:"concurrency"`
	TimeoutMS      int `mapstructure:"timeout_ms"`
	Retries        int `mapstructure:"retries"`
	RetryBackoffMS int `mapstructure:"retry_backoff_ms"`
}

type ObservabilityConfig struct {
	// MetricsPath appends JSONL metrics events to a file when set.
	MetricsPath string `mapstructure:"metrics_path"`
	// SampleRate keeps this fraction of metrics events, 0 to 1.
	SampleRate float64 `mapstructure:"sample_rate"`
}

type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("backend.provider", "gemini")
	v.SetDefault("weather.provider", "wttr")
	v.SetDefault("search.provider", "wikipedia")
	v.SetDefault("loop.max_rounds", 8)
	v.SetDefault("tools.concurrency", 1)
	v.SetDefault("tools.timeout_ms", 6000)
	v.SetDefault("tools.retries", 0)
	v.SetDefault("tools.retry_backoff_ms", 150)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("observability.metrics_path", "")
	v.SetDefault("observability.sample_rate", 1.0)
	v.SetDefault("privacy.redact_pii", true)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}

	expandEnvStrings(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.Provider) == "" {
		return fmt.Errorf("backend.provider is required")
	}
	if strings.TrimSpace(c.Weather.Provider) == "" {
		return fmt.Errorf("weather.provider is required")
	}
	if strings.TrimSpace(c.Search.Provider) == "" {
		return fmt.Errorf("search.provider is required")
	}
	if c.Loop.MaxRounds <= 0 {
		return fmt.Errorf("loop.max_rounds must be positive")
	}
	return nil
}

func expandEnvStrings(cfg *Config) {
	cfg.BasePrompt = os.ExpandEnv(cfg.BasePrompt)
	cfg.Observability.MetricsPath = os.ExpandEnv(cfg.Observability.MetricsPath)
	cfg.Backend.Settings = expandSettings(cfg.Backend.Settings)
	cfg.Weather.Settings = expandSettings(cfg.Weather.Settings)
	cfg.Search.Settings = expandSettings(cfg.Search.Settings)
}

func expandSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	for k, v := range settings {
		settings[k] = expandAny(v)
	}
	return settings
}

func expandAny(v any) any {
	switch val := v.(type) {
	case string:
		return os.ExpandEnv(val)
	case []any:
		for i := range val {
			val[i] = expandAny(val[i])
		}
		return val
	case map[string]any:
		for k, v := range val {
			val[k] = expandAny(v)
		}
		return val
	default:
		return v
	}
}
