package kirana

import (
	"fmt"
	"strings"
	"time"

	"github.com/harunnryd/kirana/pkg/configutil"
	"github.com/harunnryd/kirana/pkg/errorsx"
	"github.com/harunnryd/kirana/pkg/genai"
	"github.com/harunnryd/kirana/pkg/providers/gemini"
	"github.com/harunnryd/kirana/pkg/providers/wikipedia"
	"github.com/harunnryd/kirana/pkg/providers/wttr"
	"github.com/harunnryd/kirana/pkg/tools"
)

type BackendFactory func(cfg Config) (genai.Backend, error)
type WeatherFactory func(cfg Config) (tools.WeatherProvider, error)
type SearchFactory func(cfg Config) (tools.SummaryProvider, error)

// ProviderRegistry maps provider names from the config to factories.
type ProviderRegistry struct {
	backend map[string]BackendFactory
	weather map[string]WeatherFactory
	search  map[string]SearchFactory
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		backend: make(map[string]BackendFactory),
		weather: make(map[string]WeatherFactory),
		search:  make(map[string]SearchFactory),
	}
}

// DefaultProviderRegistry registers the built-in providers.
func DefaultProviderRegistry() *ProviderRegistry {
	r := NewProviderRegistry()
	r.RegisterBackend("gemini", buildGemini)
	r.RegisterWeather("wttr", buildWttr)
	r.RegisterSearch("wikipedia", buildWikipedia)
	return r
}

func (r *ProviderRegistry) RegisterBackend(name string, factory BackendFactory) {
	r.backend[normalize(name)] = factory
}

func (r *ProviderRegistry) RegisterWeather(name string, factory WeatherFactory) {
	r.weather[normalize(name)] = factory
}

func (r *ProviderRegistry) RegisterSearch(name string, factory SearchFactory) {
	r.search[normalize(name)] = factory
}

func (r *ProviderRegistry) BuildBackend(provider string, cfg Config) (genai.Backend, error) {
	fn := r.backend[normalize(provider)]
	if fn == nil {
		return nil, fmt.Errorf("backend provider not registered: %s", provider)
	}
	return fn(cfg)
}

func (r *ProviderRegistry) BuildWeather(provider string, cfg Config) (tools.WeatherProvider, error) {
	fn := r.weather[normalize(provider)]
	if fn == nil {
		return nil, fmt.Errorf("weather provider not registered: %s", provider)
	}
	return fn(cfg)
}

func (r *ProviderRegistry) BuildSearch(provider string, cfg Config) (tools.SummaryProvider, error) {
	fn := r.search[normalize(provider)]
	if fn == nil {
		return nil, fmt.Errorf("search provider not registered: %s", provider)
	}
	return fn(cfg)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type geminiSettings struct {
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	ImageModel        string `mapstructure:"image_model"`
	BaseURL           string `mapstructure:"base_url"`
	UseCircuitBreaker *bool  `mapstructure:"use_circuit_breaker"`
	CircuitThreshold  int    `mapstructure:"circuit_threshold"`
	CircuitCooldownMs int    `mapstructure:"circuit_cooldown_ms"`
}

func buildGemini(cfg Config) (genai.Backend, error) {
	if err := configutil.ValidateSettings(cfg.Backend.Settings, configutil.Schema{
		Required: []string{"api_key"},
		Optional: []string{"model", "image_model", "base_url", "use_circuit_breaker", "circuit_threshold", "circuit_cooldown_ms"},
	}); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonConfig)
	}
	var settings geminiSettings
	if err := configutil.DecodeSettings(cfg.Backend.Settings, &settings); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonConfig)
	}
	if err := configutil.RequireString(settings.APIKey, "backend.settings.api_key"); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonConfig)
	}
	if settings.Model == "" {
		settings.Model = "gemini-1.5-flash"
	}
	if settings.ImageModel == "" {
		settings.ImageModel = "imagen-3.0-light"
	}
	adapter := gemini.NewAdapter(settings.APIKey, settings.Model)
	adapter.ImageModel = settings.ImageModel
	if settings.BaseURL != "" {
		adapter.BaseURL = settings.BaseURL
	}
	if configutil.BoolValue(settings.UseCircuitBreaker, false) {
		adapter.UseCircuitBreaker(settings.CircuitThreshold, time.Duration(settings.CircuitCooldownMs)*time.Millisecond)
	}
	return adapter, nil
}

type httpProviderSettings struct {
	BaseURL string `mapstructure:"base_url"`
}

func buildWttr(cfg Config) (tools.WeatherProvider, error) {
	if err := configutil.ValidateSettings(cfg.Weather.Settings, configutil.Schema{
		Optional: []string{"base_url"},
	}); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonConfig)
	}
	var settings httpProviderSettings
	if err := configutil.DecodeSettings(cfg.Weather.Settings, &settings); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonConfig)
	}
	client := wttr.NewClient()
	if settings.BaseURL != "" {
		client.BaseURL = settings.BaseURL
	}
	return client, nil
}

func buildWikipedia(cfg Config) (tools.SummaryProvider, error) {
	if err := configutil.ValidateSettings(cfg.Search.Settings, configutil.Schema{
		Optional: []string{"base_url"},
	}); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonConfig)
	}
	var settings httpProviderSettings
	if err := configutil.DecodeSettings(cfg.Search.Settings, &settings); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonConfig)
	}
	client := wikipedia.NewClient()
	if settings.BaseURL != "" {
		client.BaseURL = settings.BaseURL
	}
	return client, nil
}
