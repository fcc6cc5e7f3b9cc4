package kirana

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/harunnryd/kirana/pkg/assistant"
	"github.com/harunnryd/kirana/pkg/genai"
	"github.com/harunnryd/kirana/pkg/logging"
	"github.com/harunnryd/kirana/pkg/metrics"
	"github.com/harunnryd/kirana/pkg/tools"
)

// BuildSession assembles a ready-to-use assistant session from config:
// backend, data providers, tool registry, dispatcher, metrics.
func BuildSession(cfg Config, registry *ProviderRegistry, logger *slog.Logger) (*assistant.Session, metrics.Observer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	backend, err := registry.BuildBackend(cfg.Backend.Provider, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build backend: %w", err)
	}
	weather, err := registry.BuildWeather(cfg.Weather.Provider, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build weather provider: %w", err)
	}
	search, err := registry.BuildSearch(cfg.Search.Provider, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build search provider: %w", err)
	}

	state := tools.NewAssistantState()
	toolRegistry, err := tools.DefaultRegistry(state, tools.Providers{
		Weather: weather,
		Search:  search,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build tool registry: %w", err)
	}

	obs, err := buildObserver(cfg)
	if err != nil {
		return nil, nil, err
	}

	dispatcher := tools.NewDispatcher(toolRegistry, tools.DispatcherOptions{
		Timeout:      time.Duration(cfg.Tools.TimeoutMS) * time.Millisecond,
		Retries:      cfg.Tools.Retries,
		RetryBackoff: time.Duration(cfg.Tools.RetryBackoffMS) * time.Millisecond,
		Concurrency:  cfg.Tools.Concurrency,
	})
	dispatcher.SetObserver(obs)

	images, _ := backend.(genai.ImageGenerator)
	session := assistant.NewSession(backend, toolRegistry, dispatcher, state, assistant.Options{
		SystemInstruction: cfg.BasePrompt,
		MaxRounds:         cfg.Loop.MaxRounds,
		Images:            images,
		Logger:            logging.NewComponentLogger(logger, "assistant"),
		Observer:          obs,
	})
	return session, obs, nil
}

func buildObserver(cfg Config) (metrics.Observer, error) {
	if cfg.Observability.MetricsPath == "" {
		return metrics.NoopObserver{}, nil
	}
	f, err := os.OpenFile(cfg.Observability.MetricsPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open metrics file: %w", err)
	}
	var obs metrics.Observer = metrics.NewJSONLObserver(f)
	if rate := cfg.Observability.SampleRate; rate > 0 && rate < 1 {
		obs = metrics.NewSamplingObserver(obs, rate)
	}
	return metrics.NewAsyncObserver(obs, 256), nil
}
