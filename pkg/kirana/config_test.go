package kirana

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  provider: gemini
  settings:
    api_key: test
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Loop.MaxRounds != 8 {
		t.Errorf("max_rounds = %d, want 8", cfg.Loop.MaxRounds)
	}
	if cfg.Tools.Concurrency != 1 {
		t.Errorf("concurrency = %d, want 1", cfg.Tools.Concurrency)
	}
	if cfg.Tools.TimeoutMS != 6000 {
		t.Errorf("timeout_ms = %d, want 6000", cfg.Tools.TimeoutMS)
	}
	if cfg.Weather.Provider != "wttr" || cfg.Search.Provider != "wikipedia" {
		t.Errorf("provider defaults = %s / %s", cfg.Weather.Provider, cfg.Search.Provider)
	}
	if !cfg.Privacy.RedactPII {
		t.Error("redact_pii should default to true")
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("KIRANA_TEST_KEY", "secret-from-env")
	path := writeConfig(t, `
backend:
  provider: gemini
  settings:
    api_key: ${KIRANA_TEST_KEY}
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend.Settings["api_key"] != "secret-from-env" {
		t.Errorf("api_key = %v, want env expansion", cfg.Backend.Settings["api_key"])
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	path := writeConfig(t, `
backend:
  provider: ""
`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("empty backend provider should fail validation")
	}

	path = writeConfig(t, `
backend:
  provider: gemini
loop:
  max_rounds: 0
`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("non-positive max_rounds should fail validation")
	}
}

func TestBuildGeminiRequiresAPIKey(t *testing.T) {
	cfg := Config{Backend: VendorConfig{Provider: "gemini", Settings: map[string]any{}}}
	if _, err := DefaultProviderRegistry().BuildBackend("gemini", cfg); err == nil {
		t.Fatal("missing api_key should fail")
	}
}

func TestProviderRegistryNormalizesNames(t *testing.T) {
	cfg := Config{Backend: VendorConfig{Provider: "Gemini", Settings: map[string]any{"api_key": "k"}}}
	backend, err := DefaultProviderRegistry().BuildBackend("  Gemini ", cfg)
	if err != nil {
		t.Fatalf("BuildBackend: %v", err)
	}
	if backend.Name() != "gemini" {
		t.Errorf("backend = %s", backend.Name())
	}

	if _, err := DefaultProviderRegistry().BuildWeather("openweather", cfg); err == nil {
		t.Error("unregistered weather provider should fail")
	}
}
