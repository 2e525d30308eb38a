package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("default provider = %s", cfg.Provider)
	}
	if cfg.Port != 8080 {
		t.Errorf("default port = %d", cfg.Port)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Provider != ProviderAnthropic || cfg.DataDir != ".lexflow" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFileAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lexflow.yml")
	content := "provider: openai\nmodel: gpt-4o\nport: 9000\ndefault_team: intake\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("LEXFLOW_PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("provider = %s, want openai", cfg.Provider)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("model = %s", cfg.Model)
	}
	if cfg.Port != 9100 {
		t.Errorf("port = %d, env override should win", cfg.Port)
	}
	if cfg.DefaultTeam != "intake" {
		t.Errorf("default team = %s", cfg.DefaultTeam)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lexflow.yml")

	cfg := DefaultConfig()
	cfg.FirmName = "Harbor Legal"
	cfg.Provider = ProviderOpenAI
	cfg.Model = "gpt-4o"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.FirmName != "Harbor Legal" || got.Provider != ProviderOpenAI {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Provider = "bedrock" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"bad quality", func(c *Config) { c.Quality = "ultra" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"negative retention", func(c *Config) { c.AuditRetentionDays = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetPresetFallsBackToNormal(t *testing.T) {
	p := GetPreset(ProviderOpenAI, "")
	if p.Model != "gpt-4o" {
		t.Errorf("fallback preset = %q, want gpt-4o", p.Model)
	}
}
