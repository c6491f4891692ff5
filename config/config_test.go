package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"relay-assistant/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
openai:
  api_key: sk-test
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Device.BaseURL != "http://192.168.4.1" {
		t.Errorf("device base default: got %q", cfg.Device.BaseURL)
	}
	if cfg.Web.Addr != ":8080" {
		t.Errorf("web addr default: got %q", cfg.Web.Addr)
	}
	if cfg.Audio.Source != "web" {
		t.Errorf("audio source default: got %q", cfg.Audio.Source)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("sample rate default: got %d", cfg.Audio.SampleRate)
	}
	if cfg.OpenAI.CompletionModel == "" {
		t.Error("completion model default missing")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_RELAY_KEY", "sk-from-env")

	path := writeConfig(t, `
openai:
  api_key: ${TEST_RELAY_KEY}
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OpenAI.APIKey != "sk-from-env" {
		t.Errorf("api key: got %q", cfg.OpenAI.APIKey)
	}
}

func TestValidate_BadKeyPrefix(t *testing.T) {
	path := writeConfig(t, `
openai:
  api_key: not-a-key
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for bad key prefix")
	}
}

func TestValidate_MissingKey(t *testing.T) {
	path := writeConfig(t, `
device:
  base_url: http://10.0.0.5
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing key")
	}
}

func TestValidate_BadBaseURL(t *testing.T) {
	path := writeConfig(t, `
openai:
  api_key: sk-test
device:
  base_url: 192.168.4.1
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for schemeless base url")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
