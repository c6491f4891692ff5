package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Device   DeviceConfig   `yaml:"device"`
	Web      WebConfig      `yaml:"web"`
	Audio    AudioConfig    `yaml:"audio"`
	Pushover PushoverConfig `yaml:"pushover"`
	Log      LogConfig      `yaml:"log"`
}

type OpenAIConfig struct {
	APIKey          string `yaml:"api_key"`
	Language        string `yaml:"language"`
	CompletionModel string `yaml:"completion_model"`
}

type DeviceConfig struct {
	BaseURL string `yaml:"base_url"`
}

type WebConfig struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"`
}

type AudioConfig struct {
	Source     string `yaml:"source"`
	SampleRate int    `yaml:"sample_rate"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.OpenAI.CompletionModel == "" {
		c.OpenAI.CompletionModel = "gpt-4o-mini"
	}
	if c.Device.BaseURL == "" {
		c.Device.BaseURL = "http://192.168.4.1"
	}
	if c.Web.Addr == "" {
		c.Web.Addr = ":8080"
	}
	if c.Audio.Source == "" {
		c.Audio.Source = "web"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports configuration errors that must halt startup.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if !strings.HasPrefix(c.OpenAI.APIKey, "sk-") {
		return fmt.Errorf("openai.api_key does not look like an OpenAI key (expected sk- prefix)")
	}
	if !strings.HasPrefix(c.Device.BaseURL, "http://") && !strings.HasPrefix(c.Device.BaseURL, "https://") {
		return fmt.Errorf("device.base_url must be an http(s) URL, got %q", c.Device.BaseURL)
	}
	return nil
}
