package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that carry provider credentials.
const (
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
	EnvRedisURL         = "REDIS_URL"
)

// Load reads the YAML file at path, overlays credentials from the
// environment (a .env file in the working directory is honoured) and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		c.Providers.Gemini.APIKey = v
	}
	if v := os.Getenv(EnvOpenRouterAPIKey); v != "" {
		c.Providers.OpenRouter.APIKey = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Transcript.RedisURL = v
	}
}
