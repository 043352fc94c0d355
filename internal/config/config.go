// Package config provides configuration loading for the slide refiner.
// Settings come from an optional YAML file with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the slide refiner.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Refiner  RefinerConfig  `yaml:"refiner"`
	Limiter  LimiterConfig  `yaml:"limiter"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// RefinerConfig selects and configures the refine backend.
type RefinerConfig struct {
	Mode     string `yaml:"mode"` // stub or gemini
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// LimiterConfig selects the rate limiter implementation.
type LimiterConfig struct {
	Kind      string `yaml:"kind"` // memory or file
	StatePath string `yaml:"state_path"`
}

// PipelineConfig holds pipeline defaults overridable per invocation.
type PipelineConfig struct {
	DPI         int     `yaml:"dpi"`
	Concurrency int     `yaml:"concurrency"`
	RPS         float64 `yaml:"rps"`
	Resolution  string  `yaml:"resolution"`
	Background  string  `yaml:"background"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Refiner: RefinerConfig{
			Mode: "stub",
		},
		Limiter: LimiterConfig{
			Kind: "memory",
		},
		Pipeline: PipelineConfig{
			DPI:         200,
			Concurrency: 5,
			RPS:         2.0,
			Resolution:  "1920x1080",
			Background:  "black",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment overrides, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Refiner.Mode, "REFINER_MODE")
	setString(&c.Refiner.Model, "GEMINI_MODEL")
	setString(&c.Refiner.Endpoint, "GEMINI_ENDPOINT")
	setString(&c.Refiner.APIKey, "GEMINI_API_KEY")
	setString(&c.Limiter.Kind, "LIMITER_KIND")
	setString(&c.Limiter.StatePath, "LIMITER_STATE_PATH")
	setInt(&c.Pipeline.DPI, "RENDER_DPI")
	setInt(&c.Pipeline.Concurrency, "REFINE_CONCURRENCY")
	setFloat(&c.Pipeline.RPS, "REFINE_RPS")
	setString(&c.Pipeline.Resolution, "TARGET_RESOLUTION")
	setString(&c.Pipeline.Background, "BACKGROUND_MODE")
}

func setString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setInt(target *int, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func setFloat(target *float64, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}
