package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// AppConfig captures configuration for the server, the search engine, and observability.
type AppConfig struct {
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`
}

// ServerConfig controls network settings.
type ServerConfig struct {
	Listen          string        `toml:"listen" yaml:"listen"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// EngineConfig seeds the in-memory index.
type EngineConfig struct {
	StopWords []string `toml:"stop_words" yaml:"stop_words"`
	// Corpus is an optional TOML, YAML or JSON file of documents loaded at startup.
	Corpus string `toml:"corpus" yaml:"corpus"`
}

// LoggingConfig selects the slog handler and toggles request logs.
type LoggingConfig struct {
	Level       string `toml:"level" yaml:"level"`
	Format      string `toml:"format" yaml:"format"`
	RequestLogs *bool  `toml:"request_logs" yaml:"request_logs"`
}

// MetricsConfig enables counters/telemetry endpoints.
type MetricsConfig struct {
	Enabled *bool `toml:"enabled" yaml:"enabled"`
}

// DefaultConfig returns the baseline configuration used when no file is supplied.
func DefaultConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{Listen: ":8080", ShutdownTimeout: 10 * time.Second},
		Engine: EngineConfig{StopWords: []string{}},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			RequestLogs: boolPtr(true),
		},
		Metrics: MetricsConfig{Enabled: boolPtr(true)},
	}
}

// Load reads the provided config path, merging it onto the defaults.
func Load(path string) (AppConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var fileCfg AppConfig
	switch ext {
	case ".toml":
		if err := toml.Unmarshal(content, &fileCfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &fileCfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return AppConfig{}, errors.New("config file must be .toml, .yaml, or .yml")
	}

	merged := mergeConfig(cfg, fileCfg)
	if err := merged.validate(); err != nil {
		return AppConfig{}, err
	}
	return merged, nil
}

func mergeConfig(base, override AppConfig) AppConfig {
	if override.Server.Listen != "" {
		base.Server.Listen = override.Server.Listen
	}
	if override.Server.ShutdownTimeout != 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}

	if override.Engine.StopWords != nil {
		base.Engine.StopWords = override.Engine.StopWords
	}
	if override.Engine.Corpus != "" {
		base.Engine.Corpus = override.Engine.Corpus
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}
	if override.Logging.RequestLogs != nil {
		base.Logging.RequestLogs = override.Logging.RequestLogs
	}

	if override.Metrics.Enabled != nil {
		base.Metrics.Enabled = override.Metrics.Enabled
	}

	return base
}

func (cfg AppConfig) validate() error {
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", cfg.Logging.Format)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout must be non-negative")
	}
	return nil
}

// RequestLogsEnabled reports whether per-request logs are on.
func (cfg AppConfig) RequestLogsEnabled() bool {
	return cfg.Logging.RequestLogs == nil || *cfg.Logging.RequestLogs
}

// MetricsEnabled reports whether the telemetry pipeline should be built.
func (cfg AppConfig) MetricsEnabled() bool {
	return cfg.Metrics.Enabled != nil && *cfg.Metrics.Enabled
}

func boolPtr(v bool) *bool {
	return &v
}
