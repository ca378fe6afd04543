// Package config loads the optional .surveyforge.yml project file.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// UI modes accepted by the ui field.
const (
	UIAuto  = "auto"
	UILive  = "live"
	UIPlain = "plain"
)

// Defaults applied by Normalize.
const (
	DefaultOutputDir      = "surveyforge-out"
	DefaultLogLevel       = "info"
	DefaultAddr           = "127.0.0.1:8080"
	DefaultRequestTimeout = "30s"
	DefaultLOIPosition    = 50
)

// Config is the parsed project file.
type Config struct {
	Version   int         `yaml:"version"`
	OutputDir string      `yaml:"output_dir"`
	LogLevel  string      `yaml:"log_level"`
	HistoryDB string      `yaml:"history_db"`
	Workers   int         `yaml:"workers"`
	UI        string      `yaml:"ui"`
	LOI       LOIConfig   `yaml:"loi"`
	Serve     ServeConfig `yaml:"serve"`
}

// LOIConfig holds LOI slider settings.
type LOIConfig struct {
	InitialPosition *int `yaml:"initial_position"`
}

// ServeConfig holds preview server settings.
type ServeConfig struct {
	Addr           string `yaml:"addr"`
	RequestTimeout string `yaml:"request_timeout"`
}

// Position returns the configured initial slider position.
func (c LOIConfig) Position() int {
	if c.InitialPosition == nil {
		return DefaultLOIPosition
	}
	return *c.InitialPosition
}

// Timeout returns the parsed request timeout, falling back to the default.
func (c ServeConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultRequestTimeout)
	}
	return d
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{Version: 1}
	Normalize(&cfg)
	return cfg
}

// Parse decodes a single YAML document with unknown fields rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if err == io.EOF {
			return Config{}, fmt.Errorf("parse config: empty document")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Load reads, parses, normalizes, and validates a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize fills empty fields with defaults.
func Normalize(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.UI == "" {
		cfg.UI = UIAuto
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = DefaultAddr
	}
	if cfg.Serve.RequestTimeout == "" {
		cfg.Serve.RequestTimeout = DefaultRequestTimeout
	}
}
