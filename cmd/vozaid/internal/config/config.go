// Package config loads the vozaid service configuration.
//
// Configuration lives in a single YAML file in the OS config directory
// (e.g. ~/.config/vozaid/config.yaml on Linux), overridable with an
// explicit path. A missing file is not an error: every field has a
// usable default, and command-line flags override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Default values for unset fields.
const (
	DefaultListen     = ":8000"
	DefaultDataDir    = "data"
	DefaultSnapshot   = "file"
	DefaultPendingMax = 100
	DefaultSampleRate = 16000
)

// Config is the top-level service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen,omitempty"`

	// DataDir is the directory for local persistence (snapshot file or
	// badger database).
	DataDir string `yaml:"data_dir,omitempty"`

	// Snapshot selects the exemplar persistence backend:
	// "file" (default), "badger", or "s3".
	Snapshot string `yaml:"snapshot,omitempty"`

	// PendingMax bounds the pending-embedding cache.
	PendingMax int `yaml:"pending_max,omitempty"`

	// Model configures the upstream speech-intent endpoint.
	Model ModelConfig `yaml:"model,omitempty"`

	// S3 configures the object store for the "s3" snapshot backend.
	S3 S3Config `yaml:"s3,omitempty"`
}

// ModelConfig is the upstream model endpoint configuration.
// An empty endpoint selects the built-in deterministic fake engine,
// which is enough for local demos and seeding.
type ModelConfig struct {
	Endpoint   string `yaml:"endpoint,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	SampleRate int    `yaml:"sample_rate,omitempty"`
}

// S3Config is the object-store configuration for snapshot persistence.
type S3Config struct {
	Bucket   string `yaml:"bucket,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
	Region   string `yaml:"region,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"` // for S3-compatible stores
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate config dir: %w", err)
	}
	return filepath.Join(base, "vozaid", "config.yaml"), nil
}

// Load reads the configuration from path, or from the default location
// when path is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills unset fields.
func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.Snapshot == "" {
		c.Snapshot = DefaultSnapshot
	}
	if c.PendingMax <= 0 {
		c.PendingMax = DefaultPendingMax
	}
	if c.Model.SampleRate <= 0 {
		c.Model.SampleRate = DefaultSampleRate
	}
}
