// Package config provides configuration loading, validation and hot reload.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/unmock/unmock-go"
	"github.com/unmock/unmock-go/fingerprint"
	"github.com/unmock/unmock-go/schema"
)

// Config is the root configuration structure.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Fingerprint FingerprintConfig `yaml:"fingerprint"`
	Snapshot    SnapshotConfig    `yaml:"snapshot"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Services    []ServiceConfig   `yaml:"services"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// FingerprintConfig configures request fingerprints.
type FingerprintConfig struct {
	Version string            `yaml:"version"`
	Ignore  fingerprint.Rules `yaml:"ignore"`
}

// SnapshotConfig configures the snapshot recorder.
type SnapshotConfig struct {
	TestName string `yaml:"test_name"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ServiceConfig declares a mocked service and its endpoints.
type ServiceConfig struct {
	Name      string           `yaml:"name"`
	BaseURL   string           `yaml:"base_url"`
	Endpoints []EndpointConfig `yaml:"endpoints"`
}

// EndpointConfig declares one reply. Response is a schema value document;
// mappings carrying the "$dynamic" key are schema nodes, everything else is
// literal data.
type EndpointConfig struct {
	Method   string `yaml:"method"`
	Path     string `yaml:"path"`
	Status   int    `yaml:"status"`
	Response any    `yaml:"response"`
}

// envOverrides maps UNMOCK_* environment variables. UNMOCK_IGNORE holds
// ignore tokens separated by ';' and replaces the configured rules.
type envOverrides struct {
	LogLevel           string   `env:"UNMOCK_LOG_LEVEL"`
	LogFormat          string   `env:"UNMOCK_LOG_FORMAT"`
	FingerprintVersion string   `env:"UNMOCK_FINGERPRINT_VERSION"`
	Ignore             []string `env:"UNMOCK_IGNORE"`
	SnapshotTestName   string   `env:"UNMOCK_SNAPSHOT_TEST_NAME"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds configuration from YAML bytes, applying environment
// expansion, UNMOCK_* overrides, defaults and validation.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finish(&cfg)
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	UNMOCK_LOG_LEVEL            - Log level: debug, info, warn, error (default: info)
//	UNMOCK_LOG_FORMAT           - Log format: json or console (default: json)
//	UNMOCK_FINGERPRINT_VERSION  - Fingerprint algorithm (default: v0)
//	UNMOCK_IGNORE               - Ignore tokens, e.g. "user_id;headers=^X-Request-Id$"
//	UNMOCK_SNAPSHOT_TEST_NAME   - Default test name for snapshots
func LoadFromEnv() (*Config, error) {
	return finish(&Config{})
}

// LoadWithFallback loads path when it exists and falls back to the environment.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

func finish(cfg *Config) (*Config, error) {
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	setDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies UNMOCK_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return err
	}

	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Logging.Format = env.LogFormat
	}
	if env.FingerprintVersion != "" {
		cfg.Fingerprint.Version = env.FingerprintVersion
	}
	if env.SnapshotTestName != "" {
		cfg.Snapshot.TestName = env.SnapshotTestName
	}
	if len(env.Ignore) > 0 {
		tokens := make([]string, 0, len(env.Ignore))
		for _, tok := range env.Ignore {
			if tok = strings.TrimSpace(tok); tok != "" {
				tokens = append(tokens, tok)
			}
		}
		rules, err := fingerprint.ParseTokens(tokens)
		if err != nil {
			return fmt.Errorf("UNMOCK_IGNORE: %w", err)
		}
		cfg.Fingerprint.Ignore = rules
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Fingerprint.Version == "" {
		cfg.Fingerprint.Version = fingerprint.Version
	}
	for i := range cfg.Services {
		for j := range cfg.Services[i].Endpoints {
			ep := &cfg.Services[i].Endpoints[j]
			if ep.Method == "" {
				ep.Method = string(unmock.MethodGet)
			}
			ep.Path = unmock.NormalizeEndpoint(ep.Path)
		}
	}
}

func validate(cfg *Config) error {
	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	ok, err := fingerprint.IsSupportedVersion(cfg.Fingerprint.Version)
	if err != nil {
		return fmt.Errorf("fingerprint.version: %w", err)
	}
	if !ok {
		return fmt.Errorf("fingerprint.version: unsupported %q (supported %s)", cfg.Fingerprint.Version, strings.Join(fingerprint.SupportedVersions(), ", "))
	}
	if _, err := fingerprint.Compile(cfg.Fingerprint.Ignore...); err != nil {
		return fmt.Errorf("fingerprint.ignore: %w", err)
	}

	for i, svc := range cfg.Services {
		if strings.TrimSpace(svc.BaseURL) == "" {
			return fmt.Errorf("services[%d].base_url is required", i)
		}
		for j, ep := range svc.Endpoints {
			if _, err := unmock.ParseMethod(ep.Method); err != nil {
				return fmt.Errorf("services[%d].endpoints[%d].method: %w", i, j, err)
			}
			if ep.Status != 0 {
				if err := unmock.CheckStatusCode(ep.Status); err != nil {
					return fmt.Errorf("services[%d].endpoints[%d].status: %w", i, j, err)
				}
			}
			if _, err := schema.Decode(ep.Response); err != nil {
				return fmt.Errorf("services[%d].endpoints[%d].response: %w", i, j, err)
			}
		}
	}
	return nil
}

// Hasher compiles the configured ignore rules.
func (c *Config) Hasher() (*fingerprint.Hasher, error) {
	return fingerprint.Compile(c.Fingerprint.Ignore...)
}
