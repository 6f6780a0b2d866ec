// Copyright 2025 Certen Protocol
//
// Configuration loader. Reads a YAML file with ${VAR} / ${VAR:-default}
// environment substitution, the same scheme as the teacher's anchor
// configuration loader. Validates the storage tagged union (§6) at load
// time so a deployment never discovers a bad config mid-append.

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// StorageKind selects a Record Store backend. The tagged union is closed:
// exactly one of the three variants below.
type StorageKind string

const (
	StorageNone     StorageKind = "none"
	StorageSQLite   StorageKind = "sqlite"
	StoragePostgres StorageKind = "postgres"
)

// StorageConfig is the tagged-union storage variant from §6 of the
// interop surface: `{none|sqlite,path|postgres,connectionString}`.
type StorageConfig struct {
	Kind             StorageKind `yaml:"kind"`
	Path             string      `yaml:"path,omitempty"`
	ConnectionString string      `yaml:"connectionString,omitempty"`
}

// Validate checks that the fields present match Kind.
func (s StorageConfig) Validate() error {
	switch s.Kind {
	case StorageNone:
		return nil
	case StorageSQLite:
		if s.Path == "" {
			return fmt.Errorf("config: storage.path is required when storage.kind is %q", StorageSQLite)
		}
		return nil
	case StoragePostgres:
		if s.ConnectionString == "" {
			return fmt.Errorf("config: storage.connectionString is required when storage.kind is %q", StoragePostgres)
		}
		return nil
	default:
		return fmt.Errorf("config: unknown storage.kind %q, want one of none|sqlite|postgres", s.Kind)
	}
}

// Config is the top-level engine configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Load reads and parses a YAML config file at path, expanding ${VAR} and
// ${VAR:-default} references against the process environment first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := substituteEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Kind == "" {
		c.Storage.Kind = StorageNone
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = "0.0.0.0:9090"
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// substituteEnvVars replaces ${VAR} and ${VAR:-default} with process
// environment values, falling back to the default (or empty) when unset.
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 4 {
			defaultValue = groups[3]
		}
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return defaultValue
	})
}
