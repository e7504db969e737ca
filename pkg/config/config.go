// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// ExpandEnv replaces $VAR and ${VAR} like os.ExpandEnv, and additionally
// supports ${VAR:-default}, which yields default when VAR is unset or empty.
func ExpandEnv(s string) string {
	return os.Expand(s, func(name string) string {
		key, def, hasDefault := strings.Cut(name, ":-")
		if v := os.Getenv(key); v != "" || !hasDefault {
			return v
		}
		return def
	})
}
