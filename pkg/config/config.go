// Package config loads YAML configuration files. Values may reference
// environment variables with $NAME or ${NAME} syntax; they are expanded
// before parsing, so secrets stay out of the file itself.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator lets a configuration type check itself after loading.
type Validator interface {
	Validate() error
}

// Load reads path, expands environment references, and unmarshals the
// result into target. When target implements Validator, a failed
// Validate fails the load.
func Load[T any](path string, target *T) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(raw))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config: validate %s: %w", path, err)
		}
	}
	return nil
}

// LoadWithDefaults loads path, falling back to defaultPath when path
// does not exist. An empty defaultPath makes the missing file an error.
func LoadWithDefaults[T any](path, defaultPath string, target *T) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if defaultPath != "" {
			return Load(defaultPath, target)
		}
		return fmt.Errorf("config: file not found: %s", path)
	}
	return Load(path, target)
}
