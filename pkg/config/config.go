// Package config loads YAML configuration files. Values may reference
// environment variables with $VAR or ${VAR} syntax; references are
// expanded before the document is decoded.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by config types that check themselves after
// decoding. Load runs it automatically.
type Validator interface {
	Validate() error
}

// Load decodes the YAML file at path into target, expanding environment
// references first. A target implementing Validator is validated before
// Load returns.
func Load[T any](path string, target *T) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return decode(path, []byte(os.ExpandEnv(string(raw))), target)
}

// LoadIfPresent is Load for optional config files: a missing file leaves
// target untouched and reports found=false. Any other failure, including
// an unreadable or invalid file, is still an error.
func LoadIfPresent[T any](path string, target *T) (found bool, err error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := Load(path, target); err != nil {
		return true, err
	}
	return true, nil
}

func decode[T any](path string, doc []byte, target *T) error {
	dec := yaml.NewDecoder(bytes.NewReader(doc))
	// An empty file is a valid "all defaults" config.
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config: validate %s: %w", path, err)
		}
	}
	return nil
}
