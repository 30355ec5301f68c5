package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingSecret is returned by Require when a key resolves to nothing.
var ErrMissingSecret = errors.New("missing required secret")

// Secrets resolves configuration values. Lookup order:
//  1. process environment (including anything loaded from .env)
//  2. the structured secrets file, optionally organized in sections
type Secrets struct {
	lookupEnv func(string) (string, bool)
	file      map[string]any
	path      string
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadSecrets reads a YAML secrets file. A missing file yields an empty
// store rather than an error so that env-only setups keep working.
func LoadSecrets(path string) (*Secrets, error) {
	s := &Secrets{lookupEnv: os.LookupEnv, file: map[string]any{}, path: path}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read secrets file: %w", err)
	}

	if err := yaml.Unmarshal(data, &s.file); err != nil {
		return nil, fmt.Errorf("parse secrets file %s: %w", path, err)
	}
	if s.file == nil {
		s.file = map[string]any{}
	}
	return s, nil
}

// NewSecrets builds a Secrets from explicit sources. Used by tests and by
// callers that already hold a parsed document.
func NewSecrets(env map[string]string, file map[string]any) *Secrets {
	if file == nil {
		file = map[string]any{}
	}
	return &Secrets{
		lookupEnv: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
		file: file,
	}
}

// DefaultSecretsPath returns ./secrets.yaml when present, otherwise
// $XDG_CONFIG_HOME/vetlearn/secrets.yaml.
func DefaultSecretsPath() string {
	if _, err := os.Stat("secrets.yaml"); err == nil {
		return "secrets.yaml"
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "vetlearn", "secrets.yaml")
}

// Path reports the secrets file this store was loaded from.
func (s *Secrets) Path() string {
	return s.path
}

// Get resolves a top-level key. The environment is checked with the key as
// given and upper-cased.
func (s *Secrets) Get(key string) (string, bool) {
	if v, ok := s.env(key); ok {
		return v, true
	}
	return scalar(s.file[key])
}

// Section resolves key inside a named section, e.g. ("database", "dsn").
// The environment is consulted first as SECTION_KEY (DATABASE_DSN).
func (s *Secrets) Section(section, key string) (string, bool) {
	if v, ok := s.env(section + "_" + key); ok {
		return v, true
	}
	sec, ok := s.file[section].(map[string]any)
	if !ok {
		return "", false
	}
	return scalar(sec[key])
}

// First returns the first key that resolves. Keys of the form
// "section.key" are looked up with Section.
func (s *Secrets) First(keys ...string) (string, bool) {
	for _, k := range keys {
		var v string
		var ok bool
		if section, key, found := strings.Cut(k, "."); found {
			v, ok = s.Section(section, key)
		} else {
			v, ok = s.Get(k)
		}
		if ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// GetOr returns the resolved value of the first matching key or def.
func (s *Secrets) GetOr(def string, keys ...string) string {
	if v, ok := s.First(keys...); ok {
		return v
	}
	return def
}

// Require resolves the first matching key or returns ErrMissingSecret.
func (s *Secrets) Require(keys ...string) (string, error) {
	if v, ok := s.First(keys...); ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: set one of %s", ErrMissingSecret, strings.Join(keys, ", "))
}

func (s *Secrets) env(key string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	for _, k := range []string{key, strings.ToUpper(key)} {
		if v, ok := s.lookupEnv(k); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}
