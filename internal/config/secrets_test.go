package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecrets_EnvWinsOverFile(t *testing.T) {
	s := NewSecrets(
		map[string]string{"GEMINI_API_KEY": "from-env"},
		map[string]any{"GEMINI_API_KEY": "from-file"},
	)

	v, ok := s.Get("GEMINI_API_KEY")
	require.True(t, ok)
	assert.Equal(t, "from-env", v)
}

func TestSecrets_FileFallback(t *testing.T) {
	s := NewSecrets(nil, map[string]any{"GEMINI_API_KEY": "from-file"})

	v, ok := s.Get("GEMINI_API_KEY")
	require.True(t, ok)
	assert.Equal(t, "from-file", v)
}

func TestSecrets_Section(t *testing.T) {
	file := map[string]any{
		"database": map[string]any{"dsn": "file:vet.db", "pool": 4},
	}

	s := NewSecrets(nil, file)
	v, ok := s.Section("database", "dsn")
	require.True(t, ok)
	assert.Equal(t, "file:vet.db", v)

	v, ok = s.Section("database", "pool")
	require.True(t, ok)
	assert.Equal(t, "4", v)

	s = NewSecrets(map[string]string{"DATABASE_DSN": "postgres://x"}, file)
	v, ok = s.Section("database", "dsn")
	require.True(t, ok)
	assert.Equal(t, "postgres://x", v)
}

func TestSecrets_AbsentIsNotAnError(t *testing.T) {
	s := NewSecrets(nil, nil)

	_, ok := s.Get("NOPE")
	assert.False(t, ok)
	_, ok = s.Section("mongo", "uri")
	assert.False(t, ok)
	assert.Equal(t, "fallback", s.GetOr("fallback", "NOPE", "mongo.uri"))
}

func TestSecrets_Require(t *testing.T) {
	s := NewSecrets(nil, nil)
	_, err := s.Require("GEMINI_API_KEY", "gemini.api_key")
	require.ErrorIs(t, err, ErrMissingSecret)

	s = NewSecrets(nil, map[string]any{"gemini": map[string]any{"api_key": "k"}})
	v, err := s.Require("GEMINI_API_KEY", "gemini.api_key")
	require.NoError(t, err)
	assert.Equal(t, "k", v)
}

func TestLoadSecrets_MissingFile(t *testing.T) {
	s, err := LoadSecrets(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	_, ok := s.Section("database", "dsn")
	assert.False(t, ok)
}

func TestLoadSecrets_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	content := "GEMINI_API_KEY: abc\ndatabase:\n  driver: postgres\n  dsn: postgres://localhost/vet\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := LoadSecrets(path)
	require.NoError(t, err)
	s.lookupEnv = func(string) (string, bool) { return "", false }

	v, _ := s.Get("GEMINI_API_KEY")
	assert.Equal(t, "abc", v)
	v, _ = s.Section("database", "driver")
	assert.Equal(t, "postgres", v)
	assert.Equal(t, path, s.Path())
}

func TestLoadSecrets_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: [unterminated"), 0o600))

	_, err := LoadSecrets(path)
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("VETLEARN_DOTENV_PROBE=1\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("VETLEARN_DOTENV_PROBE") })

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "1", os.Getenv("VETLEARN_DOTENV_PROBE"))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := Load(NewSecrets(nil, nil))

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.ReferenceTTL)
	assert.Equal(t, DefaultChecklistName, cfg.ChecklistName)
	assert.Equal(t, "Thai", cfg.Language)
}

func TestLoadConfig_Overrides(t *testing.T) {
	s := NewSecrets(map[string]string{
		"VETLEARN_REFERENCE_TTL": "90s",
		"VETLEARN_LANGUAGE":      "English",
	}, map[string]any{
		"database": map[string]any{"driver": "postgres", "dsn": "postgres://db"},
	})

	cfg := Load(s)
	assert.Equal(t, 90*time.Second, cfg.ReferenceTTL)
	assert.Equal(t, "English", cfg.Language)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://db", cfg.Database.DSN)
}
