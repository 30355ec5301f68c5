package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the application-level settings that are not specific to the
// LLM provider (see llm.ConfigFromSecrets for those).
type Config struct {
	Database DatabaseConfig
	Log      LogConfig

	// ReferenceTTL bounds how long methodology steps and the checklist are
	// served from memory before being refetched. Default: 1h.
	ReferenceTTL time.Duration

	// ChecklistName is the name key of the scoring checklist document.
	ChecklistName string

	// Language is the language the owner persona and the evaluator reply in.
	Language string
}

// DatabaseConfig selects the reference/practice-log store.
type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Mode string // "dev" or "prod"
	File string
}

const DefaultChecklistName = "Calgary-Cambridge Consultation Communication Skills List"

// Load builds a Config from the given secrets, falling back to defaults.
func Load(s *Secrets) Config {
	cfg := Config{
		Database: DatabaseConfig{
			Driver: s.GetOr("sqlite", "VETLEARN_DB_DRIVER", "database.driver"),
			DSN:    s.GetOr("", "VETLEARN_DB", "database.dsn"),
		},
		Log: LogConfig{
			Mode: s.GetOr("dev", "VETLEARN_LOG_MODE", "log.mode"),
			File: s.GetOr(defaultLogFile(), "VETLEARN_LOG_FILE", "log.file"),
		},
		ReferenceTTL:  time.Hour,
		ChecklistName: s.GetOr(DefaultChecklistName, "VETLEARN_CHECKLIST", "reference.checklist"),
		Language:      s.GetOr("Thai", "VETLEARN_LANGUAGE", "app.language"),
	}

	if v, ok := s.First("VETLEARN_REFERENCE_TTL", "reference.ttl"); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReferenceTTL = d
		} else if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.ReferenceTTL = time.Duration(secs) * time.Second
		}
	}

	return cfg
}

func defaultLogFile() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "vetlearn.log")
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "vetlearn", "vetlearn.log")
}
