package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"

	// PostgreSQL driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store owns the connection pool and provides access to repositories.
// Every repository operation checks out its own connection and returns it
// before the call completes.
type Store struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
}

// Open connects to the database at dsn using driver ("sqlite" or
// "postgres"). SQLite connections get the recommended pragmas. Missing
// tables are created.
func Open(driver, dsn string) (*Store, error) {
	var (
		sqlDriver string
		dia       string
	)
	switch driver {
	case "", DriverSQLite:
		sqlDriver, dia = "sqlite", dialect.SQLite
	case DriverPostgres, "pgx":
		sqlDriver, dia = "pgx", dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dia == dialect.SQLite {
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	s := &Store{db: db, dialect: dia}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReferenceRepo returns the reference data repository.
func (s *Store) ReferenceRepo() ReferenceRepo {
	return &referenceRepo{s: s}
}

// PracticeLogRepo returns the practice log sink.
func (s *Store) PracticeLogRepo() PracticeLogRepo {
	return &practiceLogRepo{s: s}
}

// PracticeHistory returns the read side of the practice log.
func (s *Store) PracticeHistory() PracticeHistory {
	return &practiceLogRepo{s: s}
}

// EventRepo returns the LLM event repository.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{s: s}
}

// withConn runs fn on a dedicated connection that is released on every
// exit path.
func (s *Store) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// withTx runs fn inside a transaction on a dedicated connection.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	})
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the SQLite database file path in priority order:
// 1. VETLEARN_DB environment variable
// 2. $XDG_DATA_HOME/vetlearn/vetlearn.db
// 3. ~/.local/share/vetlearn/vetlearn.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("VETLEARN_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "vetlearn", "vetlearn.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
