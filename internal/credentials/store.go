package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/autopost/autopost/internal/platform"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no credential is stored for a platform.
var ErrNotFound = errors.New("credential not found")

// Store persists per-platform bearer tokens and the Substack session, the
// durable state the connection registry and API client read from.
type Store struct {
	db *sql.DB
}

// Session is the stored Substack login session.
type Session struct {
	ID     string
	Email  string
	Name   string
	Status platform.SubstackStatus
}

// NewStore opens (and if needed creates) the credential database.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &Store{db: sqlDB}
	if err := store.migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return store, nil
}

// migration versions are ordered; each runs at most once.
var migrations = []struct {
	version string
	sql     string
}{
	{
		version: "001_credentials",
		sql: `CREATE TABLE IF NOT EXISTS credentials (
			platform   TEXT PRIMARY KEY,
			token      TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		version: "002_substack_session",
		sql: `CREATE TABLE IF NOT EXISTS substack_session (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			session_id TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			name       TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

func (s *Store) migrate(ctx context.Context) error {
	slog.Debug("running credential store migrations")

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", m.version, err)
		}
		if exists > 0 {
			continue
		}

		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO schema_migrations (version) VALUES (?)", m.version,
		); err != nil {
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
		slog.Debug("applied migration", "version", m.version)
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetToken stores the bearer token for a platform, replacing any prior one.
func (s *Store) SetToken(ctx context.Context, p platform.Platform, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (platform, token, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(platform) DO UPDATE SET token = excluded.token, updated_at = CURRENT_TIMESTAMP
	`, string(p), token)
	if err != nil {
		return fmt.Errorf("store token for %s: %w", p, err)
	}
	return nil
}

// Token returns the stored bearer token for a platform. A missing token is
/// not an error: it returns ("", nil) so callers can issue unauthenticated
// requests and let the backend reject them.
func (s *Store) Token(ctx context.Context, p platform.Platform) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		"SELECT token FROM credentials WHERE platform = ?", string(p),
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token for %s: %w", p, err)
	}
	return token, nil
}

// DeleteToken removes the stored bearer token for a platform.
func (s *Store) DeleteToken(ctx context.Context, p platform.Platform) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM credentials WHERE platform = ?", string(p))
	if err != nil {
		return fmt.Errorf("delete token for %s: %w", p, err)
	}
	return nil
}

// SetSession stores the Substack session, replacing any prior one.
func (s *Store) SetSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO substack_session (id, session_id, email, name, status, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			email      = excluded.email,
			name       = excluded.name,
			status     = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, sess.ID, sess.Email, sess.Name, string(sess.Status))
	if err != nil {
		return fmt.Errorf("store substack session: %w", err)
	}
	return nil
}

// Session returns the stored Substack session, or ErrNotFound.
func (s *Store) Session(ctx context.Context) (*Session, error) {
	var sess Session
	var status string
	err := s.db.QueryRowContext(ctx,
		"SELECT session_id, email, name, status FROM substack_session WHERE id = 1",
	).Scan(&sess.ID, &sess.Email, &sess.Name, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load substack session: %w", err)
	}
	sess.Status = platform.SubstackStatus(status)
	return &sess, nil
}

// SessionID returns the stored Substack session identifier, or "" when no
// session has been established.
func (s *Store) SessionID(ctx context.Context) (string, error) {
	sess, err := s.Session(ctx)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

// ClearSession removes the stored Substack session.
func (s *Store) ClearSession(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM substack_session WHERE id = 1")
	if err != nil {
		return fmt.Errorf("clear substack session: %w", err)
	}
	return nil
}
