// Package session persists authenticated sessions in SQLite.
//
// The session is an explicit object with save/load/clear operations at
// defined lifecycle points: saved on login success, loaded per request by
// the auth middleware, cleared at logout. SQLite keeps sessions across
// process restarts so a redeploy does not log everyone out.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
)

// Store is a SQLite-backed implementation of port.SessionStore.
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the session database at dbPath
// and applies migrations.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists a session, replacing any previous row with the same id.
func (s *Store) Save(ctx context.Context, sess *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions
			(id, user_id, username, email, upstream_token, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.Username, sess.Email,
		sess.UpstreamToken, sess.CreatedAt.UTC(), sess.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the session with the given id, or (nil, nil) when it does
// not exist or has expired. Expired rows are deleted on sight.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, username, email, upstream_token, created_at, expires_at
		FROM sessions WHERE id = ?`, sessionID)

	var sess domain.Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.Username, &sess.Email,
		&sess.UpstreamToken, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if sess.ExpiresAt.Before(time.Now()) {
		_ = s.Delete(ctx, sessionID)
		return nil, nil
	}
	return &sess, nil
}

// Delete removes a single session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteByUser removes every session belonging to a user, i.e. logout
// from all devices.
func (s *Store) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete sessions for user: %w", err)
	}
	return nil
}

// PurgeExpired removes all expired sessions and reports how many went.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
