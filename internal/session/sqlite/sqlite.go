// Package sqlite provides a SQLite-backed implementation of the session.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitsync/internal/session"
)

// Ensure SQLiteStore implements session.Store
var _ session.Store = (*SQLiteStore)(nil)

// SQLiteStore persists the token pair in a single-row table so a session
// survives restarts of the CLI.
type SQLiteStore struct {
	db     *sql.DB
	sealer *sealer
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
// A non-empty passphrase seals tokens at rest.
func New(ctx context.Context, dbPath, passphrase string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; the table has a single row.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	sealer, err := newSealer(ctx, db, passphrase)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, sealer: sealer}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Tokens loads the stored pair. An empty table yields an empty pair.
func (s *SQLiteStore) Tokens(ctx context.Context) (session.Tokens, error) {
	var access, refresh []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT access_token, refresh_token FROM session WHERE id = 1",
	).Scan(&access, &refresh)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Tokens{}, nil
	}
	if err != nil {
		return session.Tokens{}, fmt.Errorf("failed to get session: %w", err)
	}

	var t session.Tokens
	if t.Access, err = s.sealer.open(access); err != nil {
		return session.Tokens{}, fmt.Errorf("failed to open access token: %w", err)
	}
	if t.Refresh, err = s.sealer.open(refresh); err != nil {
		return session.Tokens{}, fmt.Errorf("failed to open refresh token: %w", err)
	}
	return t, nil
}

// SetTokens replaces both tokens.
func (s *SQLiteStore) SetTokens(ctx context.Context, t session.Tokens) error {
	access, err := s.sealer.seal(t.Access)
	if err != nil {
		return err
	}
	refresh, err := s.sealer.seal(t.Refresh)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (id, access_token, refresh_token, updated_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET access_token = excluded.access_token,
		     refresh_token = excluded.refresh_token, updated_at = excluded.updated_at`,
		access, refresh, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SetAccessToken replaces the access token and keeps the refresh token.
func (s *SQLiteStore) SetAccessToken(ctx context.Context, access string) error {
	sealed, err := s.sealer.seal(access)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (id, access_token, refresh_token, updated_at) VALUES (1, ?, NULL, ?)
		 ON CONFLICT(id) DO UPDATE SET access_token = excluded.access_token, updated_at = excluded.updated_at`,
		sealed, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	return nil
}

// Clear removes both tokens.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
