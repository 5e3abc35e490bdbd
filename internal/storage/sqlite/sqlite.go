package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tvbridge/internal/storage"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements storage.CredentialStore using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store instance
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate creates the database schema
func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS credentials (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			client_id TEXT NOT NULL DEFAULT '',
			client_secret TEXT NOT NULL DEFAULT '',
			expires_at DATETIME,
			updated_at DATETIME NOT NULL
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// GetCredentials returns the stored credentials, or nil when none exist
func (s *SQLiteStore) GetCredentials(ctx context.Context) (*storage.Credentials, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, client_id, client_secret, expires_at, updated_at
		FROM credentials WHERE id = 1
	`)

	var creds storage.Credentials
	var expiresAt sql.NullTime
	err := row.Scan(
		&creds.AccessToken,
		&creds.RefreshToken,
		&creds.ClientID,
		&creds.ClientSecret,
		&expiresAt,
		&creds.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		creds.ExpiresAt = &t
	}
	return &creds, nil
}

// SaveCredentials replaces the stored credentials
func (s *SQLiteStore) SaveCredentials(ctx context.Context, creds *storage.Credentials) error {
	var expiresAt any
	if creds.ExpiresAt != nil {
		expiresAt = creds.ExpiresAt.UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, access_token, refresh_token, client_id, client_secret, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			client_id = excluded.client_id,
			client_secret = excluded.client_secret,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`,
		creds.AccessToken,
		creds.RefreshToken,
		creds.ClientID,
		creds.ClientSecret,
		expiresAt,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
