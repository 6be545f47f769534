package credstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the credential in dir/state.db.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite state database at dir/state.db.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS credentials (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		username TEXT NOT NULL,
		token    TEXT NOT NULL,
		saved_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating credentials table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save replaces the stored credential.
func (s *SQLiteStore) Save(c Credential) error {
	if err := validate(c); err != nil {
		return err
	}
	if c.SavedAt.IsZero() {
		c.SavedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO credentials (id, username, token, saved_at) VALUES (1, ?, ?, ?)`,
		c.Username, c.Token, c.SavedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// Load returns the stored credential or ErrNotFound.
func (s *SQLiteStore) Load() (Credential, error) {
	var c Credential
	err := s.db.QueryRow(`SELECT username, token, saved_at FROM credentials WHERE id = 1`).
		Scan(&c.Username, &c.Token, &c.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, ErrNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("loading credential: %w", err)
	}
	return c, nil
}

// Delete forgets the credential. Deleting nothing is not an error.
func (s *SQLiteStore) Delete() error {
	if _, err := s.db.Exec(`DELETE FROM credentials`); err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}

// Close closes the state database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
