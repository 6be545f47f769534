package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/liftlog/liftlog/internal/models"
)

// User is an account of the reference backend.
type User struct {
	ID           models.ID
	Username     string
	PasswordHash []byte
}

// CreateUser inserts a user. Returns ErrConflict when the name is taken.
func (db *DB) CreateUser(ctx context.Context, username string, passwordHash []byte) (models.ID, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		username, passwordHash,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", mapErr(err))
	}
	return models.ID(id), nil
}

// UserByName looks a user up for login.
func (db *DB) UserByName(ctx context.Context, username string) (User, error) {
	u := User{Username: username}
	var id int64
	err := db.Pool.QueryRow(ctx,
		`SELECT id, password_hash FROM users WHERE username = $1`, username,
	).Scan(&id, &u.PasswordHash)
	if err != nil {
		return User{}, mapErr(err)
	}
	u.ID = models.ID(id)
	return u, nil
}

// CreateToken stores a session token for userID.
func (db *DB) CreateToken(ctx context.Context, token uuid.UUID, userID models.ID, expires time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO auth_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, int64(userID), expires,
	)
	if err != nil {
		return fmt.Errorf("creating token: %w", err)
	}
	return nil
}

// UserForToken resolves an unexpired token to its user.
func (db *DB) UserForToken(ctx context.Context, token uuid.UUID, now time.Time) (models.ID, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id FROM auth_tokens WHERE token = $1 AND expires_at > $2`,
		token, now,
	).Scan(&id)
	if err != nil {
		return 0, mapErr(err)
	}
	return models.ID(id), nil
}

// DeleteExpiredTokens removes tokens past their expiry and returns how many.
func (db *DB) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM auth_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
