// Package credstore keeps the logged-in user's token between runs.
package credstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/liftlog/liftlog/internal/config"
)

// ErrNotFound is returned by Load when nobody is logged in.
var ErrNotFound = errors.New("no stored credential")

// Credential is a backend session.
type Credential struct {
	Username string    `json:"username"`
	Token    string    `json:"token"`
	SavedAt  time.Time `json:"saved_at"`
}

// Store persists a single Credential.
type Store interface {
	Save(Credential) error
	Load() (Credential, error)
	Delete() error
	Close() error
}

// Open returns the store selected by cfg.TokenStore.
func Open(cfg config.AuthConfig) (Store, error) {
	switch cfg.TokenStore {
	case "keyring":
		return NewKeyring(), nil
	case "sqlite", "":
		s, err := OpenSQLite(cfg.StateDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
	}
}

func validate(c Credential) error {
	if c.Token == "" {
		return errors.New("credential has no token")
	}
	return nil
}
