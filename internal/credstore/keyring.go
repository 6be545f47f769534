package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "liftlog"
	keyringUser    = "session"
)

// KeyringStore keeps the credential in the OS keychain.
type KeyringStore struct{}

func NewKeyring() *KeyringStore {
	return &KeyringStore{}
}

func (KeyringStore) Save(c Credential) error {
	if err := validate(c); err != nil {
		return err
	}
	if c.SavedAt.IsZero() {
		c.SavedAt = time.Now()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := keyring.Set(keyringService, keyringUser, string(data)); err != nil {
		return fmt.Errorf("storing credential in keyring: %w", err)
	}
	return nil
}

func (KeyringStore) Load() (Credential, error) {
	raw, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return Credential{}, ErrNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("reading credential from keyring: %w", err)
	}
	var c Credential
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Credential{}, fmt.Errorf("decoding keyring credential: %w", err)
	}
	return c, nil
}

func (KeyringStore) Delete() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting credential from keyring: %w", err)
	}
	return nil
}

func (KeyringStore) Close() error { return nil }
