// Package session abstracts the key-value store the controllers read the
// logged-in user from. The web layer adapts its cookie jar to this contract;
// tests inject the in-memory implementation directly.
package session

import (
	"encoding/json"
	"fmt"

	"billed/config"
)

// Storage is the consumed session-store contract.
type Storage interface {
	// GetItem returns the stored value for key, with ok reporting presence.
	GetItem(key string) (value string, ok bool)
	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string)
}

// User is the session user record stored as JSON under the "user" key.
type User struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

// CurrentUser reads and decodes the user record from the session store.
func CurrentUser(s Storage) (*User, error) {
	raw, ok := s.GetItem(config.SessionUserKey)
	if !ok {
		return nil, fmt.Errorf("no user in session")
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("failed to decode session user: %w", err)
	}
	if u.Email == "" {
		return nil, fmt.Errorf("session user has no email")
	}
	return &u, nil
}

// StoreUser encodes and stores the user record in the session store.
func StoreUser(s Storage, u User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}
	s.SetItem(config.SessionUserKey, string(raw))
	return nil
}
