package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Session is the persisted authentication state of the dashboard client.
type Session struct {
	Token                 string    `json:"token"`
	Username              string    `json:"username"`
	Email                 string    `json:"email"`
	IsAdmin               bool      `json:"isAdmin"`
	RequirePasswordChange bool      `json:"requirePasswordChange"`
	ExpiresAt             time.Time `json:"expiresAt"`
}

// SessionStore persists a Session as a JSON file so the dashboard survives
// restarts without re-authenticating.
type SessionStore struct {
	path string
}

// NewSessionStore creates a store backed by the given file path. An empty
// path defaults to ~/.fleetwatch/session.json.
func NewSessionStore(path string) (*SessionStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".fleetwatch", "session.json")
	}
	return &SessionStore{path: path}, nil
}

// Hydrate loads the stored session. A missing file means no session. A
// corrupt file is cleared so the client starts unauthenticated instead of
// failing on every launch.
func (s *SessionStore) Hydrate() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil || session.Token == "" {
		logrus.Warnf("Stored session is unusable, clearing: %v", err)
		if err := s.Clear(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &session, nil
}

// Save writes the session to disk, readable only by the current user.
func (s *SessionStore) Save(session *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is not an
// error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ClearPasswordChangeRequirement flips the stored flag after a successful
// password change, without another server round trip.
func (s *SessionStore) ClearPasswordChangeRequirement() error {
	session, err := s.Hydrate()
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	session.RequirePasswordChange = false
	return s.Save(session)
}
