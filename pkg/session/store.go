package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore is the durable single-token store backing a session across
// process restarts.
type TokenStore interface {
	// Save persists the token, replacing any previous one
	Save(token string) error
	// Load returns the stored token, or "" when none is stored
	Load() (string, error)
	// Clear removes the stored token. Clearing an empty store is not an
	// error.
	Clear() error
}

// FileTokenStore keeps the token in a single file, created with 0600
// permissions since the token grants full account access.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a file-backed token store at path
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Save writes the token to the backing file
func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Load reads the stored token. A missing file means no token.
func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Clear removes the token file
func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// MemoryTokenStore is an in-memory TokenStore for tests
type MemoryTokenStore struct {
	token string
}

// NewMemoryTokenStore creates an empty in-memory token store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Save stores the token
func (s *MemoryTokenStore) Save(token string) error {
	s.token = token
	return nil
}

// Load returns the stored token
func (s *MemoryTokenStore) Load() (string, error) {
	return s.token, nil
}

// Clear removes the stored token
func (s *MemoryTokenStore) Clear() error {
	s.token = ""
	return nil
}
