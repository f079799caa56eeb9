// Package json persists the session token as a small JSON document.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/enciclo/control"
)

// Interface compliance check.
var _ control.TokenStore = (*TokenFile)(nil)

// envelope is the v1 wire format for a persisted token.
type envelope struct {
	Version int       `json:"version"`
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	SavedAt time.Time `json:"saved_at"`
}

// MarshalToken serializes a token to JSON in v1 envelope format.
func MarshalToken(token string, savedAt time.Time) ([]byte, error) {
	return json.MarshalIndent(envelope{
		Version: 1,
		Name:    control.TokenName,
		Value:   token,
		SavedAt: savedAt.UTC(),
	}, "", "  ")
}

// UnmarshalToken deserializes a token from JSON in v1 envelope format.
func UnmarshalToken(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return "", fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	if env.Name != control.TokenName {
		return "", fmt.Errorf("unexpected token name: %q", env.Name)
	}
	return env.Value, nil
}

// TokenFile is a [control.TokenStore] backed by a JSON file.
type TokenFile struct {
	Path string
	// Now is used for the saved_at stamp. Defaults to time.Now.
	Now func() time.Time
}

// NewTokenFile returns a TokenFile stored at path.
func NewTokenFile(path string) *TokenFile {
	return &TokenFile{Path: path}
}

// Load returns the stored token, or "" when the file does not exist.
func (f *TokenFile) Load() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return UnmarshalToken(data)
}

// Save writes token atomically, creating parent directories as needed.
func (f *TokenFile) Save(token string) error {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	data, err := MarshalToken(token, now())
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Clear removes the token file. A missing file is not an error.
func (f *TokenFile) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
