// Package auth stores the NewsAPI key used for source cross-checks in
// the OS keychain, with a file fallback for environments without one.
package auth

import (
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
)

const (
	keyFileName    = "newsapi_key"
	keyringService = "nctl"
	keyringUser    = "newsapi_key"
	fileMode       = 0600
)

// ErrNoKey is returned when no key has been stored yet.
var ErrNoKey = errors.New("no NewsAPI key stored, run: nctl auth set")

// Store reads and writes the NewsAPI key. The zero value is not
// usable; construct with NewStore.
type Store struct {
	homeDir string
}

// NewStore creates a key store that uses homeDir for the file
// fallback.
func NewStore(homeDir string) *Store {
	return &Store{homeDir: homeDir}
}

// Set saves the key to the OS keychain, falling back to a file in the
// app home directory if the keychain is unavailable.
func (s *Store) Set(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("key is required")
	}

	if err := keyring.Set(keyringService, keyringUser, key); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return s.setFile(key)
	}

	// drop a stale fallback file so only one copy exists
	os.Remove(s.filePath())
	return nil
}

// Get returns the stored key, preferring the keychain. A key found in
// the fallback file migrates to the keychain when possible.
func (s *Store) Get() (string, error) {
	key, err := keyring.Get(keyringService, keyringUser)
	if err == nil && key != "" {
		return key, nil
	}

	key, err = s.getFile()
	if err != nil {
		return "", ErrNoKey
	}

	if migrateErr := keyring.Set(keyringService, keyringUser, key); migrateErr == nil {
		slog.Debug("migrated key from file to OS keychain")
		os.Remove(s.filePath())
	}
	return key, nil
}

// Delete removes the key from both the keychain and the fallback file.
func (s *Store) Delete() error {
	kerr := keyring.Delete(keyringService, keyringUser)
	ferr := os.Remove(s.filePath())
	if kerr != nil && ferr != nil {
		return ErrNoKey
	}
	return nil
}

func (s *Store) filePath() string {
	return path.Join(s.homeDir, keyFileName)
}

func (s *Store) setFile(key string) error {
	if err := os.WriteFile(s.filePath(), []byte(key), fileMode); err != nil {
		return errors.Wrapf(err, "failed to write key file: %s", s.filePath())
	}
	return nil
}

func (s *Store) getFile() (string, error) {
	b, err := os.ReadFile(s.filePath())
	if err != nil {
		return "", err
	}
	key := strings.TrimSpace(string(b))
	if key == "" {
		return "", errors.New("empty key file")
	}
	return key, nil
}
