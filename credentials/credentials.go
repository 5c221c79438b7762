package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"quranreel/logger"
	"quranreel/store"
)

// ErrNotFound is returned for an unknown credentials key.
var ErrNotFound = errors.New("credentials not found")

// Store holds archive credential sets keyed by a random hex key.
type Store struct {
	db *store.DB
}

// OpenDB opens the Pebble DB for credentials at the specified path.
func OpenDB(dbPath string) (*Store, error) {
	db, err := store.Open(dbPath)
	if err != nil {
		logger.Errorf("Failed to open credentials DB: %v", err)
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the DB.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the credentials stored under key.
func (s *Store) Get(key string) (map[string]string, error) {
	creds := make(map[string]string)
	err := s.db.GetJSON(key, &creds)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return creds, nil
}

// Put stores the credentials map under the given key.
func (s *Store) Put(key string, creds map[string]string) error {
	return s.db.PutJSON(key, creds)
}

// Register stores creds under a freshly generated key and returns it.
func (s *Store) Register(creds map[string]string) (string, error) {
	key, err := GenerateKey(16)
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	if err := s.Put(key, creds); err != nil {
		return "", err
	}
	return key, nil
}

// Delete deletes the credentials for the given key.
func (s *Store) Delete(key string) error {
	return s.db.Delete(key)
}

// GenerateKey returns n random bytes hex encoded.
func GenerateKey(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
