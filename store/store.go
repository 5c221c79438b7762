package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("not found")

// DB is a small wrapper around a Pebble DB instance shared by the
// history and credentials stores.
type DB struct {
	DB       *pebble.DB
	DataFile string
}

// Open opens (or creates) a pebble DB at the given dataFile path.
func Open(dataFile string) (*DB, error) {
	db, err := pebble.Open(dataFile, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dataFile, err)
	}
	return &DB{DB: db, DataFile: dataFile}, nil
}

// Put stores a value under the given key.
func (s *DB) Put(key string, value []byte) error {
	return s.DB.Set([]byte(key), value, pebble.Sync)
}

// Get returns a copy of the value stored under key.
func (s *DB) Get(key string) ([]byte, error) {
	value, closer, err := s.DB.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Delete removes the key from the DB.
func (s *DB) Delete(key string) error {
	return s.DB.Delete([]byte(key), pebble.Sync)
}

// PutJSON marshals v and stores it under key.
func (s *DB) PutJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.Put(key, data)
}

// GetJSON loads key into v.
func (s *DB) GetJSON(key string, v any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

// Each calls fn for every key with the given prefix, in key order.
// The slices passed to fn are only valid during the call.
// Iteration stops at the first error fn returns.
func (s *DB) Each(prefix string, fn func(key, value []byte) error) error {
	opts := &pebble.IterOptions{}
	if prefix != "" {
		opts.LowerBound = []byte(prefix)
		opts.UpperBound = prefixEnd([]byte(prefix))
	}
	iter, err := s.DB.NewIter(opts)
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("iteration error: %w", err)
	}
	return nil
}

// CheckHealth performs a read to verify the database is accessible.
func (s *DB) CheckHealth() error {
	_, err := s.Get("__health_check__")
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying DB.
func (s *DB) Close() error {
	return s.DB.Close()
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
