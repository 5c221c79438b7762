// Package history keeps success and failure records of finished jobs.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quranreel/store"
)

const (
	failurePrefix = "failure/"
	successPrefix = "success/"
)

// Record describes one finished job.
type Record struct {
	JobID       string    `json:"job_id"`
	Kind        string    `json:"kind"`
	Timestamp   time.Time `json:"timestamp"`
	ElapsedMs   int64     `json:"elapsed_ms"`
	Error       string    `json:"error,omitempty"`
	JobData     string    `json:"job_data"` // JSON summary of the request
	OutputBytes int64     `json:"output_bytes,omitempty"`
	Frames      int       `json:"frames,omitempty"`
	Archived    string    `json:"archived,omitempty"`
}

// Store persists records in a Pebble DB.
type Store struct {
	db *store.DB
}

// Open opens the history DB at path.
func Open(path string) (*Store, error) {
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the history store.
func (s *Store) Close() error {
	return s.db.Close()
}

// StoreFailure records a failed job.
func (s *Store) StoreFailure(rec Record, err error) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rec.Error = err.Error()
	return s.db.PutJSON(failurePrefix+rec.JobID, rec)
}

// StoreSuccess records a completed job.
func (s *Store) StoreSuccess(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rec.Error = ""
	return s.db.PutJSON(successPrefix+rec.JobID, rec)
}

// GetFailure returns the failure record of id, or nil when there is none.
func (s *Store) GetFailure(id string) (*Record, error) {
	return s.get(failurePrefix + id)
}

// GetSuccess returns the success record of id, or nil when there is none.
func (s *Store) GetSuccess(id string) (*Record, error) {
	return s.get(successPrefix + id)
}

func (s *Store) get(key string) (*Record, error) {
	var rec Record
	err := s.db.GetJSON(key, &rec)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &rec, nil
}

// ListFailures returns all failure records.
func (s *Store) ListFailures() ([]Record, error) {
	return s.list(failurePrefix)
}

// ListSuccesses returns all success records.
func (s *Store) ListSuccesses() ([]Record, error) {
	return s.list(successPrefix)
}

func (s *Store) list(prefix string) ([]Record, error) {
	records := []Record{}
	err := s.db.Each(prefix, func(_, value []byte) error {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return nil // Skip invalid records
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

// CleanupOldRecords removes records older than maxAge and reports how many
// were deleted.
func (s *Store) CleanupOldRecords(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	var keysToDelete []string
	err := s.db.Each("", func(key, value []byte) error {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return nil
		}
		if rec.Timestamp.Before(cutoff) {
			keysToDelete = append(keysToDelete, string(key))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for i, key := range keysToDelete {
		if err := s.db.Delete(key); err != nil {
			return i, fmt.Errorf("failed to delete old record: %w", err)
		}
	}
	return len(keysToDelete), nil
}

// CheckHealth verifies the history DB is readable.
func (s *Store) CheckHealth() error {
	return s.db.CheckHealth()
}

// Summary marshals v for Record.JobData. Marshal failures are described
// in place of the data.
func Summary(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("failed to marshal job data: %v", err)
	}
	return string(data)
}
