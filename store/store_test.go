package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPutGetDelete(t *testing.T) {
	db := openTestDB(t)

	if err := db.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := db.Get("k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := db.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := db.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	db := openTestDB(t)
	type rec struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := db.PutJSON("r", rec{"a", 3}); err != nil {
		t.Fatalf("PutJSON failed: %v", err)
	}
	var out rec
	if err := db.GetJSON("r", &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out.Name != "a" || out.Count != 3 {
		t.Errorf("Unexpected record %+v", out)
	}
}

func TestEachPrefix(t *testing.T) {
	db := openTestDB(t)
	for _, k := range []string{"a/1", "a/2", "b/1", "a"} {
		if err := db.Put(k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}

	var keys []string
	err := db.Each("a/", func(key, value []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("Each failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a/1" || keys[1] != "a/2" {
		t.Errorf("Unexpected keys %q", keys)
	}

	stop := errors.New("stop")
	calls := 0
	err = db.Each("", func(key, value []byte) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("Expected iteration to stop after one call, got %d calls, err %v", calls, err)
	}
}

func TestCheckHealth(t *testing.T) {
	if err := openTestDB(t).CheckHealth(); err != nil {
		t.Errorf("CheckHealth failed: %v", err)
	}
}
