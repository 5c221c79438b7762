package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(time.Hour)
	_, finishA := r.Start(context.Background(), "a", KindTrim)
	_, finishB := r.Start(context.Background(), "b", KindCompose)
	_, finishC := r.Start(context.Background(), "c", KindCompose)

	if !r.Active("a") {
		t.Error("Job a should be active")
	}
	finishA(nil)
	finishB(errors.New("FFmpeg failed"))
	finishC(context.Canceled)

	want := map[string]JobState{"a": JobStateCompleted, "b": JobStateFailed, "c": JobStateCancelled}
	for id, state := range want {
		e, ok := r.Get(id)
		if !ok || e.State != state {
			t.Errorf("Job %s: expected %s, got %+v", id, state, e)
		}
	}
	if len(r.List()) != 3 {
		t.Errorf("Expected 3 jobs, got %d", len(r.List()))
	}
}

func TestRegistryCancel(t *testing.T) {
	r := NewRegistry(time.Hour)
	ctx, finish := r.Start(context.Background(), "job", KindCompose)

	if err := r.Cancel("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
	if err := r.Cancel("job"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	select {
	case <-ctx.Done():
	default:
		t.Fatal("Job context should be cancelled")
	}
	finish(errors.New("encoder stopped"))

	if e, _ := r.Get("job"); e.State != JobStateCancelled {
		t.Errorf("Expected cancelled, got %s", e.State)
	}
	if err := r.Cancel("job"); !errors.Is(err, ErrJobFinished) {
		t.Errorf("Expected ErrJobFinished, got %v", err)
	}
}

func TestRegistryPrune(t *testing.T) {
	r := NewRegistry(0)
	_, finishA := r.Start(context.Background(), "done", KindTrim)
	r.Start(context.Background(), "running", KindTrim)
	finishA(nil)

	time.Sleep(time.Millisecond)
	if n := r.Prune(); n != 1 {
		t.Errorf("Expected 1 pruned job, got %d", n)
	}
	if _, ok := r.Get("running"); !ok {
		t.Error("Running jobs must never be pruned")
	}
}

func TestStateJSON(t *testing.T) {
	b, _ := JobStateCancelled.MarshalText()
	if string(b) != "cancelled" {
		t.Errorf("Unexpected text %s", b)
	}
}

func TestScratchCleanupIsIdempotent(t *testing.T) {
	root := t.TempDir()
	sc, err := NewScratch(root, "")
	if err != nil {
		t.Fatalf("NewScratch failed: %v", err)
	}
	if len(sc.ID) != 36 {
		t.Errorf("Expected a UUID id, got %q", sc.ID)
	}
	if err := os.WriteFile(sc.Path("frame000000.jpg"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	sc.Cleanup()
	sc.Cleanup()
	if _, err := os.Stat(sc.Dir); !os.IsNotExist(err) {
		t.Errorf("Scratch dir should be gone: %v", err)
	}
}

func TestSweepScratch(t *testing.T) {
	root := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)
	for _, id := range []string{"stale", "running", "fresh"} {
		if err := os.Mkdir(filepath.Join(root, id), 0700); err != nil {
			t.Fatal(err)
		}
	}
	os.Chtimes(filepath.Join(root, "stale"), old, old)
	os.Chtimes(filepath.Join(root, "running"), old, old)

	n, err := SweepScratch(root, time.Hour, func(id string) bool { return id == "running" })
	if err != nil {
		t.Fatalf("SweepScratch failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 removal, got %d", n)
	}
	for id, exists := range map[string]bool{"stale": false, "running": true, "fresh": true} {
		_, err := os.Stat(filepath.Join(root, id))
		if (err == nil) != exists {
			t.Errorf("%s: expected exists=%v, stat err %v", id, exists, err)
		}
	}

	if n, err := SweepScratch(filepath.Join(root, "missing"), time.Hour, nil); n != 0 || err != nil {
		t.Errorf("A missing root should be a no-op, got %d, %v", n, err)
	}
}
