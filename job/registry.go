package job

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// JobState represents the current state of a job
type JobState int

const (
	JobStateProcessing JobState = iota
	JobStateCompleted
	JobStateFailed
	JobStateCancelled
)

func (s JobState) String() string {
	switch s {
	case JobStateProcessing:
		return "processing"
	case JobStateCompleted:
		return "completed"
	case JobStateFailed:
		return "failed"
	case JobStateCancelled:
		return "cancelled"
	}
	return "unknown"
}

func (s JobState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kinds of job.
const (
	KindTrim    = "trim"
	KindCompose = "compose"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobFinished = errors.New("job already finished")
)

// Entry is a snapshot of one job.
type Entry struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	State    JobState  `json:"state"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Error    string    `json:"error,omitempty"`
}

type entry struct {
	Entry
	cancel context.CancelFunc
}

// Registry tracks in-flight and recently finished jobs.
type Registry struct {
	mu        sync.RWMutex
	jobs      map[string]*entry
	retention time.Duration
}

// NewRegistry keeps finished jobs for retention before Prune drops them.
func NewRegistry(retention time.Duration) *Registry {
	return &Registry{jobs: make(map[string]*entry), retention: retention}
}

// Start registers a processing job and returns its context and the func
// that records its outcome. finish must be called exactly once.
func (r *Registry) Start(parent context.Context, id, kind string) (context.Context, func(error)) {
	ctx, cancel := context.WithCancel(parent)
	e := &entry{Entry: Entry{ID: id, Kind: kind, State: JobStateProcessing, Started: time.Now()}, cancel: cancel}

	r.mu.Lock()
	r.jobs[id] = e
	r.mu.Unlock()

	finish := func(err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		switch {
		case err == nil:
			e.State = JobStateCompleted
		case errors.Is(err, context.Canceled) || e.State == JobStateCancelled:
			e.State = JobStateCancelled
			e.Error = err.Error()
		default:
			e.State = JobStateFailed
			e.Error = err.Error()
		}
		e.Finished = time.Now()
		e.cancel = nil
		cancel()
	}
	return ctx, finish
}

// Cancel aborts a processing job. The job's own error path cleans up.
func (r *Registry) Cancel(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if e.State != JobStateProcessing || e.cancel == nil {
		return fmt.Errorf("%w: %s is %s", ErrJobFinished, id, e.State)
	}
	e.State = JobStateCancelled
	e.cancel()
	return nil
}

// Get returns the job with the given id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.jobs[id]
	if !ok {
		return Entry{}, false
	}
	return e.Entry, true
}

// Active reports whether id is still processing.
func (r *Registry) Active(id string) bool {
	e, ok := r.Get(id)
	return ok && e.State == JobStateProcessing
}

// List returns all known jobs, oldest first.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.jobs))
	for _, e := range r.jobs {
		out = append(out, e.Entry)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

// Prune drops jobs that finished more than the retention window ago.
func (r *Registry) Prune() int {
	cutoff := time.Now().Add(-r.retention)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.jobs {
		if e.State != JobStateProcessing && e.Finished.Before(cutoff) {
			delete(r.jobs, id)
			n++
		}
	}
	return n
}
