package job

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"quranreel/logger"
)

// Scratch is a per-job working directory. Everything a job writes lives
// inside it, so one RemoveAll releases all of it.
type Scratch struct {
	ID  string
	Dir string

	once sync.Once
}

// NewScratch creates <root>/<id>. An empty id gets a random UUID.
func NewScratch(root, id string) (*Scratch, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create scratch root: %w", err)
	}
	dir := filepath.Join(root, id)
	if err := os.Mkdir(dir, 0700); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Scratch{ID: id, Dir: dir}, nil
}

// Path returns the location of name inside the scratch directory.
func (s *Scratch) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// Cleanup removes the directory. Only the first call does anything;
// failures are logged and never returned.
func (s *Scratch) Cleanup() {
	s.once.Do(func() {
		if err := os.RemoveAll(s.Dir); err != nil {
			logger.Errorf("Failed to cleanup scratch directory %s: %v", s.Dir, err)
			return
		}
		logger.Debugf("Removed scratch directory %s", s.Dir)
	})
}
