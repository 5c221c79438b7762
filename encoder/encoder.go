package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"quranreel/logger"
)

// ErrUnavailable is returned when no usable ffmpeg binary was resolved.
var ErrUnavailable = errors.New("FFmpeg not available")

// stderrLimit caps how much encoder diagnostic output is kept.
const stderrLimit = 4000

// Binary is the ffmpeg executable resolved at startup.
type Binary struct {
	Env  string // FFMPEG_BIN as configured, may be empty
	Path string // resolved path, empty when nothing was found
}

// Resolve picks FFMPEG_BIN when set, otherwise ffmpeg from PATH.
// A bare command name in env is looked up in PATH as well.
func Resolve(env string) Binary {
	b := Binary{Env: env}
	name := env
	if name == "" {
		name = "ffmpeg"
	}
	if strings.ContainsRune(name, os.PathSeparator) {
		b.Path = name
		return b
	}
	if p, err := exec.LookPath(name); err == nil {
		b.Path = p
	} else {
		logger.Warnf("encoder: command '%s' not found in PATH", name)
	}
	return b
}

// Status reports what is known about the binary without running it.
type Status struct {
	Env        string `json:"env"`
	Resolved   string `json:"resolved"`
	Exists     bool   `json:"exists"`
	Executable bool   `json:"executable"`
}

// Stat inspects the resolved path.
func (b Binary) Stat() Status {
	st := Status{Env: b.Env, Resolved: b.Path}
	if b.Path == "" {
		return st
	}
	info, err := os.Stat(b.Path)
	if err != nil || info.IsDir() {
		return st
	}
	st.Exists = true
	st.Executable = info.Mode().Perm()&0111 != 0
	return st
}

// Check fails with ErrUnavailable unless the binary exists and is executable.
func (b Binary) Check() error {
	st := b.Stat()
	switch {
	case st.Resolved == "":
		return ErrUnavailable
	case !st.Exists:
		return fmt.Errorf("%w: %s does not exist", ErrUnavailable, st.Resolved)
	case !st.Executable:
		return fmt.Errorf("%w: %s is not executable", ErrUnavailable, st.Resolved)
	}
	return nil
}

// Probe runs `ffmpeg -version` and returns its first line.
func (b Binary) Probe(ctx context.Context) (string, error) {
	if err := b.Check(); err != nil {
		return "", err
	}
	out, err := exec.CommandContext(ctx, b.Path, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s -version: %v", ErrUnavailable, b.Path, err)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// EncodeError is a failed encoder run.
type EncodeError struct {
	Diagnostic string // first bytes of stderr
	ExitCode   int    // -1 when the process never produced an exit status
}

func (e *EncodeError) Error() string {
	if d := strings.TrimSpace(e.Diagnostic); d != "" {
		return d
	}
	if e.ExitCode > 0 {
		return fmt.Sprintf("FFmpeg exited with code %d", e.ExitCode)
	}
	return "FFmpeg failed"
}

// Runner spawns encoder processes, at most a fixed number at a time.
type Runner struct {
	bin Binary
	sem *semaphore.Weighted
}

// NewRunner returns a Runner for bin. maxConcurrent <= 0 means one.
func NewRunner(bin Binary, maxConcurrent int) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Runner{bin: bin, sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// Binary returns the executable the runner spawns.
func (r *Runner) Binary() Binary { return r.bin }

// Run executes the binary with args and waits for it. It succeeds only when
// the process exits 0 and output exists. Cancelling ctx kills the process.
func (r *Runner) Run(ctx context.Context, args []string, output string) error {
	if err := r.bin.Check(); err != nil {
		return err
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for encoder slot: %w", err)
	}
	defer r.sem.Release(1)

	stderr := &cappedBuffer{limit: stderrLimit}
	cmd := exec.CommandContext(ctx, r.bin.Path, args...)
	cmd.Stderr = stderr
	cmd.WaitDelay = 2 * time.Second

	logger.Debugf("encoder: %s %s", r.bin.Path, strings.Join(args, " "))
	start := time.Now()
	err := cmd.Run()
	if ctx.Err() != nil {
		return fmt.Errorf("encoder stopped: %w", ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &EncodeError{Diagnostic: stderr.String(), ExitCode: exitErr.ExitCode()}
		}
		return &EncodeError{Diagnostic: err.Error(), ExitCode: -1}
	}
	if _, err := os.Stat(output); err != nil {
		logger.Warnf("encoder: exited 0 but %s is missing", output)
		return &EncodeError{Diagnostic: stderr.String()}
	}
	logger.Debugf("encoder: finished in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// cappedBuffer keeps the first limit bytes written and drops the rest
// while still reporting full writes to the process pipe.
type cappedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if room := c.limit - c.buf.Len(); room > 0 {
		if len(p) > room {
			c.buf.Write(p[:room])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

func (c *cappedBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}
