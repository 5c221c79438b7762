package encoder_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quranreel/encoder"
	"quranreel/encoder/encodertest"
)

func TestResolveExplicitPath(t *testing.T) {
	b := encoder.Resolve("/opt/ffmpeg/bin/ffmpeg")
	if b.Path != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("Expected explicit path to be kept, got %q", b.Path)
	}
}

func TestCheckMissingBinary(t *testing.T) {
	tests := []struct {
		name string
		bin  encoder.Binary
	}{
		{"unresolved", encoder.Binary{}},
		{"missing", encoder.Binary{Path: filepath.Join(t.TempDir(), "ffmpeg")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.bin.Check(); !errors.Is(err, encoder.ErrUnavailable) {
				t.Errorf("Expected ErrUnavailable, got %v", err)
			}
		})
	}
}

func TestCheckNotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0644); err != nil {
		t.Fatal(err)
	}
	b := encoder.Binary{Path: path}
	st := b.Stat()
	if !st.Exists || st.Executable {
		t.Errorf("Expected exists and not executable, got %+v", st)
	}
	if err := b.Check(); !errors.Is(err, encoder.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestProbe(t *testing.T) {
	fake := encodertest.New(t, encodertest.Succeed)
	version, err := fake.Binary().Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if !strings.HasPrefix(version, "ffmpeg version 6.1-fake") {
		t.Errorf("Unexpected version line %q", version)
	}
}

func TestRunSuccess(t *testing.T) {
	fake := encodertest.New(t, encodertest.Succeed)
	out := filepath.Join(t.TempDir(), "out.mp4")
	r := encoder.NewRunner(fake.Binary(), 1)

	if err := r.Run(context.Background(), []string{"-i", "in.mp4", out}, out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("Output was not written: %v", err)
	}
	args := fake.Args(t)
	if len(args) != 3 || args[0] != "-i" || args[2] != out {
		t.Errorf("Arguments not passed through verbatim: %q", args)
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		mode     encodertest.Mode
		wantMsg  string
		wantCode int
	}{
		{encodertest.Fail, encodertest.FailMessage, 1},
		{encodertest.Silent, "FFmpeg exited with code 3", 3},
		{encodertest.NoOutput, "FFmpeg failed", 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			fake := encodertest.New(t, tt.mode)
			out := filepath.Join(t.TempDir(), "out.mp4")
			err := encoder.NewRunner(fake.Binary(), 1).Run(context.Background(), []string{out}, out)

			var encErr *encoder.EncodeError
			if !errors.As(err, &encErr) {
				t.Fatalf("Expected *EncodeError, got %v", err)
			}
			if encErr.ExitCode != tt.wantCode {
				t.Errorf("Expected exit code %d, got %d", tt.wantCode, encErr.ExitCode)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestRunCapsDiagnostic(t *testing.T) {
	fake := encodertest.New(t, encodertest.Noisy)
	out := filepath.Join(t.TempDir(), "out.mp4")
	err := encoder.NewRunner(fake.Binary(), 1).Run(context.Background(), []string{out}, out)

	var encErr *encoder.EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("Expected *EncodeError, got %v", err)
	}
	if len(encErr.Diagnostic) != 4000 {
		t.Errorf("Expected 4000 bytes of diagnostic, got %d", len(encErr.Diagnostic))
	}
}

func TestRunCancelKillsProcess(t *testing.T) {
	fake := encodertest.New(t, encodertest.Hang)
	out := filepath.Join(t.TempDir(), "out.mp4")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := encoder.NewRunner(fake.Binary(), 1).Run(ctx, []string{out}, out)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Run took %s after cancellation", elapsed)
	}
}

func TestRunUnavailable(t *testing.T) {
	r := encoder.NewRunner(encoder.Binary{}, 1)
	if err := r.Run(context.Background(), nil, "out.mp4"); !errors.Is(err, encoder.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}
