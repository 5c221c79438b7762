// Package encodertest provides a scripted stand-in for the ffmpeg binary.
package encodertest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quranreel/encoder"
)

// Mode selects how the fake binary behaves when asked to encode.
type Mode string

const (
	Succeed  Mode = "succeed"  // writes its last .mp4 argument and exits 0
	Fail     Mode = "fail"     // prints a diagnostic and exits 1
	Noisy    Mode = "noisy"    // prints 10000 bytes of stderr and exits 1
	Silent   Mode = "silent"   // exits 3 without output
	NoOutput Mode = "nooutput" // exits 0 without writing anything
	Hang     Mode = "hang"     // sleeps until killed
)

// FailMessage is what Fail mode prints to stderr.
const FailMessage = "Invalid data found when processing input"

var bodies = map[Mode]string{
	Succeed: `out=""
for a; do case "$a" in *.mp4) out="$a";; esac; done
printf 'fake mp4' > "$out"`,
	Fail:     `echo "` + FailMessage + `" >&2` + "\nexit 1",
	Noisy:    `head -c 10000 /dev/zero | tr '\0' x >&2` + "\nexit 1",
	Silent:   "exit 3",
	NoOutput: "exit 0",
	Hang:     "exec sleep 30",
}

// Fake is an executable shell script installed in a test temp dir.
type Fake struct {
	Path     string
	argsFile string
}

// New writes a fake ffmpeg that behaves according to mode.
// It answers -version in every mode.
func New(t testing.TB, mode Mode) *Fake {
	t.Helper()
	body, ok := bodies[mode]
	if !ok {
		t.Fatalf("unknown fake encoder mode %q", mode)
	}
	dir := t.TempDir()
	f := &Fake{Path: filepath.Join(dir, "ffmpeg"), argsFile: filepath.Join(dir, "args")}
	script := fmt.Sprintf(`#!/bin/sh
printf '%%s\n' "$@" > '%s'
if [ "$1" = "-version" ]; then
  echo "ffmpeg version 6.1-fake Copyright (c) the FFmpeg developers"
  exit 0
fi
%s
`, f.argsFile, body)
	if err := os.WriteFile(f.Path, []byte(script), 0755); err != nil {
		t.Fatalf("write fake encoder: %v", err)
	}
	return f
}

// Binary returns the fake as a resolved encoder binary.
func (f *Fake) Binary() encoder.Binary {
	return encoder.Binary{Env: f.Path, Path: f.Path}
}

// Args returns the argv of the most recent invocation.
func (f *Fake) Args(t testing.TB) []string {
	t.Helper()
	data, err := os.ReadFile(f.argsFile)
	if err != nil {
		t.Fatalf("fake encoder was not invoked: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// Invoked reports whether the fake ran at all.
func (f *Fake) Invoked() bool {
	_, err := os.Stat(f.argsFile)
	return err == nil
}
