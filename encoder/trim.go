package encoder

import (
	"math"
	"strconv"
	"strings"
)

const (
	minFPS = 30
	maxFPS = 60
)

// TrimOptions describes one clip cut. Zero Start, Duration or FPS leaves
// the corresponding flag out.
type TrimOptions struct {
	Input    string
	Output   string
	Start    float64
	Duration float64
	FPS      float64
}

// TrimArgs builds the argv that re-encodes [Start, Start+Duration) of Input
// to a web-friendly H.264/AAC mp4.
func TrimArgs(o TrimOptions) []string {
	args := []string{"-hide_banner", "-y", "-i", o.Input}
	if o.Start > 0 {
		args = append(args, "-ss", FormatSeconds(o.Start))
	}
	if o.Duration > 0 {
		args = append(args, "-t", FormatSeconds(o.Duration))
	}
	args = append(args, "-c:v", "libx264", "-preset", "veryfast", "-crf", "23")
	if o.FPS > 0 {
		args = append(args, "-r", FormatSeconds(o.FPS), "-vsync", "cfr")
	}
	return append(args,
		"-pix_fmt", "yuv420p",
		"-c:a", "aac", "-b:a", "128k",
		"-movflags", "+faststart",
		o.Output,
	)
}

// FormatSeconds prints v with millisecond precision and no trailing zeros.
// Negative and non-finite values print as "0".
func FormatSeconds(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// ClampFPS bounds a requested output frame rate to [30, 60].
func ClampFPS(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return minFPS
	}
	return math.Max(minFPS, math.Min(maxFPS, v))
}
