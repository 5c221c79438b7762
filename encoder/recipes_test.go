package encoder

import (
	"math"
	"strings"
	"testing"
)

func TestTrimArgsFull(t *testing.T) {
	got := TrimArgs(TrimOptions{Input: "in.webm", Output: "out.mp4", Start: 5.5, Duration: 10, FPS: 30})
	want := "-hide_banner -y -i in.webm -ss 5.5 -t 10 -c:v libx264 -preset veryfast -crf 23 " +
		"-r 30 -vsync cfr -pix_fmt yuv420p -c:a aac -b:a 128k -movflags +faststart out.mp4"
	if strings.Join(got, " ") != want {
		t.Errorf("Unexpected argv:\n got %s\nwant %s", strings.Join(got, " "), want)
	}
}

func TestTrimArgsOmitsUnsetFlags(t *testing.T) {
	got := strings.Join(TrimArgs(TrimOptions{Input: "in.mp4", Output: "out.mp4"}), " ")
	for _, flag := range []string{"-ss", "-t ", "-r ", "-vsync"} {
		if strings.Contains(got, flag) {
			t.Errorf("Did not expect %s in %s", flag, got)
		}
	}
	if !strings.HasSuffix(got, "+faststart out.mp4") {
		t.Errorf("Output must be the last argument: %s", got)
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5.5, "5.5"},
		{10, "10"},
		{0, "0"},
		{1.23456, "1.235"},
		{100, "100"},
		{0.05, "0.05"},
		{-1, "0"},
		{math.NaN(), "0"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.in); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClampFPS(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{10, 30},
		{45, 45},
		{120, 60},
		{math.NaN(), 30},
		{math.Inf(1), 30},
	}
	for _, tt := range tests {
		if got := ClampFPS(tt.in); got != tt.want {
			t.Errorf("ClampFPS(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// valueOf returns the argument following flag, or "" when flag is absent.
func valueOf(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func has(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func TestComposeArgsWithAudio(t *testing.T) {
	args := ComposeArgs(ComposeOptions{FramePattern: "/s/frame%06d.jpg", FPS: 30, Audio: "/s/audio.mp3", Output: "/s/out.mp4"})

	if !has(args, "/s/out.mp4") {
		t.Fatalf("Output missing from %q", args)
	}
	if valueOf(args, "-framerate") != "30" {
		t.Errorf("Expected -framerate 30 in %q", args)
	}
	inputs := 0
	for i, a := range args {
		if a == "-i" {
			inputs++
			if inputs == 1 && args[i+1] != "/s/frame%06d.jpg" {
				t.Errorf("Frames must be the first input, got %s", args[i+1])
			}
			if inputs == 2 && args[i+1] != "/s/audio.mp3" {
				t.Errorf("Audio must be the second input, got %s", args[i+1])
			}
		}
	}
	if inputs != 2 {
		t.Errorf("Expected 2 inputs, got %d", inputs)
	}
	for flag, want := range map[string]string{
		"-c:v": "libx264", "-preset": "ultrafast", "-crf": "28",
		"-pix_fmt": "yuv420p", "-c:a": "aac", "-b:a": "128k",
	} {
		if got := valueOf(args, flag); got != want {
			t.Errorf("Expected %s %s, got %q", flag, want, got)
		}
	}
	if !has(args, "-shortest") || !has(args, "-y") {
		t.Errorf("Expected -shortest and -y in %q", args)
	}
	if maps := mapsOf(args); len(maps) != 2 || maps[0] != "0:v" || maps[1] != "1:a" {
		t.Errorf("Expected -map 0:v -map 1:a, got %q in %q", maps, args)
	}
}

func TestComposeArgsWithoutAudio(t *testing.T) {
	args := ComposeArgs(ComposeOptions{FramePattern: "frame%06d.jpg", FPS: 30, Output: "out.mp4"})
	for _, flag := range []string{"-c:a", "-b:a", "-shortest"} {
		if has(args, flag) {
			t.Errorf("Did not expect %s without audio: %q", flag, args)
		}
	}
	if valueOf(args, "-c:v") != "libx264" {
		t.Errorf("Expected libx264 video codec in %q", args)
	}
	for _, m := range mapsOf(args) {
		if m != "0:v" {
			t.Errorf("Only the frame video stream may be mapped, got -map %s in %q", m, args)
		}
	}
}

func mapsOf(args []string) []string {
	var out []string
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-map" {
			out = append(out, args[i+1])
		}
	}
	return out
}
