package compose

import (
	"errors"
	"math"
	"testing"
	"time"

	"quranreel/models"
)

func clipsAt(times ...float64) []models.Clip {
	clips := make([]models.Clip, len(times))
	for i, t := range times {
		clips[i] = models.Clip{Arabic: "آية", Number: i + 1, SyncTime: t}
	}
	return clips
}

func TestPlanTwoClips(t *testing.T) {
	tl, err := Plan(clipsAt(0, 3), FrameRate, DefaultTailDuration)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if tl.Clips[0].Frames != 90 {
		t.Errorf("Expected 90 frames for first clip, got %d", tl.Clips[0].Frames)
	}
	if tl.Clips[1].Frames != 150 {
		t.Errorf("Expected 150 frames for tail clip, got %d", tl.Clips[1].Frames)
	}
	if tl.Clips[1].FirstFrame != 90 {
		t.Errorf("Expected second clip to start at frame 90, got %d", tl.Clips[1].FirstFrame)
	}
	if tl.TotalFrames != 240 {
		t.Errorf("Expected 240 frames in total, got %d", tl.TotalFrames)
	}
	if tl.Seconds() != 8 {
		t.Errorf("Expected 8 seconds of video, got %v", tl.Seconds())
	}
}

func TestPlanTotalIsSumOfCeilings(t *testing.T) {
	times := []float64{0, 1.25, 2.5, 2.5, 7.01, 9.333}
	tl, err := Plan(clipsAt(times...), FrameRate, DefaultTailDuration)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	want := 0
	for i := range times {
		d := DefaultTailDuration.Seconds()
		if i < len(times)-1 {
			d = times[i+1] - times[i]
		}
		want += int(math.Ceil(d*FrameRate - 1e-9))
	}
	if tl.TotalFrames != want {
		t.Errorf("Expected %d frames, got %d", want, tl.TotalFrames)
	}
	if tl.Clips[2].Frames != 0 {
		t.Errorf("Equal syncTimes should give an empty clip, got %d frames", tl.Clips[2].Frames)
	}
}

func TestPlanCustomTail(t *testing.T) {
	tl, err := Plan(clipsAt(0), FrameRate, 2*time.Second)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if tl.TotalFrames != 60 {
		t.Errorf("Expected 60 frames with a 2s tail, got %d", tl.TotalFrames)
	}
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		seconds float64
		want    int
	}{
		{3, 90},
		{0.1, 3},
		{0.7, 21},
		{1.01, 31},
		{0, 0},
		{-2, 0},
	}
	for _, tt := range tests {
		if got := FrameCount(tt.seconds, 30); got != tt.want {
			t.Errorf("FrameCount(%v, 30) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}

func TestPlanRejectsBadTiming(t *testing.T) {
	tests := []struct {
		name  string
		clips []models.Clip
	}{
		{"empty", nil},
		{"decreasing", clipsAt(0, 4, 3)},
		{"negative", clipsAt(-1, 2)},
		{"nan", clipsAt(0, math.NaN())},
		{"inf", clipsAt(0, math.Inf(1))},
		{"too many frames", clipsAt(0, 40000)},
		{"one clip past the limit", clipsAt(0, 33334)},
		{"huge finite syncTime", clipsAt(0, 1e300)},
		{"max float syncTime", clipsAt(0, math.MaxFloat64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, err := Plan(tt.clips, FrameRate, DefaultTailDuration)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected a validation error, got %v (total %d)", err, tl.TotalFrames)
			}
		})
	}
}
