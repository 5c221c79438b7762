package compose

import (
	"math"
	"time"

	"quranreel/models"
)

const (
	// FrameRate is the fixed rate of composed videos.
	FrameRate = 30

	// DefaultTailDuration is how long the last clip stays on screen.
	// Its successor has no syncTime to measure against.
	DefaultTailDuration = 5 * time.Second

	// MaxFrames is the largest sequence the frame%06d naming can address.
	MaxFrames = 999999

	frameEpsilon = 1e-9
)

// ClipPlan is the frame span of one clip in the global sequence.
type ClipPlan struct {
	Index      int
	Duration   time.Duration
	Frames     int
	FirstFrame int
}

// Timeline is the per-clip plan plus the total frame count.
type Timeline struct {
	Clips       []ClipPlan
	TotalFrames int
	FPS         int
}

// Seconds returns the video length implied by the frame count.
func (t Timeline) Seconds() float64 {
	if t.FPS <= 0 {
		return 0
	}
	return float64(t.TotalFrames) / float64(t.FPS)
}

// FrameCount returns ceil(seconds*fps), tolerating float noise such as 0.1*30.
func FrameCount(seconds float64, fps int) int {
	if seconds <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Ceil(seconds*float64(fps) - frameEpsilon))
}

// Durations returns the on-screen seconds of every clip.
// syncTime must be finite, non-negative and non-decreasing; anything else is rejected.
func Durations(clips []models.Clip, tail time.Duration) ([]float64, error) {
	if len(clips) == 0 {
		return nil, models.Invalid("clips", "at least one clip is required")
	}
	if tail <= 0 {
		tail = DefaultTailDuration
	}

	out := make([]float64, len(clips))
	for i, c := range clips {
		if math.IsNaN(c.SyncTime) || math.IsInf(c.SyncTime, 0) || c.SyncTime < 0 {
			return nil, models.Invalid("clips", "clip %d: syncTime must be a non-negative number", i)
		}
		if i > 0 && c.SyncTime < clips[i-1].SyncTime {
			return nil, models.Invalid("clips", "clip %d: syncTime %.3f is before clip %d (%.3f)", i, c.SyncTime, i-1, clips[i-1].SyncTime)
		}
		if i > 0 {
			out[i-1] = c.SyncTime - clips[i-1].SyncTime
		}
	}
	out[len(out)-1] = tail.Seconds()
	return out, nil
}

// Plan computes the frame span of every clip at fps.
func Plan(clips []models.Clip, fps int, tail time.Duration) (Timeline, error) {
	durations, err := Durations(clips, tail)
	if err != nil {
		return Timeline{}, err
	}

	tl := Timeline{Clips: make([]ClipPlan, len(clips)), FPS: fps}
	for i, d := range durations {
		if d*float64(fps) > MaxFrames {
			return Timeline{}, models.Invalid("clips", "clip %d: %.3f seconds exceeds the %d frame limit", i, d, MaxFrames)
		}
		n := FrameCount(d, fps)
		tl.Clips[i] = ClipPlan{
			Index:      i,
			Duration:   time.Duration(d * float64(time.Second)),
			Frames:     n,
			FirstFrame: tl.TotalFrames,
		}
		tl.TotalFrames += n
		if tl.TotalFrames > MaxFrames {
			return Timeline{}, models.Invalid("clips", "video needs more than %d frames", MaxFrames)
		}
	}
	return tl, nil
}
