package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"quranreel/logger"
	"quranreel/models"
)

// FramePattern names frames so the encoder reads them as an ordered sequence.
const FramePattern = "frame%06d.jpg"

// FrameName returns the file name of global frame i.
func FrameName(i int) string {
	return fmt.Sprintf(FramePattern, i)
}

// FrameSet describes a rendered image sequence on disk.
type FrameSet struct {
	Dir   string
	Count int
	FPS   int
}

// Pattern is the printf-style path the encoder reads frames from.
func (f FrameSet) Pattern() string {
	return filepath.Join(f.Dir, FramePattern)
}

// WriteFrames renders every clip of tl into dir.
// A clip's frames are identical, so each clip is drawn and encoded once and
// its bytes written Frames times. Clips render on up to workers goroutines;
// file names come from the plan, so completion order does not matter.
func WriteFrames(ctx context.Context, r *Renderer, clips []models.Clip, s models.RenderSettings, tl Timeline, dir string, workers int) (FrameSet, error) {
	if len(clips) != len(tl.Clips) {
		return FrameSet{}, fmt.Errorf("timeline has %d clips, request has %d", len(tl.Clips), len(clips))
	}
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, plan := range tl.Clips {
		if plan.Frames == 0 {
			continue
		}
		g.Go(func() error {
			data, err := EncodeJPEG(r.Render(clips[plan.Index], s))
			if err != nil {
				return fmt.Errorf("encode clip %d: %w", plan.Index, err)
			}
			for f := 0; f < plan.Frames; f++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				path := filepath.Join(dir, FrameName(plan.FirstFrame+f))
				if err := os.WriteFile(path, data, 0644); err != nil {
					return fmt.Errorf("write frame %d: %w", plan.FirstFrame+f, err)
				}
			}
			logger.Debugf("Rendered clip %d/%d (%d frames)", plan.Index+1, len(tl.Clips), plan.Frames)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return FrameSet{}, err
	}
	return FrameSet{Dir: dir, Count: tl.TotalFrames, FPS: tl.FPS}, nil
}
