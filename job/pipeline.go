package job

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"quranreel/compose"
	"quranreel/encoder"
	"quranreel/fetch"
	"quranreel/history"
	"quranreel/logger"
	"quranreel/models"
)

const archiveTimeout = 5 * time.Minute

// Deps are the long-lived collaborators of every job.
type Deps struct {
	Runner   *encoder.Runner
	Renderer *compose.Renderer
	Fetcher  *fetch.Fetcher
	Registry *Registry
	History  *history.Store // optional
	Archiver *Archiver      // optional

	ScratchRoot   string
	TailDuration  time.Duration
	MaxDimension  int
	RenderWorkers int
}

// NewScratch allocates a scratch directory for a new job.
func (d *Deps) NewScratch() (*Scratch, error) {
	return NewScratch(d.ScratchRoot, "")
}

// Result is a finished video waiting to be sent. The caller owns it and
// must call Cleanup once the body has been written or abandoned.
type Result struct {
	ID         string
	OutputPath string
	Size       int64
	Frames     int

	scratch *Scratch
}

// Cleanup removes the job's scratch directory, output included.
func (r *Result) Cleanup() {
	r.scratch.Cleanup()
}

// run is the common lifecycle of a job: register, execute, record the
// outcome, and clean up on every error path.
func (d *Deps) run(ctx context.Context, sc *Scratch, kind string, summary any, work func(context.Context, hclog.Logger) (*Result, error)) (*Result, error) {
	log := logger.Named("job", "job_id", sc.ID, "kind", kind)
	jctx, finish := d.Registry.Start(ctx, sc.ID, kind)
	start := time.Now()
	log.Info("job started")

	res, err := work(jctx, log)
	rec := history.Record{JobID: sc.ID, Kind: kind, JobData: history.Summary(summary), ElapsedMs: time.Since(start).Milliseconds()}
	if err != nil {
		sc.Cleanup()
		finish(err)
		log.Error("job failed", "error", err)
		if d.History != nil {
			if herr := d.History.StoreFailure(rec, err); herr != nil {
				log.Warn("failed to store failure record", "error", herr)
			}
		}
		return nil, err
	}

	res.ID = sc.ID
	res.scratch = sc
	if info, statErr := os.Stat(res.OutputPath); statErr == nil {
		res.Size = info.Size()
	}
	finish(nil)
	log.Info("job completed", "bytes", res.Size, "elapsed", time.Since(start).Round(time.Millisecond))

	rec.OutputBytes = res.Size
	rec.Frames = res.Frames
	if d.Archiver != nil {
		actx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		loc, aerr := d.Archiver.Archive(actx, sc.ID, res.OutputPath)
		cancel()
		if aerr != nil {
			log.Error("archive failed", "backend", d.Archiver.Backend, "error", aerr)
		} else {
			rec.Archived = loc
		}
	}
	if d.History != nil {
		if herr := d.History.StoreSuccess(rec); herr != nil {
			log.Warn("failed to store success record", "error", herr)
		}
	}
	return res, nil
}

// RunTrim re-encodes req.InputPath, which must live inside sc. RunTrim
// owns sc from here on: it is removed on error, and by Result.Cleanup
// on success.
func RunTrim(ctx context.Context, d *Deps, sc *Scratch, req models.TrimRequest) (*Result, error) {
	summary := map[string]float64{"start": req.Start, "duration": req.Duration, "fps": req.FPS}
	return d.run(ctx, sc, KindTrim, summary, func(ctx context.Context, log hclog.Logger) (*Result, error) {
		if err := d.Runner.Binary().Check(); err != nil {
			return nil, err
		}
		out := sc.Path("output.mp4")
		args := encoder.TrimArgs(encoder.TrimOptions{
			Input:    req.InputPath,
			Output:   out,
			Start:    req.Start,
			Duration: req.Duration,
			FPS:      req.FPS,
		})
		if err := d.Runner.Run(ctx, args, out); err != nil {
			return nil, err
		}
		return &Result{OutputPath: out}, nil
	})
}

// ValidateCompose checks a request without touching the filesystem.
func ValidateCompose(d *Deps, req models.ComposeRequest) (compose.Timeline, error) {
	if err := compose.ValidateSettings(req.Settings, d.MaxDimension); err != nil {
		return compose.Timeline{}, err
	}
	tl, err := compose.Plan(req.Clips, compose.FrameRate, d.TailDuration)
	if err != nil {
		return compose.Timeline{}, err
	}
	if ref := req.AudioURL(); ref != "" {
		if _, err := d.Fetcher.Validate(ref); err != nil {
			return compose.Timeline{}, models.Invalid("clips[0].audio", "%v", err)
		}
	}
	return tl, nil
}

// RunCompose renders req to frames, fetches its audio and encodes both
// into one mp4 under job id (generated when empty). Audio and frames are
// complete before the encoder starts.
func RunCompose(ctx context.Context, d *Deps, id string, req models.ComposeRequest) (*Result, error) {
	tl, err := ValidateCompose(d, req)
	if err != nil {
		return nil, err
	}
	if err := d.Runner.Binary().Check(); err != nil {
		return nil, err
	}
	sc, err := NewScratch(d.ScratchRoot, id)
	if err != nil {
		return nil, err
	}

	summary := map[string]int{
		"clips":  len(req.Clips),
		"width":  req.Settings.Width,
		"height": req.Settings.Height,
		"frames": tl.TotalFrames,
	}
	return d.run(ctx, sc, KindCompose, summary, func(ctx context.Context, log hclog.Logger) (*Result, error) {
		var audio string
		if ref := req.AudioURL(); ref != "" {
			path, err := d.Fetcher.Fetch(ctx, ref, sc.Dir)
			if err != nil {
				return nil, err
			}
			audio = path
		}

		frameDir := sc.Path("frames")
		if err := os.Mkdir(frameDir, 0700); err != nil {
			return nil, fmt.Errorf("create frame dir: %w", err)
		}
		frames, err := compose.WriteFrames(ctx, d.Renderer, req.Clips, req.Settings, tl, frameDir, d.RenderWorkers)
		if err != nil {
			return nil, fmt.Errorf("render frames: %w", err)
		}
		log.Debug("frames rendered", "count", frames.Count, "seconds", tl.Seconds())

		out := sc.Path("output.mp4")
		args := encoder.ComposeArgs(encoder.ComposeOptions{
			FramePattern: frames.Pattern(),
			FPS:          frames.FPS,
			Audio:        audio,
			Output:       out,
		})
		if err := d.Runner.Run(ctx, args, out); err != nil {
			return nil, err
		}
		return &Result{OutputPath: out, Frames: frames.Count}, nil
	})
}
