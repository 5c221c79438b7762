package routes

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"quranreel/encoder"
	"quranreel/job"
)

// Diagnostic is the runtime report of GET /api/trim?debug=1.
type Diagnostic struct {
	OK        bool   `json:"ok"`
	GoVersion string `json:"go_version"`
	Scratch   string `json:"scratch"`

	ScratchFreeBytes uint64  `json:"scratch_free_bytes,omitempty"`
	MemoryTotal      uint64  `json:"memory_total,omitempty"`
	MemoryAvailable  uint64  `json:"memory_available,omitempty"`
	MemoryUsedPct    float64 `json:"memory_used_percent,omitempty"`

	ActiveJobs int `json:"active_jobs"`

	FFmpeg FFmpegDiagnostic `json:"ffmpeg"`
}

// FFmpegDiagnostic describes the resolved encoder binary.
type FFmpegDiagnostic struct {
	encoder.Status
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) diagnose(ctx context.Context) Diagnostic {
	d := Diagnostic{
		OK:        true,
		GoVersion: runtime.Version(),
		Scratch:   s.Deps.ScratchRoot,
	}
	if usage, err := disk.UsageWithContext(ctx, s.Deps.ScratchRoot); err == nil {
		d.ScratchFreeBytes = usage.Free
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		d.MemoryTotal = vm.Total
		d.MemoryAvailable = vm.Available
		d.MemoryUsedPct = vm.UsedPercent
	}
	for _, e := range s.Deps.Registry.List() {
		if e.State == job.JobStateProcessing {
			d.ActiveJobs++
		}
	}

	bin := s.Deps.Runner.Binary()
	d.FFmpeg.Status = bin.Stat()
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if v, err := bin.Probe(pctx); err != nil {
		d.FFmpeg.Error = err.Error()
	} else {
		d.FFmpeg.Version = v
	}
	return d
}
