package encoder

import (
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ComposeOptions describes the frames-plus-audio encode.
type ComposeOptions struct {
	FramePattern string // printf-style image sequence path
	FPS          int
	Audio        string // optional
	Output       string
}

// ComposeArgs builds the argv that turns an image sequence, and optionally
// one audio track, into an H.264 mp4. Only the audio streams of the audio
// input are mapped, so embedded cover art never becomes a second video
// track. With audio the output stops at the shorter stream.
func ComposeArgs(o ComposeOptions) []string {
	streams := []*ffmpeg.Stream{
		ffmpeg.Input(o.FramePattern, ffmpeg.KwArgs{"framerate": strconv.Itoa(o.FPS)}).Video(),
	}
	out := ffmpeg.KwArgs{
		"c:v":     "libx264",
		"preset":  "ultrafast",
		"crf":     "28",
		"pix_fmt": "yuv420p",
	}
	if o.Audio != "" {
		streams = append(streams, ffmpeg.Input(o.Audio).Audio())
		out["c:a"] = "aac"
		out["b:a"] = "128k"
		out["shortest"] = ""
	}
	return ffmpeg.Output(streams, o.Output, out).
		GlobalArgs("-hide_banner").
		OverWriteOutput().
		GetArgs()
}
