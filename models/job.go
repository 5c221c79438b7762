package models

import "fmt"

// Clip is one verse segment of a composed video.
type Clip struct {
	Arabic      string  `json:"ar"`
	Translation string  `json:"translation,omitempty"`
	Number      int     `json:"number"`
	SyncTime    float64 `json:"syncTime"` // seconds from the start of the video
	Audio       string  `json:"audio,omitempty"`
}

// RenderSettings controls frame size and which overlays are drawn.
// All toggles default to off.
type RenderSettings struct {
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	ShowArabicText  bool   `json:"showArabicText"`
	ShowTranslation bool   `json:"showTranslation"`
	ShowAyahNumber  bool   `json:"showAyahNumber"`
	ShowReciterName bool   `json:"showReciterName"`
	ReciterName     string `json:"reciterName,omitempty"`
}

// ComposeRequest is the JSON body of the verse video endpoint.
type ComposeRequest struct {
	Clips    []Clip         `json:"clips"`
	Settings RenderSettings `json:"settings"`
}

// AudioURL returns the audio reference of the first clip, if any.
func (r ComposeRequest) AudioURL() string {
	if len(r.Clips) == 0 {
		return ""
	}
	return r.Clips[0].Audio
}

// TrimRequest describes one clip trim/transcode.
// Start and Duration are seconds; zero means "from the beginning" and "to the end".
// FPS is zero when the caller did not ask for a frame rate.
type TrimRequest struct {
	InputPath string
	Start     float64
	Duration  float64
	FPS       float64
}

// ValidationError is returned for malformed input and maps to HTTP 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
