package routes

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"quranreel/encoder"
	"quranreel/job"
	"quranreel/logger"
	"quranreel/models"
)

const maxFieldBytes = 64

var errMissingVideo = errors.New("Missing video file")

// TrimHandler cuts and re-encodes an uploaded clip to an mp4 download.
// GET ?debug=1 reports the runtime and encoder diagnostic instead.
func (s *Server) TrimHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Trim request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)
	setCORS(w, false)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
		if r.URL.Query().Get("debug") == "1" {
			writeJSON(w, http.StatusOK, s.diagnose(r.Context()))
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	case http.MethodPost:
	default:
		logger.Warnf("Invalid method for trim endpoint: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.Deps.Runner.Binary().Check(); err != nil {
		logger.Errorf("Trim rejected: %v", err)
		http.Error(w, encoder.ErrUnavailable.Error(), http.StatusInternalServerError)
		return
	}

	sc, err := s.Deps.NewScratch()
	if err != nil {
		logger.Errorf("Failed to allocate scratch: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("X-Job-Id", sc.ID)

	r.Body = http.MaxBytesReader(w, r.Body, s.Config.MaxUploadBytes)
	req, err := readTrimForm(r, sc)
	if err != nil {
		sc.Cleanup()
		logger.Warnf("Invalid trim upload for job %s: %v", sc.ID, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := job.RunTrim(r.Context(), s.Deps, sc, req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	defer res.Cleanup()

	sendVideo(w, res, "quran-reel.mp4", true)
}

// readTrimForm streams the multipart body: the video part goes straight
// to scratch, the numeric fields are read into the request.
func readTrimForm(r *http.Request, sc *job.Scratch) (models.TrimRequest, error) {
	var req models.TrimRequest
	mr, err := r.MultipartReader()
	if err != nil {
		return req, fmt.Errorf("invalid multipart body: %w", err)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return req, fmt.Errorf("invalid multipart body: %w", err)
		}

		switch part.FormName() {
		case "video":
			if part.FileName() == "" {
				part.Close()
				continue
			}
			req.InputPath = sc.Path("input" + uploadExt(part.FileName()))
			err = saveUpload(req.InputPath, part)
		case "start":
			req.Start, err = readSeconds(part)
		case "duration":
			req.Duration, err = readSeconds(part)
		case "fps":
			var v string
			if v, err = readField(part); err == nil && v != "" {
				fps, perr := strconv.ParseFloat(v, 64)
				if perr != nil {
					fps = math.NaN()
				}
				req.FPS = encoder.ClampFPS(fps)
			}
		}
		part.Close()
		if err != nil {
			return req, err
		}
	}

	if req.InputPath == "" {
		return req, errMissingVideo
	}
	return req, nil
}

func saveUpload(path string, src io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return fmt.Errorf("upload failed: %w", err)
	}
	return f.Close()
}

func readField(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxFieldBytes))
	if err != nil {
		return "", fmt.Errorf("invalid multipart body: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// readSeconds parses a time field leniently: missing, negative or
// unparseable values mean 0.
func readSeconds(r io.Reader) (float64, error) {
	v, err := readField(r)
	if err != nil || v == "" {
		return 0, err
	}
	f, perr := strconv.ParseFloat(v, 64)
	if perr != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, nil
	}
	return f, nil
}

// uploadExt keeps a short alphanumeric extension of the client file name.
func uploadExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// sendVideo streams a finished job's output as an attachment.
func sendVideo(w http.ResponseWriter, res *job.Result, filename string, noStore bool) {
	f, err := os.Open(res.OutputPath)
	if err != nil {
		logger.Errorf("Failed to open output for job %s: %v", res.ID, err)
		http.Error(w, "Failed to stream output", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	h := w.Header()
	h.Set("X-Job-Id", res.ID)
	h.Set("Content-Type", "video/mp4")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	h.Set("Content-Length", strconv.FormatInt(res.Size, 10))
	if noStore {
		h.Set("Cache-Control", "no-store")
	}
	w.WriteHeader(http.StatusOK)
	if n, err := io.Copy(w, f); err != nil {
		logger.Warnf("Streaming job %s stopped after %d bytes: %v", res.ID, n, err)
	}
}
