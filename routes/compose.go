package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"quranreel/job"
	"quranreel/logger"
	"quranreel/models"
)

// ComposeHandler renders a verse video from a JSON clip list.
func (s *Server) ComposeHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Compose request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)
	setCORS(w, false)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		logger.Warnf("Invalid method for compose endpoint: %s", r.Method)
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := uuid.NewString()
	w.Header().Set("X-Job-Id", id)

	var req models.ComposeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.Config.MaxComposeBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusBadRequest, "Request body too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	res, err := job.RunCompose(r.Context(), s.Deps, id, req)
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	defer res.Cleanup()

	sendVideo(w, res, "quran-video.mp4", false)
}
