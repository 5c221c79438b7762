package routes

import (
	"errors"
	"net/http"

	"quranreel/job"
	"quranreel/logger"
)

// CancelJobHandler cancels a running job by id
func (s *Server) CancelJobHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Cancel job request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodDelete {
		logger.Warnf("Invalid method for cancel endpoint: %s", r.Method)
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		logger.Warn("Missing id parameter in cancel request")
		writeJSONError(w, http.StatusBadRequest, "Missing id parameter")
		return
	}

	logger.Infof("Attempting to cancel job: %s", id)
	if err := s.Deps.Registry.Cancel(id); err != nil {
		logger.Errorf("Failed to cancel job %s: %v", id, err)
		if errors.Is(err, job.ErrJobNotFound) {
			writeJSONError(w, http.StatusNotFound, err.Error())
		} else {
			writeJSONError(w, http.StatusConflict, err.Error())
		}
		return
	}

	logger.Infof("Job cancelled successfully: %s", id)
	w.WriteHeader(http.StatusNoContent)
}
