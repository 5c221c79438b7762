package routes

import (
	"net/http"

	"quranreel/logger"
)

// JobStatusHandler returns the state of one job by id
func (s *Server) JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Job status request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		logger.Warnf("Invalid method for status endpoint: %s", r.Method)
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		logger.Warn("Missing id parameter in status request")
		writeJSONError(w, http.StatusBadRequest, "Missing id parameter")
		return
	}

	entry, exists := s.Deps.Registry.Get(id)
	if !exists {
		logger.Warnf("Job not found: %s", id)
		writeJSONError(w, http.StatusNotFound, "Job "+id+" not found")
		return
	}

	logger.Debugf("Job status: id=%s, state=%s", id, entry.State)
	writeJSON(w, http.StatusOK, entry)
}

// JobsHandler lists the jobs the registry still remembers
func (s *Server) JobsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	jobs := s.Deps.Registry.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(jobs), "jobs": jobs})
}
