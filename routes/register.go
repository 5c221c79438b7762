package routes

import (
	"encoding/json"
	"net/http"

	"quranreel/logger"
	writerbackends "quranreel/writerBackends"
)

// RegisterCredentialsRequest is the body of POST /credentials.
type RegisterCredentialsRequest struct {
	Backend    string            `json:"backend"`
	AccessInfo map[string]string `json:"accessInfo"`
}

// RegisterCredentialsHandler stores an archive credential set and returns
// the key to reference it by in REEL_ARCHIVE_CREDENTIALS.
func (s *Server) RegisterCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.Creds == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Credentials store not available")
		return
	}

	var body RegisterCredentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := writerbackends.Validate(body.Backend, body.AccessInfo); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := s.Creds.Register(body.AccessInfo)
	if err != nil {
		logger.Errorf("Failed to store credentials: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to store credentials")
		return
	}
	logger.Infof("Registered %s credentials under key %s", body.Backend, key)
	writeJSON(w, http.StatusCreated, map[string]string{"key": key, "backend": body.Backend})
}
