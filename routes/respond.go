package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"quranreel/logger"
	"quranreel/models"
)

// setCORS allows any origin. Admin endpoints also accept Authorization.
func setCORS(w http.ResponseWriter, admin bool) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	if admin {
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		return
	}
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a job error to its HTTP status: bad input is the
// client's fault, everything else is ours.
func statusFor(err error) int {
	var verr *models.ValidationError
	var tooLarge *http.MaxBytesError
	if errors.As(err, &verr) || errors.As(err, &tooLarge) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
