package routes

import (
	"net/http"

	"quranreel/history"
	"quranreel/logger"
)

// FailureQueryHandler returns the failure record of one job
func (s *Server) FailureQueryHandler(w http.ResponseWriter, r *http.Request) {
	s.queryRecord(w, r, "failure", s.history().GetFailure)
}

// SuccessQueryHandler returns the success record of one job
func (s *Server) SuccessQueryHandler(w http.ResponseWriter, r *http.Request) {
	s.queryRecord(w, r, "success", s.history().GetSuccess)
}

// FailureListHandler lists all failure records (for admin purposes)
func (s *Server) FailureListHandler(w http.ResponseWriter, r *http.Request) {
	s.listRecords(w, r, "failures", s.history().ListFailures)
}

// SuccessListHandler lists all success records (for admin purposes)
func (s *Server) SuccessListHandler(w http.ResponseWriter, r *http.Request) {
	s.listRecords(w, r, "successes", s.history().ListSuccesses)
}

type historyReader interface {
	GetFailure(string) (*history.Record, error)
	GetSuccess(string) (*history.Record, error)
	ListFailures() ([]history.Record, error)
	ListSuccesses() ([]history.Record, error)
}

// emptyHistory answers when no history store is configured.
type emptyHistory struct{}

func (emptyHistory) GetFailure(string) (*history.Record, error) { return nil, nil }
func (emptyHistory) GetSuccess(string) (*history.Record, error) { return nil, nil }
func (emptyHistory) ListFailures() ([]history.Record, error)     { return []history.Record{}, nil }
func (emptyHistory) ListSuccesses() ([]history.Record, error)    { return []history.Record{}, nil }

func (s *Server) history() historyReader {
	if s.Deps.History == nil {
		return emptyHistory{}
	}
	return s.Deps.History
}

func (s *Server) queryRecord(w http.ResponseWriter, r *http.Request, kind string, get func(string) (*history.Record, error)) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "id parameter required")
		return
	}

	record, err := get(id)
	if err != nil {
		logger.Errorf("Failed to query %s for job %s: %v", kind, id, err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if record == nil {
		writeJSONError(w, http.StatusNotFound, "No "+kind+" record for job "+id)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request, kind string, list func() ([]history.Record, error)) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	records, err := list()
	if err != nil {
		logger.Errorf("Failed to list %s: %v", kind, err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(records), kind: records})
}
