package routes

import (
	"net/http"

	"quranreel/config"
	"quranreel/credentials"
	"quranreel/job"
	writerbackends "quranreel/writerBackends"
)

// Server holds what the handlers need. It is built once in main.
type Server struct {
	Deps   *job.Deps
	Config config.Config
	Creds  *credentials.Store // optional
}

// Routes returns the mux with every endpoint registered.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/trim", s.TrimHandler)
	mux.HandleFunc("/api/export-clip", s.TrimHandler)
	mux.HandleFunc("/api/export", s.ComposeHandler)
	mux.HandleFunc("/health", s.HealthHandler)
	mux.HandleFunc("/version", VersionHandler)

	mux.HandleFunc("/jobs", s.requireAdmin(s.JobsHandler))
	mux.HandleFunc("/status", s.requireAdmin(s.JobStatusHandler))
	mux.HandleFunc("/cancel", s.requireAdmin(s.CancelJobHandler))
	mux.HandleFunc("/failures", s.requireAdmin(s.FailureQueryHandler))
	mux.HandleFunc("/failures/list", s.requireAdmin(s.FailureListHandler))
	mux.HandleFunc("/success", s.requireAdmin(s.SuccessQueryHandler))
	mux.HandleFunc("/success/list", s.requireAdmin(s.SuccessListHandler))
	mux.HandleFunc("/credentials", s.requireAdmin(s.RegisterCredentialsHandler))

	if s.Config.ArchiveBackend == writerbackends.DirectServe {
		mux.Handle("/files/", http.StripPrefix("/files/", http.FileServer(http.Dir(s.Config.ServeDir))))
	}
	return mux
}
