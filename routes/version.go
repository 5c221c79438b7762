package routes

import (
	"net/http"
	"runtime"
	"runtime/debug"

	"quranreel/logger"
)

// Build-time variables (injected by ldflags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// VersionResponse represents the version information response
type VersionResponse struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	GitCommit string `json:"git_commit,omitempty"`
}

// getVersion returns the application version (injected at build time)
func getVersion() string {
	return version
}

// buildInfo fills what ldflags did not set from the embedded VCS stamp.
func buildInfo() VersionResponse {
	resp := VersionResponse{
		Version:   version,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		GitCommit: gitCommit,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return resp
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if resp.GitCommit == "unknown" {
				resp.GitCommit = setting.Value
			}
		case "vcs.time":
			if resp.BuildTime == "unknown" {
				resp.BuildTime = setting.Value
			}
		}
	}
	return resp
}

// VersionHandler provides version information about the build
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Version request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		logger.Warnf("Invalid method for version endpoint: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := buildInfo()
	logger.Debugf("Version response: version=%s, go_version=%s, git_commit=%s",
		response.Version, response.GoVersion, response.GitCommit)
	writeJSON(w, http.StatusOK, response)
}
