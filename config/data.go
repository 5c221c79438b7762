package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting resolved once at process startup.
// Handlers and jobs receive it by value and never re-read the environment.
type Config struct {
	Addr       string
	DataDir    string
	ScratchDir string
	ServeDir   string

	// FFmpegEnv is the raw FFMPEG_BIN value, FFmpegBin the resolved binary path.
	FFmpegEnv string
	FFmpegBin string

	TailDuration    time.Duration
	MaxDimension    int
	MaxUploadBytes  int64
	MaxComposeBytes int64
	RenderWorkers   int
	MaxEncodes      int

	FontBold    string
	FontRegular string

	AudioAllowedHosts []string
	AudioTimeout      time.Duration

	ScratchMaxAge time.Duration
	HistoryMaxAge time.Duration

	AdminSecret string

	ArchiveBackend     string
	ArchiveCredentials string
	ArchivePrefix      string

	LogLevel string
	LogFile  string
}

// Load reads .env (best-effort) and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	dataDir := GetDataDir()
	return Config{
		Addr:       getenv("REEL_ADDR", ":8080"),
		DataDir:    dataDir,
		ScratchDir: getenv("REEL_SCRATCH_DIR", filepath.Join(os.TempDir(), "quranreel")),
		ServeDir:   GetDirectServeBaseDir(),

		FFmpegEnv: os.Getenv("FFMPEG_BIN"),

		TailDuration:    getSeconds("REEL_TAIL_SECONDS", 5*time.Second),
		MaxDimension:    getInt("REEL_MAX_DIMENSION", 4096),
		MaxUploadBytes:  int64(getInt("REEL_MAX_UPLOAD_BYTES", 1<<30)),
		MaxComposeBytes: int64(getInt("REEL_MAX_COMPOSE_BYTES", 100<<20)),
		RenderWorkers:   getInt("REEL_RENDER_WORKERS", runtime.NumCPU()),
		MaxEncodes:      getInt("REEL_MAX_ENCODES", runtime.NumCPU()),

		FontBold:    os.Getenv("REEL_FONT_BOLD"),
		FontRegular: os.Getenv("REEL_FONT_REGULAR"),

		AudioAllowedHosts: getList("REEL_AUDIO_ALLOWED_HOSTS"),
		AudioTimeout:      getDuration("REEL_AUDIO_TIMEOUT", 2*time.Minute),

		ScratchMaxAge: getDuration("REEL_SCRATCH_MAX_AGE", time.Hour),
		HistoryMaxAge: getDuration("REEL_HISTORY_MAX_AGE", 30*24*time.Hour),

		AdminSecret: os.Getenv("REEL_ADMIN_SECRET"),

		ArchiveBackend:     os.Getenv("REEL_ARCHIVE_BACKEND"),
		ArchiveCredentials: os.Getenv("REEL_ARCHIVE_CREDENTIALS"),
		ArchivePrefix:      getenv("REEL_ARCHIVE_PREFIX", "reels"),

		LogLevel: getenv("REEL_LOG_LEVEL", "info"),
		LogFile:  os.Getenv("REEL_LOG_FILE"),
	}
}

// GetDataDir returns the directory holding the Pebble databases.
// Priority: REEL_DATA_DIR environment variable > "./data" default
func GetDataDir() string {
	return getenv("REEL_DATA_DIR", "./data")
}

// HistoryDBPath returns the path of the job history database.
// Path: {DataDir}/history.db
func (c Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// CredentialsDBPath returns the path of the archive credentials database.
// Path: {DataDir}/credentials.db
func (c Config) CredentialsDBPath() string {
	return filepath.Join(c.DataDir, "credentials.db")
}

// GetDirectServeBaseDir returns the base directory for the directServe archive backend.
// Configurable via REEL_SERVE_DIR for server administrators, never by end users.
func GetDirectServeBaseDir() string {
	return getenv("REEL_SERVE_DIR", "./serve")
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getSeconds(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return time.Duration(f * float64(time.Second))
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getList(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
