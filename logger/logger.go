// logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) hclogLevel() hclog.Level {
	switch l {
	case DEBUG:
		return hclog.Debug
	case WARN:
		return hclog.Warn
	case ERROR:
		return hclog.Error
	default:
		return hclog.Info
	}
}

// ParseLevel maps a level name ("debug", "info", "warn", "error") to a LogLevel.
// Unknown names fall back to INFO.
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

var (
	// root backs the package-level functions and skips their frame when
	// reporting the caller; base backs Named loggers, which are called directly.
	root hclog.InterceptLogger
	base hclog.InterceptLogger
	file *os.File
	mu   sync.Mutex
)

func newLogger(out io.Writer, offset int) hclog.InterceptLogger {
	return hclog.NewInterceptLogger(&hclog.LoggerOptions{
		Name:                     "quranreel",
		Level:                    hclog.Debug,
		Output:                   out,
		IncludeLocation:          true,
		AdditionalLocationOffset: offset,
		Color:                    hclog.AutoColor,
		TimeFormat:               "2006/01/02 15:04:05",
	})
}

func fileSink(f io.Writer, offset int) hclog.SinkAdapter {
	return hclog.NewSinkAdapter(&hclog.LoggerOptions{
		Level:                    hclog.Debug,
		Output:                   f,
		IncludeLocation:          true,
		AdditionalLocationOffset: offset,
		Color:                    hclog.ColorOff,
	})
}

func setOutput(out io.Writer) {
	root = newLogger(out, 1)
	base = newLogger(out, 0)
}

// current returns the root logger, creating a console logger if Init was never called
func current() hclog.InterceptLogger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		setOutput(os.Stdout)
	}
	return root
}

func currentBase() hclog.InterceptLogger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		setOutput(os.Stdout)
	}
	return base
}

// Init initializes the logger with optional file and console output.
// If filename is empty, logs only to console.
// If console is false, logs only to file.
func Init(filename string, console bool) error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}

	if filename == "" && !console {
		return fmt.Errorf("no output destination specified")
	}

	var out io.Writer = io.Discard
	if console {
		out = os.Stdout
	}
	setOutput(out)
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		root.RegisterSink(fileSink(f, 1))
		base.RegisterSink(fileSink(f, 0))
	}
	return nil
}

// SetLevel sets the minimum log level (DEBUG, INFO, WARN, ERROR)
func SetLevel(level LogLevel) {
	current().SetLevel(level.hclogLevel())
	currentBase().SetLevel(level.hclogLevel())
}

// Close closes the log file if one is open
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
}

// Named returns a structured logger for one component or job.
// Key/value pairs are attached to every line it writes.
func Named(name string, args ...interface{}) hclog.Logger {
	l := currentBase().Named(name)
	if len(args) > 0 {
		l = l.With(args...)
	}
	return l
}

func Debug(v ...interface{}) { current().Debug(fmt.Sprint(v...)) }

func Debugf(format string, v ...interface{}) { current().Debug(fmt.Sprintf(format, v...)) }

func Info(v ...interface{}) { current().Info(fmt.Sprint(v...)) }

func Infof(format string, v ...interface{}) { current().Info(fmt.Sprintf(format, v...)) }

func Warn(v ...interface{}) { current().Warn(fmt.Sprint(v...)) }

func Warnf(format string, v ...interface{}) { current().Warn(fmt.Sprintf(format, v...)) }

func Error(v ...interface{}) { current().Error(fmt.Sprint(v...)) }

func Errorf(format string, v ...interface{}) { current().Error(fmt.Sprintf(format, v...)) }

// Fatal logs an error message and exits the program
func Fatal(v ...interface{}) {
	current().Error(fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs a formatted error message and exits the program
func Fatalf(format string, v ...interface{}) {
	current().Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}
