// Package log is the leveled application logger used by the CLI. Output is
// discarded unless a file or stdout is configured.
package log

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// Log level constants
const (
	LevelTrace = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// currentLevel holds the configured log level
var currentLevel = LevelInfo

// output is the writer behind the std logger, kept for slog handlers.
var output io.Writer = io.Discard

type MyLoggerOptions struct {
	// if we output to  stdout
	Stdout bool
	// Path of the file , if present log to it
	Path string
	// What level to log
	Level string
}

func ConfigureMyLogger(options *MyLoggerOptions) error {
	var writer io.Writer = io.Discard

	if options.Path != "" {
		logfile, err := os.OpenFile(options.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("opening log file %s: %w", options.Path, err)
		}
		if options.Stdout {
			writer = io.MultiWriter(logfile, os.Stdout)
		} else {
			writer = logfile
		}
	} else if options.Stdout {
		writer = os.Stdout
	}

	output = writer
	log.SetOutput(writer)
	currentLevel = ParseLevel(options.Level)
	return nil
}

// ParseLevel maps a level name to its constant. Unknown names are INFO.
func ParseLevel(level string) int {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// NewSlogger returns a structured logger writing where the std logger writes,
// at the configured level. Servers use it for per-request attributes.
func NewSlogger() *slog.Logger {
	level := slog.LevelInfo
	switch currentLevel {
	case LevelTrace, LevelDebug:
		level = slog.LevelDebug
	case LevelWarn:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))
}

// Trace logs a message at TRACE level
func Trace(format string, v ...interface{}) {
	if currentLevel <= LevelTrace {
		log.Printf("[TRACE] "+format, v...)
	}
}

// Debug logs a message at DEBUG level
func Debug(format string, v ...interface{}) {
	if currentLevel <= LevelDebug {
		log.Printf("[DEBUG] "+format, v...)
	}
}

// Info logs a message at INFO level
func Info(format string, v ...interface{}) {
	if currentLevel <= LevelInfo {
		log.Printf("[INFO] "+format, v...)
	}
}

// Warn logs a message at WARN level
func Warn(format string, v ...interface{}) {
	if currentLevel <= LevelWarn {
		log.Printf("[WARN] "+format, v...)
	}
}

// Error logs a message at ERROR level
func Error(format string, v ...interface{}) {
	if currentLevel <= LevelError {
		log.Printf("[ERROR] "+format, v...)
	}
}
