// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

const fileName = "keyoverlay.log"

var (
	mu      sync.Mutex
	root    = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	logFile *os.File
)

// Options controls where log lines go.
type Options struct {
	// Level is a zerolog level name ("debug", "info", ...). Empty means info.
	Level string
	// Dir, when set, receives an append-only log file next to the console output.
	Dir string
	// Console disables stderr output when false.
	Console bool
}

// Init replaces the root logger. It is safe to call more than once; the
// previous log file is closed.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var writers []io.Writer
	if opts.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(opts.Dir, fileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        f,
			TimeFormat: "2006-01-02 15:04:05",
			NoColor:    true,
		})
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	root = zerolog.New(out).Level(level).With().Timestamp().Int("pid", os.Getpid()).Logger()
	return nil
}

// Close flushes and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Root returns the current root logger.
func Root() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return root
}

// For returns a logger tagged with the given component name.
func For(component string) zerolog.Logger {
	return Root().With().Str("component", component).Logger()
}
