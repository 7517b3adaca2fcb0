// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn or error. Empty means info.
	Level string
	// JSON selects the JSON handler instead of the text handler.
	JSON bool

	// File tees log records into a rotating file when set.
	File       string
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New builds a logger writing to out, and to opts.File if set. The returned
// closer releases the log file and is never nil.
func New(out io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotator, err := newRotator(opts)
		if err != nil {
			// Keep logging to out; the file is optional.
			fmt.Fprintf(out, "logger_fallback: %v\n", err)
		} else {
			out = io.MultiWriter(out, rotator)
			closer = rotator
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(handler), closer, nil
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(out io.Writer, opts Options) (io.Closer, error) {
	logger, closer, err := New(out, opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

func newRotator(opts Options) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   opts.Compress,
		LocalTime:  true,
	}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
