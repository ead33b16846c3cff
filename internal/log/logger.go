// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package log wraps slog with a component-scoped logger and the field names
// shared by the pipeline stages.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldFile       = "file"
	FieldEngine     = "engine"
	FieldPage       = "page"
	FieldState      = "state"
	FieldConfidence = "confidence"
	FieldQuality    = "quality_score"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
)

// Component names.
const (
	ComponentPipeline   = "pipeline"
	ComponentOCR        = "ocr"
	ComponentPreprocess = "preprocess"
	ComponentRasterize  = "rasterize"
	ComponentStore      = "store"
	ComponentPublish    = "publish"
)

// Logger is a slog.Logger that stamps every record with its component.
type Logger struct {
	*slog.Logger
	component string
}

// New creates a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(h)}
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithComponent returns a child logger tagged with component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(FieldComponent, component),
		component: component,
	}
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
