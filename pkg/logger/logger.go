// Package logger provides a colored slog handler for terminal output.
// Warnings render yellow, errors red, and snapshot/persistence messages
// green so data-lifecycle events stand out in a scrolling log.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiGray   = "\033[90m"
)

// greenMarkers highlight messages about data being saved or restored.
var greenMarkers = []string{"persist", "saved", "loaded", "snapshot"}

// Options configures a Handler.
type Options struct {
	Level   slog.Level
	NoColor bool
}

// Handler is a human-oriented slog.Handler. It is not meant for log
// aggregation; use a JSON handler there.
type Handler struct {
	opts  Options
	attrs []slog.Attr
	group string

	mu *sync.Mutex
	w  io.Writer
}

// NewHandler builds a colored handler writing to w.
func NewHandler(w io.Writer, opts Options) *Handler {
	return &Handler{opts: opts, mu: &sync.Mutex{}, w: w}
}

// NewLogger wraps a colored handler in a slog.Logger.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	return slog.New(NewHandler(w, opts))
}

// NewDefaultLogger returns a colored logger on stderr at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return NewLogger(os.Stderr, Options{Level: level})
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	color := h.colorFor(r)
	if color != "" {
		b.WriteString(color)
	}

	b.WriteString(r.Time.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr) bool {
		if a.Equal(slog.Attr{}) {
			return true
		}
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)

	if color != "" {
		b.WriteString(ansiReset)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func (h *Handler) colorFor(r slog.Record) string {
	if h.opts.NoColor {
		return ""
	}
	switch {
	case r.Level >= slog.LevelError:
		return ansiRed
	case r.Level >= slog.LevelWarn:
		return ansiYellow
	case r.Level < slog.LevelInfo:
		return ansiGray
	}
	msg := strings.ToLower(r.Message)
	for _, marker := range greenMarkers {
		if strings.Contains(msg, marker) {
			return ansiGreen
		}
	}
	return ""
}
