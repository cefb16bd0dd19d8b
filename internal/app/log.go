package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// sink is one destination of the handler with its own minimum level.
type sink struct {
	w     io.Writer
	level slog.Level
}

// fortressHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
//
// and writes each line to every sink whose level the record reaches.
type fortressHandler struct {
	sinks []sink
	opID  string
	attrs []slog.Attr
}

func (h *fortressHandler) Enabled(_ context.Context, level slog.Level) bool {
	for _, s := range h.sinks {
		if level >= s.level {
			return true
		}
	}
	return false
}

func (h *fortressHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	fmt.Fprintf(&buf, "%s\t%s\t%s\t%s", ts, r.Level.String(), h.opID, r.Message)

	// Write pre-set attrs.
	for _, a := range h.attrs {
		fmt.Fprintf(&buf, "\t%s=%v", a.Key, a.Value)
	}

	// Write per-record attrs.
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&buf, "\t%s=%v", a.Key, a.Value)
		return true
	})
	buf.WriteByte('\n')

	for _, s := range h.sinks {
		if r.Level < s.level {
			continue
		}
		if _, err := s.w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (h *fortressHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &fortressHandler{
		sinks: h.sinks,
		opID:  h.opID,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *fortressHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger that writes every record to
// logDir/fortress.log and warnings and errors to stderr. With verbose, stderr
// receives every record too.
// It returns the slog.Logger, the open log file (for cleanup), and any error.
func newLogger(logDir string, opID string, verbose bool) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "fortress.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	stderrLevel := slog.LevelWarn
	if verbose {
		stderrLevel = slog.LevelDebug
	}
	handler := &fortressHandler{
		sinks: []sink{
			{w: f, level: slog.LevelDebug},
			{w: os.Stderr, level: stderrLevel},
		},
		opID: opID,
	}
	return slog.New(handler), f, nil
}

// slogAdapter wraps *slog.Logger to satisfy the fortress.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
