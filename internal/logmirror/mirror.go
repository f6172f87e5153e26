// Package logmirror keeps a bounded in-memory mirror of recent log output.
// It backs the on-screen trace surface: a wrapping slog.Handler that retains
// the last N formatted lines while forwarding every record to the real
// handler. Purely cosmetic; losing lines to the bound is expected.
package logmirror

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// buffer is the shared bounded line store behind a Handler and its
// WithAttrs/WithGroup derivatives.
type buffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func (b *buffer) append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
}

// Handler mirrors records into a bounded buffer and forwards them unchanged.
type Handler struct {
	inner slog.Handler
	buf   *buffer
	attrs []slog.Attr
}

// New wraps inner with a mirror retaining at most max lines.
func New(inner slog.Handler, max int) *Handler {
	if max < 1 {
		max = 1
	}
	return &Handler{inner: inner, buf: &buffer{max: max}}
}

// Enabled defers to the wrapped handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle formats the record into the mirror, then forwards it.
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	var sb strings.Builder
	sb.WriteString(rec.Level.String())
	sb.WriteString(" ")
	sb.WriteString(rec.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
	}
	rec.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	})
	h.buf.append(sb.String())
	return h.inner.Handle(ctx, rec)
}

// WithAttrs returns a Handler sharing the same mirror buffer.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &Handler{inner: h.inner.WithAttrs(attrs), buf: h.buf, attrs: merged}
}

// WithGroup returns a Handler sharing the same mirror buffer. Group nesting
// is flattened in the mirror; it only matters to the wrapped handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), buf: h.buf, attrs: h.attrs}
}

// Lines returns a snapshot of the mirrored lines, oldest first.
func (h *Handler) Lines() []string {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	out := make([]string, len(h.buf.lines))
	copy(out, h.buf.lines)
	return out
}
