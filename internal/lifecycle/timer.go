// Package lifecycle runs the post-activation countdown and terminates the
// process. Once entered, the countdown always runs to termination; there is
// no cancellation path.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/vk/hotbootgo/internal/ctxlog"
)

// SentinelName is the fixed file name of the steady-state marker. External
// automation watches for it; this process never reads it back.
const SentinelName = "run.log"

// sentinelContent is the fixed two-byte marker payload.
const sentinelContent = "ok"

// sentinelPlatform is the one target platform that writes the marker.
const sentinelPlatform = "linux"

// Timer is the countdown state machine: Counting(n) down to Counting(1),
// then Terminated.
type Timer struct {
	remaining int
	sentinel  bool
	dir       string
	exit      func(int)
	entered   bool
}

// Option configures a Timer.
type Option func(*Timer)

// WithExit overrides the process-termination function. Tests use this to
// observe termination without exiting.
func WithExit(fn func(int)) Option {
	return func(t *Timer) { t.exit = fn }
}

// WithSentinel forces the sentinel write on or off regardless of platform.
func WithSentinel(enabled bool) Option {
	return func(t *Timer) { t.sentinel = enabled }
}

// WithSentinelDir overrides the directory the sentinel is written into.
func WithSentinelDir(dir string) Option {
	return func(t *Timer) { t.dir = dir }
}

// New creates a Timer counting down from start. The sentinel defaults to
// enabled only on the gated platform, written into the working directory.
func New(start int, opts ...Option) *Timer {
	t := &Timer{
		remaining: start,
		sentinel:  runtime.GOOS == sentinelPlatform,
		dir:       ".",
		exit:      os.Exit,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Remaining returns the current count.
func (t *Timer) Remaining() int {
	return t.remaining
}

// Enter starts the state machine: the sentinel is written before the first
// tick, on the gated platform only.
func (t *Timer) Enter(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	t.entered = true

	if !t.sentinel {
		logger.Debug("Sentinel write skipped on this platform.")
		return nil
	}

	path := filepath.Join(t.dir, SentinelName)
	if err := os.WriteFile(path, []byte(sentinelContent), 0o644); err != nil {
		return fmt.Errorf("write sentinel %s: %w", path, err)
	}
	logger.Info("Sentinel written.", "path", path)
	return nil
}

// Tick advances the countdown by one time unit, logging the remaining count.
// It returns true once the state machine reached Terminated, after invoking
// the exit function. A start value of zero terminates on the first tick
// without emitting any count.
func (t *Timer) Tick(ctx context.Context) bool {
	logger := ctxlog.FromContext(ctx)

	if t.remaining <= 0 {
		logger.Info("Countdown finished, terminating process.")
		t.exit(0)
		return true
	}

	logger.Info("Shutting down.", "remaining", t.remaining)
	t.remaining--
	if t.remaining == 0 {
		logger.Info("Countdown finished, terminating process.")
		t.exit(0)
		return true
	}
	return false
}
