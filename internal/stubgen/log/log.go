// Package log configures the process-wide slog handler and recovers panics
// at goroutine boundaries.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
)

// Setup installs a text handler on stderr. Only the first call has effect.
func Setup(debug bool) {
	SetupWriter(os.Stderr, debug)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, debug bool) {
	initOnce.Do(func() {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}

		handler := slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: debug,
		})

		slog.SetDefault(slog.New(handler))
		initialized.Store(true)
	})
}

// Initialized reports whether Setup has installed the handler.
func Initialized() bool {
	return initialized.Load()
}

// RecoverPanic logs a recovered panic with its stack and runs cleanup.
// It must be called directly by a deferred statement.
func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		if Initialized() {
			slog.Error(fmt.Sprintf("Panic in %s", name),
				"panic", r,
				"stack", string(debug.Stack()))
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
