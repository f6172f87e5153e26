// Package corelib is the native implementation of the "core" base module:
// the small host-function surface dynamic modules are expected to call first.
// Symbols beyond these exist only through metadata patching and run
// interpreted.
package corelib

import (
	"log/slog"
	"time"

	lua "github.com/Shopify/go-lua"

	"github.com/vk/hotbootgo/internal/activate"
)

// libraryName is the global table dynamic code reaches this module through.
const libraryName = "core"

// Module implements the activate.Library interface for this package.
type Module struct{}

// note logs a message from dynamic code into the host log.
func note(l *lua.State) int {
	msg, _ := l.ToString(1)
	slog.Info("Dynamic module note.", "message", msg)
	return 0
}

// now pushes the current unix time in seconds.
func now(l *lua.State) int {
	l.PushInteger(int(time.Now().Unix()))
	return 1
}

// Register registers the library's native symbols with the host registry.
func (m *Module) Register(r *activate.Registry) {
	r.RegisterLibrary(libraryName, map[string]activate.HostFunc{
		"note": note,
		"now":  now,
	})
}
