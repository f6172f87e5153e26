package activate

import (
	"fmt"
	"log/slog"
	"sort"

	lua "github.com/Shopify/go-lua"
)

// HostFunc is the native implementation of one base-module symbol, exposed to
// the dynamic module through the runtime.
type HostFunc = lua.Function

// Library is the interface a host-library package implements to be registered.
type Library interface {
	Register(r *Registry)
}

// Registry holds the native symbol implementations of every precompiled base
// module for a single application instance.
type Registry struct {
	libraries map[string]map[string]HostFunc
}

// NewRegistry creates and initializes a new Registry instance.
func NewRegistry() *Registry {
	return &Registry{libraries: make(map[string]map[string]HostFunc)}
}

// RegisterLibrary registers the native functions of one base module.
func (r *Registry) RegisterLibrary(module string, funcs map[string]HostFunc) {
	if _, exists := r.libraries[module]; exists {
		panic(fmt.Sprintf("library with name '%s' already registered", module))
	}
	slog.Debug("Registering host library.", "module", module, "funcs", len(funcs))
	r.libraries[module] = funcs
}

// Lookup returns the native implementation of a symbol, if one exists.
func (r *Registry) Lookup(module, symbol string) (HostFunc, bool) {
	fn, ok := r.libraries[module][symbol]
	return fn, ok
}

// Modules returns the names of all registered libraries in sorted order.
func (r *Registry) Modules() []string {
	names := make([]string, 0, len(r.libraries))
	for name := range r.libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Symbols returns the native symbol names of one library in sorted order.
func (r *Registry) Symbols(module string) []string {
	names := make([]string, 0, len(r.libraries[module]))
	for name := range r.libraries[module] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
