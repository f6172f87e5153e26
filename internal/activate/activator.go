// Package activate loads the dynamically fetched code module into the running
// process and invokes its entry point. The module is a Lua chunk executed in
// an embedded VM; the patched base-module symbols are bound into the VM
// before the chunk runs, so dynamic code can call into them.
package activate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	lua "github.com/Shopify/go-lua"

	"github.com/vk/hotbootgo/internal/ctxlog"
	"github.com/vk/hotbootgo/internal/metadata"
	"github.com/vk/hotbootgo/internal/store"
)

// The dynamic module must expose a global table named Entry carrying a
// parameterless function named Start.
const (
	entryName = "Entry"
	startName = "Start"
)

var (
	// ErrAlreadyActivated is returned on a second activation attempt.
	ErrAlreadyActivated = errors.New("dynamic module already activated")
	// ErrMissingResource is returned when the module bytes were never fetched.
	ErrMissingResource = errors.New("module resource missing from store")
	// ErrMissingResident is returned in inline mode when no resident chunk
	// was registered under the requested name.
	ErrMissingResident = errors.New("no resident chunk registered")
	// ErrEntryNotFound is returned when the module has no Entry table.
	ErrEntryNotFound = errors.New("entry table not found in module")
	// ErrStartNotFound is returned when Entry has no Start function.
	ErrStartNotFound = errors.New("start function not found on entry table")
)

// Mode selects how the activator obtains the module chunk.
type Mode int

const (
	// ModeRemote loads the chunk from bytes in the resource store.
	ModeRemote Mode = iota
	// ModeInline locates a chunk already resident in the process by name.
	// Used by development deployments where the module ships with the build.
	ModeInline
)

// Activator owns the process's single dynamic-module handle.
type Activator struct {
	store    *store.Store
	registry *Registry
	table    *metadata.SymbolTable

	resident map[string]string

	state     *lua.State
	activated bool
}

// NewActivator creates an Activator. The symbol table is consulted at
// activation time, so patching must be complete before Activate is called.
func NewActivator(st *store.Store, registry *Registry, table *metadata.SymbolTable) *Activator {
	return &Activator{
		store:    st,
		registry: registry,
		table:    table,
		resident: make(map[string]string),
	}
}

// RegisterResident makes a chunk available to inline-mode activation under
// the given resource name.
func (a *Activator) RegisterResident(name, source string) {
	a.resident[name] = source
}

// Activated reports whether the entry point has been invoked.
func (a *Activator) Activated() bool {
	return a.activated
}

// Activate loads the module exactly once and invokes Entry.Start with no
// arguments. Every failure here is fatal to the bootstrap.
func (a *Activator) Activate(ctx context.Context, name string, mode Mode) error {
	logger := ctxlog.FromContext(ctx)

	if a.activated {
		return ErrAlreadyActivated
	}

	source, err := a.chunk(name, mode)
	if err != nil {
		return err
	}

	l := lua.NewState()
	lua.OpenLibraries(l)
	a.bindBaseModules(l, logger)

	if err := lua.LoadBuffer(l, source, name, ""); err != nil {
		return fmt.Errorf("load module %q: %w", name, err)
	}
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("run module %q: %w", name, err)
	}

	l.Global(entryName)
	if l.TypeOf(-1) != lua.TypeTable {
		l.Pop(1)
		return fmt.Errorf("module %q: %w", name, ErrEntryNotFound)
	}
	l.Field(-1, startName)
	if l.TypeOf(-1) != lua.TypeFunction {
		l.Pop(2)
		return fmt.Errorf("module %q: %w", name, ErrStartNotFound)
	}

	logger.Info("Invoking module entry point.", "module", name, "entry", entryName+"."+startName)
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		l.Pop(1)
		return fmt.Errorf("invoke %s.%s: %w", entryName, startName, err)
	}
	l.Pop(1)

	a.state = l
	a.activated = true
	logger.Info("Dynamic module activated.", "module", name)
	return nil
}

// chunk resolves the module source for the requested deployment mode.
func (a *Activator) chunk(name string, mode Mode) (string, error) {
	if mode == ModeInline {
		source, ok := a.resident[name]
		if !ok {
			return "", fmt.Errorf("module %q: %w", name, ErrMissingResident)
		}
		return source, nil
	}
	data, ok := a.store.Get(name)
	if !ok {
		return "", fmt.Errorf("module %q: %w", name, ErrMissingResource)
	}
	return string(data), nil
}

// bindBaseModules exposes every base module as a global table in the VM.
// Registered host libraries are precompiled code shipped with the build, so
// their native symbols are always bound; patching only adds symbols on top.
// A patched symbol without a native implementation falls back to the
// interpreted dispatcher. Module names become globals verbatim: a dotted
// name like System.Core is reachable from Lua as _G["System.Core"], not as a
// nested table.
func (a *Activator) bindBaseModules(l *lua.State, logger *slog.Logger) {
	for _, module := range a.baseModuleNames() {
		l.NewTable()
		bound := 0
		for _, name := range a.registry.Symbols(module) {
			fn, _ := a.registry.Lookup(module, name)
			l.PushGoFunction(fn)
			l.SetField(-2, name)
			bound++
		}
		for _, sym := range a.table.Symbols(module) {
			if _, native := a.registry.Lookup(module, sym.Name); native {
				continue
			}
			l.PushGoFunction(interpretedStub(logger, module, sym.Name))
			l.SetField(-2, sym.Name)
			bound++
		}
		l.SetGlobal(module)
		logger.Debug("Base module bound.", "module", module, "symbols", bound)
	}
}

// baseModuleNames is the sorted union of registered libraries and patched
// modules.
func (a *Activator) baseModuleNames() []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, module := range a.registry.Modules() {
		seen[module] = true
		names = append(names, module)
	}
	for _, module := range a.table.Modules() {
		if !seen[module] {
			names = append(names, module)
		}
	}
	sort.Strings(names)
	return names
}

// interpretedStub is the fallback for symbols that have no precompiled
// implementation. It logs the call and returns no results.
func interpretedStub(logger *slog.Logger, module, symbol string) HostFunc {
	return func(l *lua.State) int {
		logger.Debug("Interpreted symbol invoked.", "module", module, "symbol", symbol)
		return 0
	}
}
