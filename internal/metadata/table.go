package metadata

import "sort"

// Outcome is the per-module result code of a metadata merge. The runtime
// rejects a second merge of the same module; the bootstrap only logs the code.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeBadImage
	OutcomeUnsupportedPolicy
	OutcomeAlreadyPatched
)

// String returns the log name of an outcome code.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeBadImage:
		return "bad_image"
	case OutcomeUnsupportedPolicy:
		return "unsupported_policy"
	case OutcomeAlreadyPatched:
		return "already_patched"
	}
	return "unknown"
}

// SymbolTable accumulates the merged symbol sets of every patched base
// module. The activator binds these symbols into the dynamic-module runtime
// before the entry point runs.
type SymbolTable struct {
	modules map[string]map[string]Symbol
}

// NewSymbolTable creates an empty SymbolTable.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{modules: make(map[string]map[string]Symbol)}
}

// Merge applies one decoded image to the table under the superset policy and
// returns the outcome code. A module may be merged at most once.
func (t *SymbolTable) Merge(img *Image) Outcome {
	if img.Policy != PolicySuperset {
		return OutcomeUnsupportedPolicy
	}
	if _, ok := t.modules[img.Module]; ok {
		return OutcomeAlreadyPatched
	}
	symbols := make(map[string]Symbol, len(img.Symbols))
	for _, sym := range img.Symbols {
		symbols[sym.Name] = sym
	}
	t.modules[img.Module] = symbols
	return OutcomeOK
}

// Modules returns the names of all patched modules in sorted order.
func (t *SymbolTable) Modules() []string {
	names := make([]string, 0, len(t.modules))
	for name := range t.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Symbols returns the merged symbols of one module in sorted name order.
func (t *SymbolTable) Symbols(module string) []Symbol {
	symbols := make([]Symbol, 0, len(t.modules[module]))
	for _, sym := range t.modules[module] {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Name < symbols[j].Name })
	return symbols
}

// Patched reports whether a module's metadata has been merged.
func (t *SymbolTable) Patched(module string) bool {
	_, ok := t.modules[module]
	return ok
}
