package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/hotbootgo/internal/ctxlog"
	"github.com/vk/hotbootgo/internal/store"
)

// ErrMissingResource is returned when a manifest entry was never fetched.
// Unlike a bad image, a missing resource aborts the bootstrap.
var ErrMissingResource = errors.New("resource missing from store")

// Patcher walks the base-module manifest in order and merges each stored
// metadata image into the shared symbol table.
type Patcher struct {
	store    *store.Store
	table    *SymbolTable
	outcomes map[string]Outcome
}

// NewPatcher creates a Patcher merging into the given table.
func NewPatcher(st *store.Store, table *SymbolTable) *Patcher {
	return &Patcher{store: st, table: table, outcomes: make(map[string]Outcome)}
}

// PatchOne processes a single manifest entry: reads its bytes from the store,
// decodes the image, merges it, and records the outcome. A decode or merge
// problem logs the outcome code and does not abort the manifest iteration;
// only a missing resource is fatal.
func (p *Patcher) PatchOne(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)

	data, ok := p.store.Get(name)
	if !ok {
		return fmt.Errorf("metadata patch %q: %w", name, ErrMissingResource)
	}

	img, err := DecodeImage(data)
	if err != nil {
		p.outcomes[name] = OutcomeBadImage
		logger.Error("Metadata patch failed.", "name", name, "outcome", OutcomeBadImage, "error", err)
		return nil
	}

	outcome := p.table.Merge(img)
	p.outcomes[name] = outcome
	if outcome != OutcomeOK {
		logger.Error("Metadata merge rejected.", "name", name, "module", img.Module, "outcome", outcome)
		return nil
	}

	logger.Info("Metadata patched.", "name", name, "module", img.Module, "symbols", len(img.Symbols), "outcome", outcome)
	return nil
}

// Outcome returns the recorded outcome for a manifest entry.
func (p *Patcher) Outcome(name string) (Outcome, bool) {
	o, ok := p.outcomes[name]
	return o, ok
}
