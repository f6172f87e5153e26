package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/hotbootgo/internal/ctxlog"
	"github.com/vk/hotbootgo/internal/store"
)

var (
	// ErrMissingResource is returned when the bundle bytes were never fetched.
	ErrMissingResource = errors.New("bundle resource missing from store")
	// ErrTemplateNotFound is returned when the bundle lacks the requested template.
	ErrTemplateNotFound = errors.New("template not found in bundle")
)

// Instantiator decodes one fetched bundle and spawns a single named object
// from it. Every failure here is fatal to the bootstrap.
type Instantiator struct {
	store *store.Store
	stage Stage
}

// NewInstantiator creates an Instantiator spawning onto the given stage.
func NewInstantiator(st *store.Store, stage Stage) *Instantiator {
	return &Instantiator{store: st, stage: stage}
}

// Instantiate decodes the bundle stored under resource, looks up template,
// and spawns one instance with the template's default placement.
func (i *Instantiator) Instantiate(ctx context.Context, resource, template string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	data, ok := i.store.Get(resource)
	if !ok {
		return "", fmt.Errorf("bundle %q: %w", resource, ErrMissingResource)
	}

	bundle, err := Decode(data)
	if err != nil {
		return "", fmt.Errorf("bundle %q: %w", resource, err)
	}

	tpl, ok := bundle.Template(template)
	if !ok {
		return "", fmt.Errorf("bundle %q, template %q: %w", resource, template, ErrTemplateNotFound)
	}

	id, err := i.stage.Spawn(ctx, tpl, tpl.Placement)
	if err != nil {
		return "", fmt.Errorf("spawn %q: %w", template, err)
	}

	logger.Info("Content instantiated.", "bundle", resource, "template", template, "instance", id)
	return id, nil
}
