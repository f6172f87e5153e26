// Package fetch downloads the declared resource list into the resource store.
// Resources are fetched strictly one at a time, in declaration order. A
// failed fetch is logged and skipped; the phase itself never fails. Whatever
// is missing afterwards surfaces later, in whichever consumer first needs it.
package fetch

import (
	"context"

	"github.com/vk/hotbootgo/internal/ctxlog"
	"github.com/vk/hotbootgo/internal/store"
)

// Downloader resolves resource names against a base location and stores the
// fetched bytes.
type Downloader struct {
	base    string
	fetcher Fetcher
	store   *store.Store
}

// NewDownloader creates a Downloader writing into the given store.
func NewDownloader(base string, fetcher Fetcher, st *store.Store) *Downloader {
	return &Downloader{base: base, fetcher: fetcher, store: st}
}

// FetchOne downloads a single named resource and stores it. The error return
// exists for callers that want to observe the failure; the downloader has
// already logged it, and the bootstrap policy is to continue regardless.
func (d *Downloader) FetchOne(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)
	addr := Address(d.base, name)
	logger.Info("Fetching resource.", "name", name, "address", addr)

	data, err := d.fetcher.Fetch(ctx, addr)
	if err != nil {
		logger.Error("Resource fetch failed.", "name", name, "error", err)
		return err
	}

	d.store.Put(name, data)
	logger.Info("Resource fetched.", "name", name, "size", len(data))
	return nil
}

// FetchAll downloads every name in order, then invokes done exactly once.
// Per-item failures are logged and skipped; done fires even when every fetch
// failed.
func (d *Downloader) FetchAll(ctx context.Context, names []string, done func()) {
	for _, name := range names {
		// Error already logged; the pipeline moves on to the next name.
		_ = d.FetchOne(ctx, name)
	}
	if done != nil {
		done()
	}
}
