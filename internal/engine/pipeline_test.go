package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/hotbootgo/internal/activate"
	"github.com/vk/hotbootgo/internal/content"
	"github.com/vk/hotbootgo/internal/fetch"
	"github.com/vk/hotbootgo/internal/lifecycle"
	"github.com/vk/hotbootgo/internal/metadata"
	"github.com/vk/hotbootgo/internal/store"
)

const baseLocation = "http://cdn/res"

var baseModules = []string{"mscorlib.dll.bytes", "System.dll.bytes", "System.Core.dll.bytes"}

// fakeFetcher serves canned blobs by address.
type fakeFetcher struct {
	blobs map[string][]byte
}

func (f *fakeFetcher) Fetch(ctx context.Context, address string) ([]byte, error) {
	data, ok := f.blobs[address]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return data, nil
}

func image(t *testing.T, module string) []byte {
	t.Helper()
	data, err := metadata.EncodeImage(&metadata.Image{
		Magic:   metadata.ImageMagic,
		Module:  module,
		Policy:  metadata.PolicySuperset,
		Symbols: []metadata.Symbol{{Name: "span", Native: false}},
	})
	require.NoError(t, err)
	return data
}

func bundle(t *testing.T) []byte {
	t.Helper()
	data, err := content.Encode(&content.Bundle{
		Magic: content.BundleMagic,
		Templates: map[string]*content.Template{
			"Cube": {Name: "Cube", Kind: "mesh"},
		},
	})
	require.NoError(t, err)
	return data
}

// allBlobs is the complete remote resource set of the reference scenario.
func allBlobs(t *testing.T) map[string][]byte {
	t.Helper()
	return map[string][]byte{
		baseLocation + "/prefabs":             bundle(t),
		baseLocation + "/HotUpdate.dll.bytes": []byte(`Entry = { Start = function() end }`),
		baseLocation + "/mscorlib.dll.bytes":  image(t, "mscorlib"),
		baseLocation + "/System.dll.bytes":    image(t, "System"),
		baseLocation + "/System.Core.dll.bytes": image(t, "System.Core"),
	}
}

type fixture struct {
	store     *store.Store
	stage     *content.MemoryStage
	activator *activate.Activator
	pipeline  *Pipeline
	exits     *int
	sleeps    *[]time.Duration
	sentinel  string
}

func newFixture(t *testing.T, blobs map[string][]byte, countdown int) *fixture {
	t.Helper()
	st := store.New()
	table := metadata.NewSymbolTable()
	stage := content.NewMemoryStage()
	dir := t.TempDir()

	exits := 0
	timer := lifecycle.New(countdown,
		lifecycle.WithExit(func(code int) { exits++ }),
		lifecycle.WithSentinel(true),
		lifecycle.WithSentinelDir(dir),
	)

	activator := activate.NewActivator(st, activate.NewRegistry(), table)
	pipeline := NewPipeline(
		fetch.NewDownloader(baseLocation, &fakeFetcher{blobs: blobs}, st),
		metadata.NewPatcher(st, table),
		activator,
		content.NewInstantiator(st, stage),
		timer,
		append([]string{"prefabs", "HotUpdate.dll.bytes"}, baseModules...),
		baseModules,
		"HotUpdate.dll.bytes",
		"prefabs",
		activate.ModeRemote,
	)

	sleeps := []time.Duration{}
	return &fixture{
		store:     st,
		stage:     stage,
		activator: activator,
		pipeline:  pipeline,
		exits:     &exits,
		sleeps:    &sleeps,
		sentinel:  filepath.Join(dir, lifecycle.SentinelName),
	}
}

func (f *fixture) run(ctx context.Context) error {
	return Run(ctx, f.pipeline, func(d time.Duration) { *f.sleeps = append(*f.sleeps, d) })
}

func TestPipelineFullRun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, allBlobs(t), 10)

	fetched := 0
	f.pipeline.OnFetched(func() { fetched++ })

	require.NoError(t, f.run(ctx))

	assert.Equal(t, 1, fetched)
	assert.Equal(t, 5, f.store.Len())
	assert.True(t, f.activator.Activated())

	instances := f.stage.Instances()
	require.Len(t, instances, 1)
	assert.Equal(t, "Cube", instances[0].Template)

	// 10 ticks, one second apart: nine sleeps between them.
	assert.Equal(t, 9, len(*f.sleeps))
	for _, d := range *f.sleeps {
		assert.Equal(t, time.Second, d)
	}
	assert.Equal(t, 1, *f.exits)
	assert.Equal(t, PhaseDone, f.pipeline.Phase())

	data, err := os.ReadFile(f.sentinel)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestPipelineZeroCountdown(t *testing.T) {
	f := newFixture(t, allBlobs(t), 0)
	require.NoError(t, f.run(context.Background()))

	assert.Empty(t, *f.sleeps)
	assert.Equal(t, 1, *f.exits)
}

func TestPipelineMissingBaseModuleFetch(t *testing.T) {
	blobs := allBlobs(t)
	delete(blobs, baseLocation+"/mscorlib.dll.bytes")

	f := newFixture(t, blobs, 10)
	err := f.run(context.Background())

	// The fetch failure is skipped; the patch phase hits the missing key.
	require.ErrorIs(t, err, metadata.ErrMissingResource)
	assert.Equal(t, 4, f.store.Len())
	assert.False(t, f.activator.Activated())
	assert.Empty(t, f.stage.Instances())
	assert.Equal(t, 0, *f.exits)

	_, statErr := os.Stat(f.sentinel)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipelineMissingModuleFetch(t *testing.T) {
	blobs := allBlobs(t)
	delete(blobs, baseLocation+"/HotUpdate.dll.bytes")

	f := newFixture(t, blobs, 10)
	err := f.run(context.Background())

	require.ErrorIs(t, err, activate.ErrMissingResource)
	assert.False(t, f.activator.Activated())
}

func TestPipelinePatchOrderPrecedesActivation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, allBlobs(t), 0)

	seen := []Phase{}
	for {
		seen = append(seen, f.pipeline.Phase())
		_, done, err := f.pipeline.Step(ctx)
		require.NoError(t, err)
		if done {
			break
		}
	}

	// Phases never interleave and never regress.
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
	}
	assert.Contains(t, seen, PhasePatch)
	assert.Contains(t, seen, PhaseActivate)
}
