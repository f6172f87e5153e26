package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/hotbootgo/internal/content"
	"github.com/vk/hotbootgo/internal/hcl"
	"github.com/vk/hotbootgo/internal/lifecycle"
	"github.com/vk/hotbootgo/internal/metadata"
)

// writeResources lays out a complete local resource set and returns the
// directory serving as the base location.
func writeResources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	bundle, err := content.Encode(&content.Bundle{
		Magic: content.BundleMagic,
		Templates: map[string]*content.Template{
			"Cube": {Name: "Cube", Kind: "mesh"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefabs"), bundle, 0o644))

	module := []byte(`
		Entry = {}
		function Entry.Start()
			core.note("hot update running")
		end
	`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HotUpdate.dll.bytes"), module, 0o644))

	for _, name := range []string{"mscorlib", "System", "System.Core"} {
		img, err := metadata.EncodeImage(&metadata.Image{
			Magic:   metadata.ImageMagic,
			Module:  name,
			Policy:  metadata.PolicySuperset,
			Symbols: []metadata.Symbol{{Name: "span", Native: false}},
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".dll.bytes"), img, 0o644))
	}
	return dir
}

func writeManifest(t *testing.T, base, sentinel, sentinelDir string, countdown int) string {
	t.Helper()
	manifest := fmt.Sprintf(`
bootstrap {
  base_location = %q
  bundle        = "prefabs"
  module        = "HotUpdate.dll.bytes"
  base_modules  = ["mscorlib.dll.bytes", "System.dll.bytes", "System.Core.dll.bytes"]
  countdown     = %d
  sentinel      = %q
  sentinel_dir  = %q
}
`, base, countdown, sentinel, sentinelDir)

	path := filepath.Join(t.TempDir(), "boot.hcl")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
	return path
}

func TestAppRun(t *testing.T) {
	t.Run("full local bootstrap reaches termination", func(t *testing.T) {
		base := writeResources(t)
		sentinelDir := t.TempDir()
		path := writeManifest(t, base, "on", sentinelDir, 0)

		cfg, err := NewConfig(Config{ManifestPath: path, LogFormat: "text", LogLevel: "debug"})
		require.NoError(t, err)

		var out bytes.Buffer
		a := NewApp(&out, cfg, hcl.NewLoader())

		exits := 0
		a.SetExit(func(code int) {
			exits++
			assert.Equal(t, 0, code)
		})

		require.NoError(t, a.Run(context.Background()))
		assert.Equal(t, 1, exits)

		data, err := os.ReadFile(filepath.Join(sentinelDir, lifecycle.SentinelName))
		require.NoError(t, err)
		assert.Equal(t, "ok", string(data))

		// A nil Run error means activation and instantiation both succeeded.
		assert.Contains(t, out.String(), "Dynamic module activated.")
		assert.NotEmpty(t, a.Mirror().Lines())
	})

	t.Run("missing base module aborts before activation", func(t *testing.T) {
		base := writeResources(t)
		require.NoError(t, os.Remove(filepath.Join(base, "mscorlib.dll.bytes")))
		path := writeManifest(t, base, "off", "", 0)

		cfg, err := NewConfig(Config{ManifestPath: path, LogFormat: "text", LogLevel: "info"})
		require.NoError(t, err)

		var out bytes.Buffer
		a := NewApp(&out, cfg, hcl.NewLoader())

		exits := 0
		a.SetExit(func(int) { exits++ })

		err = a.Run(context.Background())
		require.ErrorIs(t, err, metadata.ErrMissingResource)
		assert.Equal(t, 0, exits)
	})

	t.Run("bad manifest panics at construction", func(t *testing.T) {
		cfg, err := NewConfig(Config{ManifestPath: "does-not-exist.hcl"})
		require.NoError(t, err)
		assert.Panics(t, func() {
			NewApp(&bytes.Buffer{}, cfg, hcl.NewLoader())
		})
	})
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)

	cfg, err := NewConfig(Config{ManifestPath: "boot.hcl"})
	require.NoError(t, err)
	assert.Equal(t, defaultMirrorLines, cfg.MirrorLines)
}
