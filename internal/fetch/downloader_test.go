package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/hotbootgo/internal/store"
)

// fakeFetcher serves canned blobs by address and records the order of requests.
type fakeFetcher struct {
	blobs     map[string][]byte
	requested []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, address string) ([]byte, error) {
	f.requested = append(f.requested, address)
	data, ok := f.blobs[address]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return data, nil
}

func TestFetchAll(t *testing.T) {
	t.Run("stores every resource in order", func(t *testing.T) {
		f := &fakeFetcher{blobs: map[string][]byte{
			"http://cdn/res/prefabs":            []byte("bundle"),
			"http://cdn/res/HotUpdate.dll.bytes": []byte("module"),
		}}
		st := store.New()
		d := NewDownloader("http://cdn/res", f, st)

		fired := 0
		d.FetchAll(context.Background(), []string{"prefabs", "HotUpdate.dll.bytes"}, func() { fired++ })

		assert.Equal(t, 1, fired)
		assert.Equal(t, []string{"http://cdn/res/prefabs", "http://cdn/res/HotUpdate.dll.bytes"}, f.requested)
		data, ok := st.Get("prefabs")
		require.True(t, ok)
		assert.Equal(t, []byte("bundle"), data)
	})

	t.Run("a failed fetch is skipped, not fatal", func(t *testing.T) {
		f := &fakeFetcher{blobs: map[string][]byte{
			"http://cdn/res/System.dll.bytes": []byte("sys"),
		}}
		st := store.New()
		d := NewDownloader("http://cdn/res", f, st)

		d.FetchAll(context.Background(), []string{"mscorlib.dll.bytes", "System.dll.bytes"}, nil)

		_, ok := st.Get("mscorlib.dll.bytes")
		assert.False(t, ok)
		_, ok = st.Get("System.dll.bytes")
		assert.True(t, ok)
		assert.Equal(t, 1, st.Len())
	})

	t.Run("callback fires even when every fetch fails", func(t *testing.T) {
		f := &fakeFetcher{blobs: map[string][]byte{}}
		st := store.New()
		d := NewDownloader("http://cdn/res", f, st)

		fired := 0
		d.FetchAll(context.Background(), []string{"a", "b", "c"}, func() { fired++ })

		assert.Equal(t, 1, fired)
		assert.Equal(t, 0, st.Len())
	})
}

func TestClientLocalScheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prefabs")
	require.NoError(t, os.WriteFile(path, []byte("bundle-bytes"), 0o644))

	c := NewClient()
	defer c.Close()

	data, err := c.Fetch(context.Background(), Address(dir, "prefabs"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bundle-bytes"), data)

	_, err = c.Fetch(context.Background(), Address(dir, "missing"))
	assert.Error(t, err)
}
