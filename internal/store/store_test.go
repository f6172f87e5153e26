package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	s := New()
	require.NotNil(t, s)
	assert.Equal(t, 0, s.Len())

	_, ok := s.Get("prefabs")
	assert.False(t, ok)

	s.Put("prefabs", []byte{0x01, 0x02})
	data, ok := s.Get("prefabs")
	require.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x02}, data)
	assert.Equal(t, 1, s.Len())
}

func TestPutOverwrites(t *testing.T) {
	s := New()
	s.Put("HotUpdate.dll.bytes", []byte("first"))
	s.Put("HotUpdate.dll.bytes", []byte("second"))

	data, ok := s.Get("HotUpdate.dll.bytes")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), data)
	assert.Equal(t, 1, s.Len())
}
