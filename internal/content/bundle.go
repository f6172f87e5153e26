// Package content decodes the fetched content bundle and spawns objects from
// its templates into the live application.
package content

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// BundleMagic identifies a content-bundle blob.
const BundleMagic = "HCB1"

// ErrBadBundle is returned when a blob is not a well-formed content bundle.
var ErrBadBundle = errors.New("malformed content bundle")

// Placement positions a spawned instance.
type Placement struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
	Z float64 `msgpack:"z"`
}

// Template is one spawnable object description inside a bundle.
type Template struct {
	Name       string            `msgpack:"name"`
	Kind       string            `msgpack:"kind"`
	Properties map[string]string `msgpack:"properties"`
	Placement  Placement         `msgpack:"placement"`
}

// Bundle is the decoded form of a content-bundle resource.
type Bundle struct {
	Magic     string               `msgpack:"magic"`
	Templates map[string]*Template `msgpack:"templates"`
}

// Decode parses a content-bundle blob.
func Decode(data []byte) (*Bundle, error) {
	var b Bundle
	if err := msgpack.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBundle, err)
	}
	if b.Magic != BundleMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadBundle, b.Magic)
	}
	return &b, nil
}

// Encode serializes a bundle. The inverse of Decode; used by build tooling
// and tests.
func Encode(b *Bundle) ([]byte, error) {
	return msgpack.Marshal(b)
}

// Template returns the named template, if the bundle contains it.
func (b *Bundle) Template(name string) (*Template, bool) {
	tpl, ok := b.Templates[name]
	return tpl, ok
}
