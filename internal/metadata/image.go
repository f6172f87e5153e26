// Package metadata applies downloaded metadata images to the precompiled base
// modules, merging in the extra symbols a dynamically loaded module may
// reference. Patching must finish for the whole manifest before any dynamic
// code runs; an unpatched base module fails unpredictably when called into.
package metadata

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ImageMagic identifies a metadata image blob.
const ImageMagic = "HMI1"

// PolicySuperset is the only supported merge policy: the image may add
// symbols beyond what the base build knows statically.
const PolicySuperset = 1

// ErrBadImage is returned when a blob is not a well-formed metadata image.
var ErrBadImage = errors.New("malformed metadata image")

// Symbol is one entry of a metadata image. Symbols without a native
// implementation fall back to interpreted execution at activation time.
type Symbol struct {
	Name   string `msgpack:"name"`
	Native bool   `msgpack:"native"`
}

// Image is the decoded form of a base module's metadata blob.
type Image struct {
	Magic   string   `msgpack:"magic"`
	Module  string   `msgpack:"module"`
	Policy  uint8    `msgpack:"policy"`
	Symbols []Symbol `msgpack:"symbols"`
}

// DecodeImage parses a metadata image blob.
func DecodeImage(data []byte) (*Image, error) {
	var img Image
	if err := msgpack.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	if img.Magic != ImageMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadImage, img.Magic)
	}
	if img.Module == "" {
		return nil, fmt.Errorf("%w: empty module name", ErrBadImage)
	}
	return &img, nil
}

// EncodeImage serializes a metadata image. The inverse of DecodeImage; used
// by build tooling and tests.
func EncodeImage(img *Image) ([]byte, error) {
	return msgpack.Marshal(img)
}
