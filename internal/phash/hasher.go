// Package phash fingerprints images with a perceptual hash and measures how
// far apart two fingerprints are.
package phash

import (
	"image"

	"github.com/corona10/goimagehash"

	apperr "github.com/GriffinCanCode/sepia/internal/errors"
)

// Kind selects the hash algorithm.
type Kind string

const (
	KindPerception Kind = "phash" // DCT-based, the default
	KindDifference Kind = "dhash"
	KindAverage    Kind = "ahash"
)

// MaxDistance is the largest Distance two fingerprints can have.
const MaxDistance = 64

// Fingerprint is a 64-bit perceptual digest of an image.
type Fingerprint struct {
	hash *goimagehash.ImageHash
}

// String renders the fingerprint as "<kind>:<hex>".
func (f Fingerprint) String() string {
	if f.hash == nil {
		return "<nil>"
	}
	return f.hash.ToString()
}

// Valid reports whether f holds a hash.
func (f Fingerprint) Valid() bool { return f.hash != nil }

// Hasher computes fingerprints of one Kind.
type Hasher struct {
	kind Kind
	fn   func(image.Image) (*goimagehash.ImageHash, error)
}

// New returns a Hasher for kind.
func New(kind Kind) (*Hasher, error) {
	var fn func(image.Image) (*goimagehash.ImageHash, error)
	switch kind {
	case KindPerception, "":
		kind, fn = KindPerception, goimagehash.PerceptionHash
	case KindDifference:
		fn = goimagehash.DifferenceHash
	case KindAverage:
		fn = goimagehash.AverageHash
	default:
		return nil, apperr.Newf(apperr.CodeConfig, "unknown hash kind %q (want phash, dhash or ahash)", kind)
	}
	return &Hasher{kind: kind, fn: fn}, nil
}

// Kind returns the hasher's algorithm.
func (h *Hasher) Kind() Kind { return h.kind }

// Fingerprint hashes img. Identical pixel content always yields the same fingerprint.
func (h *Hasher) Fingerprint(img image.Image) (Fingerprint, error) {
	if img == nil || img.Bounds().Empty() {
		return Fingerprint{}, apperr.New(apperr.CodeHash, "cannot fingerprint an empty image")
	}
	hash, err := h.fn(img)
	if err != nil {
		return Fingerprint{}, apperr.Wrap(err, apperr.CodeHash, "compute perceptual hash")
	}
	return Fingerprint{hash: hash}, nil
}

// Distance is the Hamming distance between a and b: 0 for identical
// fingerprints, larger for more different images. It is symmetric.
func Distance(a, b Fingerprint) (int, error) {
	if !a.Valid() || !b.Valid() {
		return 0, apperr.New(apperr.CodeHash, "distance of an empty fingerprint")
	}
	d, err := a.hash.Distance(b.hash)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeHash, "compare fingerprints")
	}
	return d, nil
}

// Distance is the method form of the package-level Distance.
func (h *Hasher) Distance(a, b Fingerprint) (int, error) {
	return Distance(a, b)
}

// FromBits builds a fingerprint from raw hash bits, e.g. a value logged earlier.
func FromBits(bits uint64, kind Kind) Fingerprint {
	k := goimagehash.PHash
	switch kind {
	case KindDifference:
		k = goimagehash.DHash
	case KindAverage:
		k = goimagehash.AHash
	}
	return Fingerprint{hash: goimagehash.NewImageHash(bits, k)}
}

// Bits returns the raw hash bits.
func (f Fingerprint) Bits() uint64 {
	if f.hash == nil {
		return 0
	}
	return f.hash.GetHash()
}
