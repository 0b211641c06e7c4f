package factor

import (
	"crypto/rand"
	"encoding/binary"

	xrand "golang.org/x/exp/rand"
)

// RNG is the minimal surface EDF needs from a pseudo-random generator:
// a stream of uniform 64-bit words, from which 128-bit field elements
// and polynomial coefficients are built. golang.org/x/exp/rand.Rand
// already satisfies this, which is what lets tests hand EDF a seeded,
// deterministic generator for reproducible factor output while
// production code uses one seeded from a real entropy source.
type RNG interface {
	Uint64() uint64
}

// NewRandomRNG seeds an *xrand.Rand from crypto/rand, for production
// use where reproducibility is not required.
func NewRandomRNG() RNG {
	var seedBytes [8]byte
	if _, err := rand.Read(seedBytes[:]); err != nil {
		// crypto/rand.Read failing means the system entropy source is
		// broken; there is nothing sensible left to do but seed from a
		// fixed constant rather than silently use a predictable clock
		// value.
		seedBytes = [8]byte{0x4b, 0x41, 0x55, 0x4d, 0x41, 0x21, 0x21, 0x21}
	}
	seed := binary.LittleEndian.Uint64(seedBytes[:])
	return xrand.New(xrand.NewSource(seed))
}

// NewSeededRNG returns a deterministic generator for reproducible
// tests.
func NewSeededRNG(seed uint64) RNG {
	return xrand.New(xrand.NewSource(seed))
}
