package pricing

import (
	crand "crypto/rand"
	"encoding/binary"
	"time"

	"golang.org/x/exp/rand"
)

// NormalSource supplies standard-normal variates to the simulation.
// *rand.Rand from golang.org/x/exp/rand (and math/rand) satisfies it.
type NormalSource interface {
	NormFloat64() float64
}

// NewSeededSource returns a deterministic generator: the same seed always
// produces the same sequence of variates.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewEntropySource returns a generator seeded from the operating system's
// random number generator. Each call yields an independent stream.
func NewEntropySource() *rand.Rand {
	return NewSeededSource(EntropySeed())
}

// EntropySeed reads a fresh 64-bit seed from crypto/rand, falling back to
// the wall clock if the system generator is unavailable.
func EntropySeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}
