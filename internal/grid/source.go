package grid

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// NewRandomSource returns a PCG source seeded from crypto/rand.
func NewRandomSource() Source {
	var b [16]byte
	_, _ = crand.Read(b[:])
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
}

// NewSeededSource returns a deterministic source; equal seeds give equal draws.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// draw returns a value in [lo, hi] from src.
func draw(src Source, lo, hi int) int {
	return lo + src.IntN(hi-lo+1)
}
