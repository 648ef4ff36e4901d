// Package entropy provides the seeded random stream that is threaded through
// system generation and every per-tick decision. There is no package-level
// generator: callers own the *rand.Rand and pass it explicitly.
// When no seed is configured, one is drawn from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"time"
)

// New returns a deterministic generator for seed.
func New(seed int64) *mrand.Rand {
	return mrand.New(mrand.NewSource(seed))
}

// Seed returns *seed if set, otherwise a fresh seed from crypto/rand.
func Seed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return CryptoSeed()
}

// CryptoSeed draws a seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; the clock is still a usable seed.
		return time.Now().UnixNano()
	}
	// Keep it non-negative so it reads well in logs and config files.
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}

// Chance returns true with probability p.
func Chance(rng *mrand.Rand, p float64) bool {
	return rng.Float64() < p
}

// Between returns a uniform float64 in [lo, hi).
func Between(rng *mrand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Jitter returns a uniform integer in [0, variance]. Zero or negative
// variance yields 0 without consuming randomness.
func Jitter(rng *mrand.Rand, variance int) int {
	if variance <= 0 {
		return 0
	}
	return rng.Intn(variance + 1)
}

// Pick returns a uniformly chosen element of xs, or -1 and false when xs is empty.
func Pick(rng *mrand.Rand, xs []int) (int, bool) {
	if len(xs) == 0 {
		return -1, false
	}
	return xs[rng.Intn(len(xs))], true
}
