package game

import (
	mathrand "math/rand"
	"sync"
)

// Rand is the single source of randomness for every stochastic function in
// this package. Next returns a float in [0, 1).
type Rand interface {
	Next() float64
}

// SeededRand is a mutex-guarded math/rand generator. Two instances built
// from the same seed produce the same sequence.
type SeededRand struct {
	mu  sync.Mutex
	rnd *mathrand.Rand
}

func NewSeededRand(seed int64) *SeededRand {
	return &SeededRand{rnd: mathrand.New(mathrand.NewSource(seed))}
}

func (r *SeededRand) Next() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

// between draws uniformly from [lo, hi).
func between(rng Rand, lo, hi float64) float64 {
	return lo + rng.Next()*(hi-lo)
}

// signedNoise draws uniformly from [-amplitude, amplitude).
func signedNoise(rng Rand, amplitude float64) float64 {
	return amplitude * (rng.Next()*2 - 1)
}

// pickIndex chooses an index in [0, n) or -1 when n is zero.
func pickIndex(rng Rand, n int) int {
	if n <= 0 {
		return -1
	}
	i := int(rng.Next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
