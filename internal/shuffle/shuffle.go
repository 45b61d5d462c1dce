// Package shuffle provides the order-randomizing primitive used to sequence
// session questions and displayed options.
package shuffle

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Shuffler produces uniform random permutations.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Shuffler seeded from the operating system's CSPRNG.
func New() *Shuffler {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand.Read never fails on supported platforms.
		panic("shuffle: read seed: " + err.Error())
	}
	return &Shuffler{rng: rand.New(rand.NewChaCha8(seed))}
}

// NewSeeded returns a deterministic Shuffler for tests.
func NewSeeded(seed uint64) *Shuffler {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	return &Shuffler{rng: rand.New(rand.NewChaCha8(s))}
}

// Intn returns a uniform int in [0, n).
func (s *Shuffler) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Perm returns a random permutation of [0, n).
func (s *Shuffler) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fisherYates(s.rng, p)
	return p
}

// Shuffle returns a shuffled copy of in; in is never modified.
func Shuffle[T any](s *Shuffler, in []T) []T {
	out := append([]T(nil), in...)
	s.mu.Lock()
	defer s.mu.Unlock()
	fisherYates(s.rng, out)
	return out
}

// Sample returns up to n elements of in drawn without replacement, in random
// order. in is never modified.
func Sample[T any](s *Shuffler, in []T, n int) []T {
	out := Shuffle(s, in)
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

func fisherYates[T any](rng *rand.Rand, a []T) {
	for i := len(a) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}
