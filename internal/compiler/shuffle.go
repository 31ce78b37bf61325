package compiler

import (
	"math/rand/v2"
	"sync"
)

// Shuffler decides the on-screen order of a decision's choices. Perm must
// return a permutation of [0, n).
type Shuffler interface {
	Perm(n int) []int
}

// ShufflerFunc adapts a function to Shuffler.
type ShufflerFunc func(n int) []int

func (f ShufflerFunc) Perm(n int) []int { return f(n) }

// Identity keeps the authored choice order.
var Identity Shuffler = ShufflerFunc(func(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
})

type globalShuffler struct{}

func (globalShuffler) Perm(n int) []int { return rand.Perm(n) }

type seededShuffler struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededShuffler returns a reproducible Shuffler. It is safe for
// concurrent use.
func NewSeededShuffler(seed uint64) Shuffler {
	return &seededShuffler{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededShuffler) Perm(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Perm(n)
}

func validPerm(p []int, n int) bool {
	if len(p) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range p {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
