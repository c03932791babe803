package testfixtures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator yields UUIDs that are stable across runs: the nth identifier
// for a given seed is always the same.
type IDGenerator struct {
	mu      sync.Mutex
	seed    string
	counter uint64
}

// NewIDGenerator constructs a generator for seed, defaulting to "id".
func NewIDGenerator(seed string) *IDGenerator {
	if seed == "" {
		seed = "id"
	}
	return &IDGenerator{seed: seed}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	g.counter++
	n := g.counter
	seed := g.seed
	g.mu.Unlock()
	return StableID(seed, n)
}

// NextFunc exposes Next for injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return uuid.NewString() }
	}
	return g.Next
}

// Reset rewinds the sequence so the next call returns the first identifier again.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	g.counter = 0
	g.mu.Unlock()
}

// StableID derives a name-based UUID from seed and n.
func StableID(seed string, n uint64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", seed, n))).String()
}
