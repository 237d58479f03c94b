package testutil

import (
	"fmt"
	"sync/atomic"
)

// FixedIDs hands out predictable harness identifiers: the first call returns
// the prefix itself, later calls append "-2", "-3", and so on. Nested
// harnesses created during validation therefore get stable IDs too.
//
// FixedIDs satisfies harness.IDGenerator.
type FixedIDs struct {
	prefix string
	n      atomic.Int64
}

// NewFixedIDs creates a generator. An empty prefix defaults to "test-harness".
func NewFixedIDs(prefix string) *FixedIDs {
	if prefix == "" {
		prefix = "test-harness"
	}
	return &FixedIDs{prefix: prefix}
}

// Generate returns the next identifier.
func (g *FixedIDs) Generate() string {
	n := g.n.Add(1)
	if n == 1 {
		return g.prefix
	}
	return fmt.Sprintf("%s-%d", g.prefix, n)
}
