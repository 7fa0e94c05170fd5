package engine

import (
	"math/rand/v2"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ============================================================================
// SAMPLER — Bounds render cost for oversized result sets
// ============================================================================
// Random sampling without replacement (partial Fisher-Yates over indices).
// Selected rows are emitted in their original relative order so line and
// bar series keep the query's ordering; scatter re-sorts afterwards anyway.
//
// Seed 0 means non-deterministic: two calls on the same input may pick
// different rows. Any other seed makes the selection reproducible.
// ============================================================================

// Sampler reduces row buffers above a threshold.
type Sampler struct {
	threshold int
	seed      uint64
}

// NewSampler creates a Sampler. Negative thresholds are treated as 0.
func NewSampler(threshold int, seed uint64) *Sampler {
	if threshold < 0 {
		threshold = 0
	}
	return &Sampler{threshold: threshold, seed: seed}
}

// Threshold returns the active row bound.
func (s *Sampler) Threshold() int { return s.threshold }

// Seeded reports whether selection is reproducible.
func (s *Sampler) Seeded() bool { return s.seed != 0 }

// Sample returns rows unchanged when len(rows) <= threshold; otherwise a
// threshold-sized subset of the original row values. Input is not modified.
func (s *Sampler) Sample(rows []Row) []Row {
	n := len(rows)
	k := s.threshold
	if n <= k {
		return rows
	}

	intN := rand.IntN
	if s.seed != 0 {
		r := rand.New(rand.NewPCG(s.seed, s.seed^0x9E3779B97F4A7C15))
		intN = r.IntN
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + intN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	picked := idx[:k]
	sort.Ints(picked)

	out := make([]Row, k)
	for i, p := range picked {
		out[i] = rows[p]
	}
	return out
}

// Sample applies an unseeded Sampler.
func Sample(rows []Row, threshold int) []Row {
	return NewSampler(threshold, 0).Sample(rows)
}

// SeedFromKey derives a stable, non-zero sampler seed from an identifier
// such as a saved query id.
func SeedFromKey(key string) uint64 {
	if key == "" {
		return 0
	}
	h := xxhash.Sum64String(key)
	if h == 0 {
		h = 1
	}
	return h
}
