// Package rng provides a deterministic pseudo-random generator keyed by
// string seeds.
//
// The same seed string yields the same stream on every platform: the seed is
// folded into 32 bits with a 31-multiplier string hash over UTF-16 code units
// and fed to a mulberry32 mixer using only uint32 arithmetic. Callers scope
// independent draws with composite seeds such as "<session>:floor:2" or
// "<room>:battle:<player>".
package rng

import "unicode/utf16"

// Rand is a seeded generator. It is not safe for concurrent use; create one
// per generation step or encounter.
type Rand struct {
	state uint32
}

// New creates a generator for the given seed string.
func New(seed string) *Rand {
	s := HashString(seed)
	if s == 0 {
		s = 1
	}
	return &Rand{state: s}
}

// HashString folds a string into 32 bits (hash = hash*31 + unit).
func HashString(value string) uint32 {
	var hash uint32
	for _, unit := range utf16.Encode([]rune(value)) {
		hash = hash*31 + uint32(unit)
	}
	return hash
}

// Float64 returns the next value in [0,1).
func (r *Rand) Float64() float64 {
	r.state += 0x6d2b79f5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296
}

// IntRange returns an integer in [min,max] inclusive.
func (r *Rand) IntRange(min, max int) int {
	return int(r.Float64()*float64(max-min+1)) + min
}

// Chance reports whether a draw falls below p.
func (r *Rand) Chance(p float64) bool {
	return r.Float64() < p
}

// Pick returns a uniformly selected element of values. It panics on an empty
// slice, like indexing would.
func Pick[T any](r *Rand, values []T) T {
	return values[int(r.Float64()*float64(len(values)))]
}
