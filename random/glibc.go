// Package random - seedable pseudo-random streams for reproducible filters.
package random

import (
	"math/rand"

	"github.com/pkg/errors"
)

const (
	// glibcDegree is the number of state words of glibc's TYPE_3 generator.
	glibcDegree = 31
	// glibcSeparation is the distance between the two feedback taps.
	glibcSeparation = 3
	// glibcWarmup is the number of outputs srand discards after seeding.
	glibcWarmup = glibcDegree * 10
	// glibcRing is the ring length needed to reach both taps.
	glibcRing = glibcDegree + glibcSeparation
)

// Glibc reproduces the sequence of glibc's srand(seed) followed by rand().
//
// It is an additive lagged-Fibonacci generator r[i] = r[i-31] + r[i-3]
// seeded with the Park-Miller minimal standard generator; each output is
// r[i] >> 1. A Glibc is not safe for concurrent use.
type Glibc struct {
	ring [glibcRing]uint32
	n    int
}

// NewGlibc seeds a stream the way srand(seed) does. A seed of 0 acts as 1.
//
// Arguments:
// - seed: The seed value.
//
// Returns:
// - The seeded stream.
//
// @example
// src := NewGlibc(1)
// first := src.Int31() // 1804289383
func NewGlibc(seed uint32) *Glibc {
	g := &Glibc{}
	g.Seed(seed)
	return g
}

// Seed resets the stream to the start of the sequence for seed.
func (g *Glibc) Seed(seed uint32) {
	if seed == 0 {
		seed = 1
	}

	// Park-Miller fill of the first 31 words, using Schrage's method.
	word := int64(int32(seed))
	g.ring[0] = uint32(word)
	for i := 1; i < glibcDegree; i++ {
		hi := word / 127773
		lo := word % 127773
		word = 16807*lo - 2836*hi
		if word < 0 {
			word += 2147483647
		}
		g.ring[i] = uint32(word)
	}
	for i := glibcDegree; i < glibcRing; i++ {
		g.ring[i] = g.ring[i-glibcDegree]
	}
	g.n = glibcRing

	for i := 0; i < glibcWarmup; i++ {
		g.next()
	}
}

// next advances the recurrence and returns the raw 32-bit word.
func (g *Glibc) next() uint32 {
	// In a ring of 34, index n-31 is n+3 and n-3 is n+31.
	i := g.n % glibcRing
	v := g.ring[(g.n+glibcSeparation)%glibcRing] + g.ring[(g.n+glibcDegree)%glibcRing]
	g.ring[i] = v
	g.n++
	return v
}

// Int31 returns the next value in [0, 2^31), the same value rand() would.
func (g *Glibc) Int31() int32 {
	return int32(g.next() >> 1)
}

// Kind selects the generator behind a stream.
type Kind string

const (
	// KindGlibc reproduces glibc srand/rand sequences.
	KindGlibc Kind = "glibc"
	// KindGo uses math/rand's default source.
	KindGo Kind = "go"
)

// ErrUnknownKind is returned by NewSource for unrecognized kinds.
var ErrUnknownKind = errors.New("unknown random source kind")

// Source is a 31-bit pseudo-random stream.
type Source interface {
	Int31() int32
}

// NewSource creates a stream of the given kind.
//
// Arguments:
// - kind: KindGlibc or KindGo. Empty selects KindGlibc.
// - seed: The seed value.
//
// Returns:
// - The seeded stream.
// - ErrUnknownKind for any other kind.
func NewSource(kind Kind, seed uint32) (Source, error) {
	switch kind {
	case KindGlibc, "":
		return NewGlibc(seed), nil
	case KindGo:
		return rand.New(rand.NewSource(int64(seed))), nil
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%q", kind)
	}
}
