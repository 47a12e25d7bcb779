// Package random reproduces the game's xorshift generator and exposes it as an
// infinite stream of float32 draws.
package random

import "math"

// seedMultiplier is the MT19937 initialisation constant used to derive the
// remaining state words from the seed.
const seedMultiplier uint32 = 1812433253

// drawScale keeps every draw strictly below 1.0.
const drawScale float32 = 0.9999

// Source yields draws in [0, 0.9999).
type Source interface {
	Next() float32
}

// Stream is a 128-bit xorshift generator seeded the same way as the game.
// The zero value is not usable; create streams with New.
type Stream struct {
	x, y, z, w uint32
	drawn      int
}

// New creates a stream seeded from a signed 32-bit seed.
func New(seed int32) *Stream {
	x := uint32(seed)
	y := seedMultiplier*x + 1
	z := seedMultiplier*y + 1
	w := seedMultiplier*z + 1
	return &Stream{x: x, y: y, z: z, w: w}
}

// NextUint32 advances the generator and returns the raw state word.
func (s *Stream) NextUint32() uint32 {
	t := s.x ^ (s.x << 11)
	s.x = s.y
	s.y = s.z
	s.z = s.w
	s.w = s.w ^ (s.w >> 19) ^ t ^ (t >> 8)
	return s.w
}

// Next returns the next draw in [0, 0.9999).
// Every intermediate is converted to float32 explicitly so the result matches
// single-precision arithmetic bit for bit.
func (s *Stream) Next() float32 {
	s.drawn++
	u := s.NextUint32() << 9
	v := float32(float32(u) / float32(math.MaxUint32))
	return float32(v * drawScale)
}

// Drawn reports how many float draws the stream has produced.
func (s *Stream) Drawn() int {
	return s.drawn
}

// Skip discards n draws from src.
func Skip(src Source, n int) {
	for i := 0; i < n; i++ {
		src.Next()
	}
}
