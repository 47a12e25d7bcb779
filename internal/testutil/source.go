package testutil

import (
	"testing"

	"github.com/udisondev/gtfoseed/internal/random"
)

// CountingSource оборачивает random.Source и считает выданные значения.
// Используется в тестах на точное количество потреблённых draws.
type CountingSource struct {
	src   random.Source
	count int
}

// NewCountingSource создаёт CountingSource поверх src.
// Если src == nil, используется поток random.New(1).
func NewCountingSource(src random.Source) *CountingSource {
	if src == nil {
		src = random.New(1)
	}
	return &CountingSource{src: src}
}

// Next implements random.Source.
func (c *CountingSource) Next() float32 {
	c.count++
	return c.src.Next()
}

// Count returns the number of values drawn so far.
func (c *CountingSource) Count() int {
	return c.count
}

// SequenceSource отдаёт заранее заданные значения по порядку.
// Когда значения заканчиваются, тест падает через Fatalf.
type SequenceSource struct {
	tb     testing.TB
	values []float32
	pos    int
}

// Sequence создаёт SequenceSource с фиксированными значениями.
func Sequence(tb testing.TB, values ...float32) *SequenceSource {
	tb.Helper()
	return &SequenceSource{tb: tb, values: values}
}

// Next implements random.Source.
func (s *SequenceSource) Next() float32 {
	if s.pos >= len(s.values) {
		s.tb.Fatalf("sequence source exhausted after %d draws", len(s.values))
		return 0
	}
	v := s.values[s.pos]
	s.pos++
	return v
}

// Consumed returns how many values were drawn.
func (s *SequenceSource) Consumed() int {
	return s.pos
}

// Remaining returns how many values are left.
func (s *SequenceSource) Remaining() int {
	return len(s.values) - s.pos
}

// Constant is a source that always returns the same value.
type Constant float32

// Next implements random.Source.
func (c Constant) Next() float32 {
	return float32(c)
}
