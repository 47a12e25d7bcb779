package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/random"
)

func TestResourcePool_Take(t *testing.T) {
	tests := []struct {
		name string
		left float32
		draw float32
		want uint8
	}{
		{"full pool big take is final", 1.0, 0.5, 6},
		{"full pool medium take", 1.0, 0.1, 4},
		{"medium take empties pool", 0.7, 0.1, 5},
		{"half pool", 0.5, 0.1, 4},
		{"small take", 1.0, 0.9, 2},
		{"small take empties pool", 0.3, 0.9, 3},
		{"low boundary belongs to medium take", 1.0, 0.333333, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewResourcePool(event.Healthpack, tt.left)
			assert.True(t, p.Next())
			assert.Equal(t, tt.want, p.Take(tt.draw))
		})
	}
}

func TestResourcePool_Scale(t *testing.T) {
	assert.Equal(t, float32(0.8), NewResourcePool(event.Ammopack, 1).Left())
	assert.Equal(t, float32(0.7), NewResourcePool(event.ToolRefillpack, 1).Left())
	assert.Equal(t, float32(1), NewResourcePool(event.DisinfectPack, 1).Left())
}

func TestResourcePool_ZeroRunsNothing(t *testing.T) {
	p := NewResourcePool(event.Healthpack, 0)
	assert.False(t, p.Next())
}

func TestResourcePool_SmallPoolRunsOnce(t *testing.T) {
	p := NewResourcePool(event.Healthpack, 0.1)
	assert.True(t, p.Next())
	assert.Equal(t, uint8(3), p.Take(0.9))
	assert.False(t, p.Next())
}

func TestResourcePool_Terminates(t *testing.T) {
	src := random.New(732336958)
	for i := range 1000 {
		amount := float32(i+1) / 1000
		p := NewResourcePool(event.Healthpack, amount)

		iterations := 0
		for p.Next() {
			before := p.Left()
			p.Take(src.Next())
			iterations++
			assert.LessOrEqual(t, p.Left(), before-0.4+1e-6)
			if iterations > 3 {
				t.Fatalf("pool %v did not terminate", amount)
			}
		}
		assert.LessOrEqual(t, p.Left(), float32(0.2))
	}
}
