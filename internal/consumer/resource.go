package consumer

import (
	"github.com/udisondev/gtfoseed/internal/event"
)

// Resource loop constants. The take thresholds and size steps are float32
// values matched by the game; they are not 1/3, 2/3 and so on.
const (
	takeLowThreshold  float32 = 0.333333
	takeHighThreshold float32 = 0.6666666
	poolDoneThreshold float32 = 0.2

	ammoScale float32 = 0.8
	toolScale float32 = 0.7
)

// ResourcePool is the state of one resource loop. The loop runs while
// Next reports true; each iteration removes 0.4, 0.6 or 1.0 from the pool.
type ResourcePool struct {
	left    float32
	started bool
}

// NewResourcePool scales amount for kind: ammo by 0.8, tools by 0.7.
func NewResourcePool(kind event.ResourceKind, amount float32) *ResourcePool {
	switch kind {
	case event.Ammopack:
		amount = float32(amount * ammoScale)
	case event.ToolRefillpack:
		amount = float32(amount * toolScale)
	}
	return &ResourcePool{left: amount}
}

// Left returns the remaining pool.
func (p *ResourcePool) Left() float32 {
	return p.left
}

// Next reports whether another iteration runs. A pool that starts at exactly
// zero runs none; otherwise the loop runs at least once and stops once the
// pool drops to 0.2 or below.
func (p *ResourcePool) Next() bool {
	if !p.started {
		p.started = true
		return p.left != 0
	}
	return p.left > poolDoneThreshold
}

// Take removes the amount selected by draw and returns the pack size. The
// size depends on the pool before removal; the final pack is one larger.
func (p *ResourcePool) Take(draw float32) uint8 {
	var amount float32
	switch {
	case draw < takeLowThreshold:
		amount = 0.6
	case draw < takeHighThreshold:
		amount = 1.0
	default:
		amount = 0.4
	}

	var size uint8
	switch {
	case p.left >= 0.801 && amount > 0.9:
		size = 5
	case p.left >= 0.601 && amount >= 0.5:
		size = 4
	case p.left >= 0.401 && amount >= 0.5:
		size = 3
	default:
		size = 2
	}

	p.left = float32(p.left - amount)
	if p.left <= poolDoneThreshold {
		size++
	}
	return size
}
