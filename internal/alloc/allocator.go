// Package alloc reproduces the game's weighted room selection. Each zone keeps
// a per-room list of placement slots with remaining capacity; a draw selects a
// room through a position-weighted cumulative distribution and then a slot
// inside the room.
package alloc

import (
	"errors"
	"fmt"

	"github.com/udisondev/gtfoseed/internal/random"
)

var (
	// ErrUnknownZone is returned when a placement targets a zone the level
	// does not define.
	ErrUnknownZone = errors.New("unknown zone")
	// ErrDuplicateZone is returned when a zone is registered twice.
	ErrDuplicateZone = errors.New("duplicate zone")
	// ErrOverflow is returned when a category has no slot left in the zone.
	// It is not fatal: the overflow is tracked and the run continues.
	ErrOverflow = errors.New("slot category exhausted")
	// ErrNegativeSlots is returned when a room layout has a negative slot count.
	ErrNegativeSlots = errors.New("negative slot count")
)

// Allocator owns the mutable slot state of every zone in one simulation and
// the build stream used for capacities and overflow skips.
type Allocator struct {
	zones    map[ZoneID]*Zone
	build    random.Source
	walk     bool
	overflow Tracker
}

// New creates an empty allocator drawing capacities from build.
// With walk set, container indices walk remaining capacity instead of slots.
func New(build random.Source, walk bool) *Allocator {
	return &Allocator{
		zones: make(map[ZoneID]*Zone),
		build: build,
		walk:  walk,
	}
}

// containerCapacity draws 2 or 3 placements for a container slot.
func (a *Allocator) containerCapacity() int {
	return 2 + int(a.build.Next()*2)
}

// AddZone registers a zone, drawing its container capacities from the build
// stream in room and slot order.
func (a *Allocator) AddZone(id ZoneID, rooms []RoomSlots) error {
	if _, ok := a.zones[id]; ok {
		return fmt.Errorf("adding zone %s: %w", id, ErrDuplicateZone)
	}
	for r, room := range rooms {
		for c, n := range room {
			if n < 0 {
				return fmt.Errorf("adding zone %s room %d %s: %w", id, r, Category(c), ErrNegativeSlots)
			}
		}
	}
	a.zones[id] = NewZone(id, rooms, a.containerCapacity)
	return nil
}

// Zone returns the state of zone id, or nil.
func (a *Allocator) Zone(id ZoneID) *Zone {
	return a.zones[id]
}

// Build returns the build stream.
func (a *Allocator) Build() random.Source {
	return a.build
}

// Overflows returns the overflow tracker.
func (a *Allocator) Overflows() *Tracker {
	return &a.overflow
}

// Remaining returns the remaining capacity of category c in zone id.
func (a *Allocator) Remaining(id ZoneID, c Category) int {
	z, ok := a.zones[id]
	if !ok {
		return 0
	}
	return z.Remaining(c)
}

// Spawn places one item of category c in zone id.
//
// A live category consumes one draw from decision. An exhausted category
// consumes nothing from decision; the game burns a category-specific number
// of build draws instead, and Spawn records the overflow and returns
// ErrOverflow.
func (a *Allocator) Spawn(id ZoneID, w Weights, c Category, decision random.Source) (int, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("spawning in zone %s: invalid %s", id, c)
	}
	z, ok := a.zones[id]
	if !ok {
		return 0, fmt.Errorf("spawning %s in zone %s: %w", c, id, ErrUnknownZone)
	}

	if z.Empty(c) {
		random.Skip(a.build, overflowSkip[c])
		a.overflow.Add(id)
		return 0, fmt.Errorf("spawning %s in zone %s: %w", c, id, ErrOverflow)
	}

	slot, ok := z.Spawn(w, c, decision.Next(), a.walk && c == Container)
	if !ok {
		// Empty was checked above.
		return 0, fmt.Errorf("spawning %s in zone %s: %w", c, id, ErrOverflow)
	}
	return slot, nil
}
