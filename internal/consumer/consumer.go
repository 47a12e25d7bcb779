// Package consumer implements composable spawn rules. Each rule consumes a
// fixed, self-determined number of draws from a random source and may emit
// events; rules compose into ordered chains.
package consumer

import (
	"errors"
	"fmt"

	"github.com/udisondev/gtfoseed/internal/alloc"
	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/random"
)

// ErrEmptyChoices is returned when a weighted or uniform pick has no
// candidates to choose from.
var ErrEmptyChoices = errors.New("empty candidate list")

// Consumer takes draws from src and emits the resulting events to out.
type Consumer interface {
	Take(src random.Source, out event.Sink) error
}

// Chain runs its members in order and stops at the first error.
type Chain []Consumer

// Take implements Consumer.
func (c Chain) Take(src random.Source, out event.Sink) error {
	for i, m := range c {
		if err := m.Take(src, out); err != nil {
			return fmt.Errorf("chain member %d: %w", i, err)
		}
	}
	return nil
}

// Ignore discards Count draws.
type Ignore struct {
	Count int
}

// Take implements Consumer.
func (c Ignore) Take(src random.Source, _ event.Sink) error {
	random.Skip(src, c.Count)
	return nil
}

// OutputSeed emits one raw draw.
type OutputSeed struct{}

// Take implements Consumer.
func (OutputSeed) Take(src random.Source, out event.Sink) error {
	out.Emit(event.Seed(src.Next()))
	return nil
}

// KeyID places a named item in one of the slots of a static room layout with
// one draw. The reported slot is zone-wide: the in-room index plus the slots
// of every earlier room.
type KeyID struct {
	Name          string        `yaml:"name"`
	Zone          int32         `yaml:"zone"`
	Weights       alloc.Weights `yaml:"weights,flow"`
	SpawnsPerRoom []int         `yaml:"spawns_per_room,flow"`
}

// ID maps a draw to a zone-wide slot index.
func (k KeyID) ID(draw float32) (int, error) {
	_, index := alloc.PickIndex(draw, k.SpawnsPerRoom, k.Weights)
	if index < 0 {
		return 0, fmt.Errorf("key %q in zone %d: %w", k.Name, k.Zone, ErrEmptyChoices)
	}
	return index, nil
}

// Take implements Consumer.
func (k KeyID) Take(src random.Source, out event.Sink) error {
	id, err := k.ID(src.Next())
	if err != nil {
		return err
	}
	out.Emit(event.Key(k.Name, k.Zone, int32(id)))
	return nil
}

// pick draws one uniform choice among candidates.
func pick(src random.Source, candidates []KeyID) (KeyID, error) {
	idx := alloc.Uniform(src.Next(), len(candidates))
	if idx < 0 {
		return KeyID{}, ErrEmptyChoices
	}
	return candidates[idx], nil
}

// ResourceGeneration runs one resource loop. Every iteration takes three
// draws: an unused number, the take fraction and the slot. Packs are only
// reported when Track describes the zone layout.
type ResourceGeneration struct {
	Left  float32            `yaml:"left"`
	Kind  event.ResourceKind `yaml:"kind"`
	Zone  int32              `yaml:"zone"`
	Track *KeyID             `yaml:"track,omitempty"`
}

// Take implements Consumer.
func (c ResourceGeneration) Take(src random.Source, out event.Sink) error {
	pool := NewResourcePool(c.Kind, c.Left)
	for pool.Next() {
		src.Next()
		size := pool.Take(src.Next())
		slotDraw := src.Next()

		if c.Track == nil {
			continue
		}
		id, err := c.Track.ID(slotDraw)
		if err != nil {
			return fmt.Errorf("tracking %s: %w", c.Kind, err)
		}
		out.Emit(event.ResourcePack(c.Kind, c.Zone, int32(id), size))
	}
	return nil
}

// Key picks the zone of an unlock key and places it there. Colored keys burn
// two draws before the pick and bulkhead keys one.
type Key struct {
	Type  KeyType `yaml:"type"`
	Zones []KeyID `yaml:"zones"`
}

// Take implements Consumer.
func (c Key) Take(src random.Source, out event.Sink) error {
	if len(c.Zones) == 0 {
		return fmt.Errorf("%s: %w", c.Type, ErrEmptyChoices)
	}
	random.Skip(src, c.Type.FirstID())
	zone, err := pick(src, c.Zones)
	if err != nil {
		return err
	}
	return zone.Take(src, out)
}

// Zone burns the draws of a zone whose placements are not reported: four
// untracked resource loops, one draw per artifact and worldspawn consumable
// and two per container consumable.
type Zone struct {
	Medi                   float32 `yaml:"medi"`
	Disi                   float32 `yaml:"disi"`
	Ammo                   float32 `yaml:"ammo"`
	Tool                   float32 `yaml:"tool"`
	ArtifactCount          int     `yaml:"artifact_count"`
	ConsumableInContainer  int     `yaml:"consumable_in_container"`
	ConsumableInWorldspawn int     `yaml:"consumable_in_worldspawn"`
}

// Take implements Consumer.
func (c Zone) Take(src random.Source, out event.Sink) error {
	amounts := [...]float32{c.Medi, c.Disi, c.Ammo, c.Tool}
	for i, kind := range event.ResourceKinds {
		res := ResourceGeneration{Left: amounts[i], Kind: kind}
		if err := res.Take(src, out); err != nil {
			return err
		}
	}
	return Ignore{Count: c.ArtifactCount + 2*c.ConsumableInContainer + c.ConsumableInWorldspawn}.Take(src, out)
}

// Objective picks one candidate per group and places it: two draws per group.
type Objective struct {
	Groups [][]KeyID `yaml:"groups"`
}

// Take implements Consumer.
func (c Objective) Take(src random.Source, out event.Sink) error {
	for i, group := range c.Groups {
		chosen, err := pick(src, group)
		if err != nil {
			return fmt.Errorf("objective group %d: %w", i, err)
		}
		if err := chosen.Take(src, out); err != nil {
			return err
		}
	}
	return nil
}

// Consumable distributes Count consumables over TotalContainers containers
// with two draws each and reports which tracked containers received one.
type Consumable struct {
	Tracked         []int32 `yaml:"tracked,flow"`
	TotalContainers int32   `yaml:"total_containers"`
	Count           int     `yaml:"count"`
}

// Take implements Consumer.
func (c Consumable) Take(src random.Source, out event.Sink) error {
	found := make(map[int32]struct{}, c.Count)
	for range c.Count {
		id := int32(float32(src.Next() * float32(c.TotalContainers)))
		src.Next()
		found[id] = struct{}{}
	}

	for _, box := range c.Tracked {
		_, ok := found[box]
		out.Emit(event.ConsumableFound(box, ok))
	}
	return nil
}

// ChoiceWrapper picks one candidate per choice group up front, runs the
// wrapped chain and only then places the chosen candidates.
type ChoiceWrapper struct {
	Choices   [][]KeyID `yaml:"choices"`
	Consumers Chain     `yaml:"consumers"`
}

// Take implements Consumer.
func (c ChoiceWrapper) Take(src random.Source, out event.Sink) error {
	chosen := make([]KeyID, 0, len(c.Choices))
	for i, group := range c.Choices {
		k, err := pick(src, group)
		if err != nil {
			return fmt.Errorf("choice %d: %w", i, err)
		}
		chosen = append(chosen, k)
	}

	if err := c.Consumers.Take(src, out); err != nil {
		return err
	}

	for _, k := range chosen {
		if err := k.Take(src, out); err != nil {
			return err
		}
	}
	return nil
}
