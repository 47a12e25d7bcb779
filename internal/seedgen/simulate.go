// Package seedgen replays the game's level generation for a session seed. It
// walks the static level description in the game's order, draws decisions
// from the session stream, allocates slots through the zone allocator and
// reports every placement as an event.
package seedgen

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/gtfoseed/internal/alloc"
	"github.com/udisondev/gtfoseed/internal/consumer"
	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/level"
	"github.com/udisondev/gtfoseed/internal/random"
)

// Item names reported for placements that have no configured name.
const (
	ColoredKey           = "ColoredKey"
	BulkKey              = "BulkKey"
	Cell                 = "Cell"
	ArtifactContainer    = "ArtifactContainer"
	ArtifactWorldspawn   = "ArtifactWorldspawn"
	ConsumableContainer  = "ConsumableContainer"
	ConsumableWorldspawn = "ConsumableWorldspawn"
)

// artifactContainerChance is the build draw below which an artifact goes into
// a container.
const artifactContainerChance float32 = 0.15

// Result summarises one simulation.
type Result struct {
	// Draws is the number of decision draws, including skip_start.
	Draws int
	// BuildDraws is the number of build draws, including build_seed_skip.
	BuildDraws int
	// Overflows is the number of placements that found no free slot.
	Overflows    int
	OverflowHash [32]byte
}

type pass struct {
	layer     uint8
	dimension uint8
}

type simulation struct {
	lvl      *level.Level
	decision *random.Stream
	build    *random.Stream
	alloc    *alloc.Allocator
	out      event.Sink
	deferred requests
}

// Simulate replays the generation of lvl for seed and emits the placements
// to sink in generation order. Overflows do not stop the run; they are
// reported once at the end. Malformed configuration stops the run with an
// error and the events emitted so far are left in sink.
func Simulate(lvl *level.Level, seed int32, sink event.Sink) (Result, error) {
	s := &simulation{
		lvl:      lvl,
		decision: random.New(seed),
		build:    random.New(lvl.BuildSeed),
		out:      sink,
	}
	random.Skip(s.decision, lvl.SkipStart)
	random.Skip(s.build, lvl.BuildSeedSkip)

	err := s.run()
	res := s.result()
	if err != nil {
		return res, fmt.Errorf("simulating %s seed %d: %w", lvl.Name, seed, err)
	}

	if res.Overflows > 0 {
		sink.Emit(event.Overflow(uint64(res.Overflows), res.OverflowHash))
	}
	slog.Debug("simulation finished",
		"level", lvl.Name,
		"seed", seed,
		"draws", res.Draws,
		"build_draws", res.BuildDraws,
		"overflows", res.Overflows)
	return res, nil
}

func (s *simulation) result() Result {
	res := Result{
		Draws:      s.decision.Drawn(),
		BuildDraws: s.build.Drawn(),
	}
	if s.alloc != nil {
		t := s.alloc.Overflows()
		res.Overflows = t.Count()
		if res.Overflows > 0 {
			res.OverflowHash = t.Sum()
		}
	}
	return res
}

func (s *simulation) run() error {
	s.alloc = alloc.New(s.build, s.lvl.WalkCapacity)
	for i := range s.lvl.Zones {
		z := &s.lvl.Zones[i]
		slots, err := z.Slots()
		if err != nil {
			return err
		}
		if err := s.alloc.AddZone(z.ZoneID, slots); err != nil {
			return err
		}
	}

	if len(s.lvl.Consumers) > 0 {
		return s.lvl.Consumers.Take(s.decision, s.out)
	}

	for i := range s.lvl.Zones {
		z := &s.lvl.Zones[i]
		if z.UnlockedBy.Type != level.UnlockNone && len(z.UnlockedBy.Zones) == 0 {
			return fmt.Errorf("zone %s %s unlock: %w", z.ZoneID, z.UnlockedBy.Type, consumer.ErrEmptyChoices)
		}
	}

	for _, p := range passes(s.lvl) {
		if err := s.pass(p); err != nil {
			return fmt.Errorf("layer %d dimension %d: %w", p.layer, p.dimension, err)
		}
	}
	return nil
}

// passes lists the generation passes: the three layers of dimension 0, then
// layer 0 of every other dimension that has zones.
func passes(lvl *level.Level) []pass {
	out := make([]pass, 0, level.Layers)
	for layer := range uint8(level.Layers) {
		out = append(out, pass{layer: layer})
	}
	for d := uint8(1); d <= level.MaxDimension; d++ {
		if lvl.HasDimension(d) {
			out = append(out, pass{dimension: d})
		}
	}
	return out
}

func (s *simulation) pass(p pass) error {
	if err := s.unlockKeys(p); err != nil {
		return err
	}
	if err := s.bulkKeys(p); err != nil {
		return err
	}

	for i := range s.lvl.Zones {
		z := &s.lvl.Zones[i]
		if z.Layer != p.layer || z.Dimension != p.dimension {
			continue
		}
		if err := s.zone(z); err != nil {
			return fmt.Errorf("zone %s: %w", z.ZoneID, err)
		}
	}

	if p.dimension == 0 {
		if o := s.lvl.Objective(p.layer); o != nil {
			if err := s.objective(o); err != nil {
				return fmt.Errorf("objective %s: %w", o.Name, err)
			}
		}
	}

	for _, req := range s.deferred.drain() {
		if err := s.fulfil(req); err != nil {
			return fmt.Errorf("deferred %s: %w", req, err)
		}
	}
	return nil
}

// unlockKeys places the keys and cells of every door whose first candidate
// lies in the pass.
func (s *simulation) unlockKeys(p pass) error {
	for i := range s.lvl.Zones {
		z := &s.lvl.Zones[i]
		u := z.UnlockedBy
		if u.Type == level.UnlockNone {
			continue
		}
		if first := u.Zones[0]; first.Layer != p.layer || first.Dimension != p.dimension {
			continue
		}

		var err error
		switch u.Type {
		case level.UnlockColoredKey:
			random.Skip(s.decision, 2)
			err = s.unlockKey(ColoredKey, u.Zones)
		case level.UnlockBulkheadKey:
			random.Skip(s.decision, 1)
			err = s.unlockKey(BulkKey, u.Zones)
		case level.UnlockCell:
			for range u.Placements() {
				loc := s.pick(u.Zones)
				s.deferred.cells = append(s.deferred.cells, SpawnRequest{
					Name:     Cell,
					Zone:     loc.ZoneID,
					Weights:  loc.Weights,
					Category: alloc.BigPickup,
				})
			}
		default:
			err = fmt.Errorf("%w: unlock type %s", level.ErrMalformed, u.Type)
		}
		if err != nil {
			return fmt.Errorf("unlocking zone %s: %w", z.ZoneID, err)
		}
	}
	return nil
}

func (s *simulation) unlockKey(name string, candidates []level.Location) error {
	loc := s.pick(candidates)
	slot, ok, err := s.place(loc.ZoneID, loc.Weights, alloc.Container)
	if err != nil {
		return err
	}
	s.build.Next()
	if ok {
		s.out.Emit(event.Key(name, loc.Zone, int32(slot)))
	}
	return nil
}

// bulkKeys places one key per bulk key pool of the layer whose first
// candidate is in the pass's dimension.
func (s *simulation) bulkKeys(p pass) error {
	for i, pool := range s.lvl.BulkKeys(p.layer) {
		if len(pool) == 0 {
			return fmt.Errorf("bulk key pool %d: %w", i, consumer.ErrEmptyChoices)
		}
		if pool[0].Dimension != p.dimension {
			continue
		}

		random.Skip(s.decision, 1)
		loc := s.pick(pool)
		slot, ok, err := s.place(loc.ZoneID, loc.Weights, alloc.Container)
		if err != nil {
			return fmt.Errorf("bulk key pool %d: %w", i, err)
		}
		if ok {
			s.out.Emit(event.Key(BulkKey, loc.Zone, int32(slot)))
		}
	}
	return nil
}

func (s *simulation) zone(z *level.Zone) error {
	random.Skip(s.build, z.BuildSkipBefore)

	resources := [...]struct {
		amount  float32
		weights alloc.Weights
	}{
		{z.Medi, z.MediWeights},
		{z.Disi, z.DisiWeights},
		{z.Ammo, z.AmmoWeights},
		{z.Tool, z.ToolWeights},
	}
	for i, kind := range event.ResourceKinds {
		if err := s.resources(z.ZoneID, kind, resources[i].amount, resources[i].weights); err != nil {
			return err
		}
	}

	for range z.ArtifactCount {
		if err := s.scatter(z.ZoneID, artifactContainerChance, ArtifactContainer, ArtifactWorldspawn); err != nil {
			return err
		}
	}
	for range z.ConsumableCount {
		if err := s.scatter(z.ZoneID, z.ConsumableContainerChance, ConsumableContainer, ConsumableWorldspawn); err != nil {
			return err
		}
	}

	for _, p := range z.BigPickups {
		if err := s.pickup(z.ZoneID, p, alloc.BigPickup); err != nil {
			return err
		}
	}
	for _, p := range z.OtherPickups {
		if err := s.pickup(z.ZoneID, p, alloc.Other); err != nil {
			return err
		}
	}

	random.Skip(s.build, z.BuildSkipAfter)
	return nil
}

func (s *simulation) resources(id alloc.ZoneID, kind event.ResourceKind, amount float32, w alloc.Weights) error {
	pool := consumer.NewResourcePool(kind, amount)
	for pool.Next() {
		s.decision.Next()
		size := pool.Take(s.decision.Next())

		slot, ok, err := s.place(id, w, alloc.Container)
		if err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		if ok {
			s.out.Emit(event.ResourcePack(kind, id.Zone, int32(slot), size))
		}
	}
	return nil
}

// scatter places one artifact or consumable. A build draw below chance puts
// it in a container, otherwise it lies in the world.
func (s *simulation) scatter(id alloc.ZoneID, chance float32, inContainer, inWorld string) error {
	c, name := alloc.SmallPickup, inWorld
	if s.build.Next() < chance {
		c, name = alloc.Container, inContainer
	}

	slot, ok, err := s.place(id, alloc.Weights{}, c)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !ok {
		return nil
	}
	if c == alloc.Container {
		s.decision.Next()
	}
	s.out.Emit(event.Key(name, id.Zone, int32(slot)))
	return nil
}

func (s *simulation) pickup(id alloc.ZoneID, p level.Pickup, c alloc.Category) error {
	slot, ok, err := s.place(id, p.Weights, c)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Name, err)
	}
	if ok {
		s.out.Emit(event.Key(p.Name, id.Zone, int32(slot)))
	}
	return nil
}

// candidate is one entry of an objective location group with the number of
// items it may still take.
type candidate struct {
	loc  level.Location
	left int
}

// objective distributes the items of a staged objective over its location
// groups. Group i serves item i mod len(groups). Every entry of a group may
// take MaxPerZone items and then leaves that group only.
func (s *simulation) objective(o *level.StagedObjective) error {
	if len(o.Consumers) > 0 {
		return o.Consumers.Take(s.decision, s.out)
	}
	if o.Count == 0 {
		return nil
	}
	if len(o.Locations) == 0 {
		return consumer.ErrEmptyChoices
	}

	// groups are copied so the shared level stays untouched.
	groups := make([][]candidate, len(o.Locations))
	for i, g := range o.Locations {
		groups[i] = make([]candidate, len(g))
		for j, loc := range g {
			groups[i][j] = candidate{loc: loc, left: o.MaxPerZone}
		}
	}

	for item := range o.Count {
		g := item % len(groups)
		options := groups[g]
		if len(options) == 0 {
			return fmt.Errorf("item %d group %d: %w", item, g, consumer.ErrEmptyChoices)
		}

		idx := 0
		if !o.Pinned() {
			idx = alloc.Uniform(s.decision.Next(), len(options))
		}
		loc := options[idx].loc
		options[idx].left--
		groups[g] = withBudget(options)

		if o.SpawnType == nil {
			continue
		}
		req := SpawnRequest{
			Name:       o.ItemName(),
			Zone:       loc.ZoneID,
			Weights:    loc.Weights,
			Category:   *o.SpawnType,
			SkipBefore: o.SkipBeforeAlloc,
			SkipAfter:  o.SkipAfterAlloc,
		}
		if !o.SpawnInLayer {
			s.deferred.items = append(s.deferred.items, req)
			continue
		}
		if err := s.fulfil(req); err != nil {
			return fmt.Errorf("item %d: %w", item, err)
		}
	}
	return nil
}

// withBudget keeps the entries that may still take items, in order.
func withBudget(options []candidate) []candidate {
	out := options[:0]
	for _, c := range options {
		if c.left > 0 {
			out = append(out, c)
		}
	}
	return out
}

func (s *simulation) fulfil(req SpawnRequest) error {
	random.Skip(s.decision, req.SkipBefore)
	slot, ok, err := s.place(req.Zone, req.Weights, req.Category)
	if err != nil {
		return err
	}
	if ok && req.Category == alloc.Container {
		s.decision.Next()
	}
	random.Skip(s.decision, req.SkipAfter)
	if ok {
		s.out.Emit(event.Key(req.Name, req.Zone.Zone, int32(slot)))
	}
	return nil
}

// pick draws one candidate uniformly. Callers guarantee candidates is not
// empty.
func (s *simulation) pick(candidates []level.Location) level.Location {
	return candidates[alloc.Uniform(s.decision.Next(), len(candidates))]
}

// place allocates one slot. ok is false when the category overflowed, which
// is tracked by the allocator and otherwise ignored.
func (s *simulation) place(id alloc.ZoneID, w alloc.Weights, c alloc.Category) (slot int, ok bool, err error) {
	slot, err = s.alloc.Spawn(id, w, c, s.decision)
	switch {
	case err == nil:
		return slot, true, nil
	case errors.Is(err, alloc.ErrOverflow):
		slog.Debug("placement overflow", "level", s.lvl.Name, "zone", id, "category", c)
		return 0, false, nil
	default:
		return 0, false, err
	}
}
