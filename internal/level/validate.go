package level

import (
	"errors"
	"fmt"

	"github.com/udisondev/gtfoseed/internal/alloc"
)

// ErrMalformed is wrapped by every validation failure.
var ErrMalformed = errors.New("malformed level")

// Validate reports every structural problem of the level. A level that fails
// validation can still be simulated; the run stops at the first placement
// that needs the missing data.
func (l *Level) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...)))
	}

	if l.SkipStart < 0 || l.BuildSeedSkip < 0 {
		fail("negative skip count")
	}

	zones := make(map[alloc.ZoneID]struct{}, len(l.Zones))
	for i := range l.Zones {
		z := &l.Zones[i]
		if _, dup := zones[z.ZoneID]; dup {
			fail("zone %s defined twice", z.ZoneID)
		}
		zones[z.ZoneID] = struct{}{}

		if z.Layer >= Layers {
			fail("zone %s: layer out of range", z.ZoneID)
		}
		if z.Dimension > MaxDimension {
			fail("zone %s: dimension out of range", z.ZoneID)
		}
		if z.Dimension > 0 && z.Layer != 0 {
			fail("zone %s: dimensions above 0 only have layer 0", z.ZoneID)
		}
		if len(z.Terminals) > len(z.Rooms) || len(z.Other) > len(z.Rooms) {
			fail("zone %s: more per-room slot counts than rooms", z.ZoneID)
		}
		if _, err := z.Slots(); err != nil {
			fail("zone %s: negative per-room slot count", z.ZoneID)
		}
		for _, amount := range [...]float32{z.Medi, z.Disi, z.Ammo, z.Tool} {
			if amount < 0 {
				fail("zone %s: negative resource amount", z.ZoneID)
				break
			}
		}
		if z.ConsumableCount < 0 || z.ArtifactCount < 0 {
			fail("zone %s: negative consumable count", z.ZoneID)
		}
		if z.ConsumableContainerChance < 0 || z.ConsumableContainerChance > 1 {
			fail("zone %s: consumable container chance out of [0, 1]", z.ZoneID)
		}
		if z.BuildSkipBefore < 0 || z.BuildSkipAfter < 0 {
			fail("zone %s: negative build skip", z.ZoneID)
		}
		if z.UnlockedBy.Type != UnlockNone && len(z.UnlockedBy.Zones) == 0 {
			fail("zone %s: %s unlock without candidate zones", z.ZoneID, z.UnlockedBy.Type)
		}
	}

	checkLocations := func(what string, locs []Location) {
		if len(locs) == 0 {
			fail("%s: empty candidate list", what)
		}
		for _, loc := range locs {
			if _, ok := zones[loc.ZoneID]; !ok {
				fail("%s: unknown zone %s", what, loc.ZoneID)
			}
		}
	}

	for i := range l.Zones {
		z := &l.Zones[i]
		if z.UnlockedBy.Type != UnlockNone && len(z.UnlockedBy.Zones) > 0 {
			checkLocations(fmt.Sprintf("zone %s unlock", z.ZoneID), z.UnlockedBy.Zones)
		}
	}
	for layer := range uint8(Layers) {
		for i, pool := range l.BulkKeys(layer) {
			checkLocations(fmt.Sprintf("layer %d bulk key pool %d", layer, i), pool)
		}
	}

	for layer, o := range l.StagedObjectives {
		if o == nil || len(o.Consumers) > 0 {
			continue
		}
		what := fmt.Sprintf("layer %d objective %s", layer, o.Name)
		if o.Count < 0 || o.SkipBeforeAlloc < 0 || o.SkipAfterAlloc < 0 {
			fail("%s: negative count", what)
		}
		if o.Count > 0 && len(o.Locations) == 0 {
			fail("%s: no location groups", what)
		}
		if o.MaxPerZone <= 0 && o.Count > 0 {
			fail("%s: max_per_zone must be positive", what)
		}
		if o.SpawnType != nil && !o.SpawnType.Valid() {
			fail("%s: invalid spawn type", what)
		}
		for g, group := range o.Locations {
			checkLocations(fmt.Sprintf("%s group %d", what, g), group)
		}
	}

	return errors.Join(errs...)
}
