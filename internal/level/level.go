// Package level holds the static description of levels: zones, unlock
// methods, bulk key pools and staged objectives, and the catalog they are
// loaded into.
package level

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/gtfoseed/internal/alloc"
	"github.com/udisondev/gtfoseed/internal/consumer"
)

// MaxDimension is the highest dimension index a level can use.
const MaxDimension = 20

// Layers is the number of layers within dimension 0.
const Layers = 3

// Location is a candidate zone for a placement together with its weights.
type Location struct {
	alloc.ZoneID `yaml:",inline"`
	Weights      alloc.Weights `yaml:"weights,flow"`
}

// Pickup is a named item placed in a zone.
type Pickup struct {
	Name    string        `yaml:"name"`
	Weights alloc.Weights `yaml:"weights,flow"`
}

// UnlockType is how a zone's door is opened.
type UnlockType uint8

const (
	UnlockNone UnlockType = iota
	UnlockColoredKey
	UnlockBulkheadKey
	UnlockCell
)

var unlockNames = [...]string{"none", "colored_key", "bulkhead_key", "cell"}

// String returns the configuration name.
func (u UnlockType) String() string {
	if int(u) < len(unlockNames) {
		return unlockNames[u]
	}
	return fmt.Sprintf("UnlockType(%d)", uint8(u))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (u *UnlockType) UnmarshalYAML(value *yaml.Node) error {
	for i, name := range unlockNames {
		if name == value.Value {
			*u = UnlockType(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown unlock type %q", value.Line, value.Value)
}

// MarshalYAML implements yaml.Marshaler.
func (u UnlockType) MarshalYAML() (any, error) {
	return u.String(), nil
}

// UnlockMethod describes the key or cells that open a zone and the zones
// they may be placed in.
type UnlockMethod struct {
	Type UnlockType `yaml:"type"`
	// PlacementCount is the number of cells for UnlockCell. Zero means one.
	PlacementCount int        `yaml:"placement_count,omitempty"`
	Zones          []Location `yaml:"zones,omitempty"`
}

// Placements returns the effective cell count.
func (u UnlockMethod) Placements() int {
	if u.PlacementCount <= 0 {
		return 1
	}
	return u.PlacementCount
}

// Zone is the static configuration of one zone.
type Zone struct {
	alloc.ZoneID `yaml:",inline"`

	Rooms []RoomSize `yaml:"rooms,flow"`
	// Terminals and Other are per-room slot counts; missing rooms have none.
	Terminals []int `yaml:"terminals,flow,omitempty"`
	Other     []int `yaml:"other,flow,omitempty"`

	Medi        float32       `yaml:"medi"`
	MediWeights alloc.Weights `yaml:"medi_weights,flow"`
	Disi        float32       `yaml:"disi"`
	DisiWeights alloc.Weights `yaml:"disi_weights,flow"`
	Ammo        float32       `yaml:"ammo"`
	AmmoWeights alloc.Weights `yaml:"ammo_weights,flow"`
	Tool        float32       `yaml:"tool"`
	ToolWeights alloc.Weights `yaml:"tool_weights,flow"`

	ConsumableCount           int     `yaml:"consumable_count"`
	ArtifactCount             int     `yaml:"artifact_count"`
	ConsumableContainerChance float32 `yaml:"consumable_container_chance"`

	BigPickups   []Pickup `yaml:"big_pickups,omitempty"`
	OtherPickups []Pickup `yaml:"other_pickups,omitempty"`

	UnlockedBy UnlockMethod `yaml:"unlocked_by"`

	BuildSkipBefore int `yaml:"build_skip_before,omitempty"`
	BuildSkipAfter  int `yaml:"build_skip_after,omitempty"`
}

// Slots returns the allocator layout of the zone's rooms. Negative slot
// counts are reported as ErrMalformed.
func (z *Zone) Slots() ([]alloc.RoomSlots, error) {
	out := make([]alloc.RoomSlots, len(z.Rooms))
	for i, room := range z.Rooms {
		out[i][alloc.Container] = room.Containers()
		out[i][alloc.SmallPickup] = room.SmallPickups()
		out[i][alloc.BigPickup] = room.BigPickups()
		if i < len(z.Terminals) {
			out[i][alloc.Terminal] = z.Terminals[i]
		}
		if i < len(z.Other) {
			out[i][alloc.Other] = z.Other[i]
		}
		for c, n := range out[i] {
			if n < 0 {
				return nil, fmt.Errorf("%w: zone %s room %d: negative %s count %d",
					ErrMalformed, z.ZoneID, i, alloc.Category(c), n)
			}
		}
	}
	return out, nil
}

// StagedObjective places the items of one layer's objective. An objective
// with Consumers runs them instead of distributing Count items.
type StagedObjective struct {
	Name string `yaml:"name"`
	// Locations are the candidate groups; item i draws from group i mod len.
	Locations  [][]Location `yaml:"locations,omitempty"`
	Count      int          `yaml:"count,omitempty"`
	MaxPerZone int          `yaml:"max_per_zone,omitempty"`
	// SpawnType is the slot category of the items. Without it the picks are
	// drawn but nothing is placed.
	SpawnType *alloc.Category `yaml:"spawn_type,omitempty"`
	// SpawnInLayer places items immediately instead of after the zone loop.
	SpawnInLayer    bool `yaml:"spawn_in_layer,omitempty"`
	SkipBeforeAlloc int  `yaml:"skip_before_alloc,omitempty"`
	SkipAfterAlloc  int  `yaml:"skip_after_alloc,omitempty"`

	Consumers consumer.Chain `yaml:"consumers,omitempty"`
}

// Objective names with special handling.
const (
	PowerCellDistribution   = "PowerCellDistribution"
	CentralGeneratorCluster = "CentralGeneratorCluster"
)

// ItemName returns the key name reported for placed items.
func (o *StagedObjective) ItemName() string {
	if o.Name == CentralGeneratorCluster {
		return "Cell"
	}
	return o.Name
}

// Pinned reports whether every pick uses the first candidate without a draw.
func (o *StagedObjective) Pinned() bool {
	return o.Name == PowerCellDistribution
}

// Level is the static configuration of one level.
type Level struct {
	// Name is the catalog key, set on load.
	Name string `yaml:"-"`

	SkipStart     int   `yaml:"skip_start"`
	BuildSeed     int32 `yaml:"build_seed"`
	BuildSeedSkip int   `yaml:"build_seed_skip"`
	// WalkCapacity selects container slots by remaining capacity instead of
	// slot count.
	WalkCapacity bool `yaml:"walk_capacity,omitempty"`

	// Consumers describes levels that are only a consumer chain.
	Consumers consumer.Chain `yaml:"consumers,omitempty"`

	Zones        []Zone       `yaml:"zones,omitempty"`
	BulkKeysMain [][]Location `yaml:"bulk_keys_main,omitempty"`
	BulkKeysSec  [][]Location `yaml:"bulk_keys_sec,omitempty"`
	BulkKeysOvrl [][]Location `yaml:"bulk_keys_ovrl,omitempty"`
	// StagedObjectives is indexed by layer; nil entries have no objective.
	StagedObjectives []*StagedObjective `yaml:"staged_objectives,omitempty"`
}

// BulkKeys returns the bulk key pools of layer.
func (l *Level) BulkKeys(layer uint8) [][]Location {
	switch layer {
	case 0:
		return l.BulkKeysMain
	case 1:
		return l.BulkKeysSec
	default:
		return l.BulkKeysOvrl
	}
}

// Objective returns the staged objective of layer, or nil.
func (l *Level) Objective(layer uint8) *StagedObjective {
	if int(layer) >= len(l.StagedObjectives) {
		return nil
	}
	return l.StagedObjectives[layer]
}

// HasDimension reports whether any zone lives in dimension d.
func (l *Level) HasDimension(d uint8) bool {
	for i := range l.Zones {
		if l.Zones[i].Dimension == d {
			return true
		}
	}
	return false
}
