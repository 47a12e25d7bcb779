// Package event defines the ordered output of a seed simulation and the
// encodings used to deliver it to subscribers.
package event

import (
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind is the variant of an Event. The numeric value is the variant index
// of the binary encoding.
type Kind uint32

const (
	KindSeed Kind = iota
	KindKey
	KindResourcePack
	KindConsumableFound
	KindOverflow
	KindGenerationEnd
	KindGenerationStart
	KindProcessFailed

	kindCount = 8
)

var kindNames = [kindCount]string{
	"Seed",
	"Key",
	"ResourcePack",
	"ConsumableFound",
	"Overflow",
	"GenerationEnd",
	"GenerationStart",
	"ProcessFailed",
}

// String returns the variant name used by the JSON encoding.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

func parseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// ResourceKind identifies a resource pack type.
type ResourceKind uint8

const (
	Healthpack ResourceKind = iota
	DisinfectPack
	Ammopack
	ToolRefillpack

	resourceKindCount = 4
)

var resourceNames = [resourceKindCount]string{
	"Healthpack",
	"DisinfectPack",
	"Ammopack",
	"ToolRefillpack",
}

// ResourceKinds lists every resource kind in generation order.
var ResourceKinds = [resourceKindCount]ResourceKind{Healthpack, DisinfectPack, Ammopack, ToolRefillpack}

// String returns the resource name.
func (r ResourceKind) String() string {
	if r < resourceKindCount {
		return resourceNames[r]
	}
	return fmt.Sprintf("ResourceKind(%d)", uint8(r))
}

// Valid reports whether r is a known resource kind.
func (r ResourceKind) Valid() bool {
	return r < resourceKindCount
}

// ParseResourceKind accepts the resource name or its short zone field
// alias (medi, disi, ammo, tool).
func ParseResourceKind(s string) (ResourceKind, error) {
	for i, name := range resourceNames {
		if name == s {
			return ResourceKind(i), nil
		}
	}
	switch s {
	case "medi":
		return Healthpack, nil
	case "disi":
		return DisinfectPack, nil
	case "ammo":
		return Ammopack, nil
	case "tool":
		return ToolRefillpack, nil
	}
	return 0, fmt.Errorf("unknown resource kind %q", s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *ResourceKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("decoding resource kind: %w", err)
	}
	parsed, err := ParseResourceKind(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r ResourceKind) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid resource kind %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ResourceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseResourceKind(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Event is one element of a simulation's output. Only the fields of its Kind
// are meaningful; use the constructors to build events.
type Event struct {
	Kind Kind

	// Name is the key or pickup name for Key and the level for GenerationStart.
	Name string
	Zone int32
	// Slot is the slot id for Key and ResourcePack and the box id for
	// ConsumableFound.
	Slot     int32
	Resource ResourceKind
	Size     uint8
	Found    bool
	Seed     float32
	Count    uint64
	Hash     [32]byte
}

// Key reports an item placed in slot of zone.
func Key(name string, zone, slot int32) Event {
	return Event{Kind: KindKey, Name: name, Zone: zone, Slot: slot}
}

// ResourcePack reports a resource pack of the given size placed in slot.
func ResourcePack(kind ResourceKind, zone, slot int32, size uint8) Event {
	return Event{Kind: KindResourcePack, Resource: kind, Zone: zone, Slot: slot, Size: size}
}

// ConsumableFound reports whether a tracked container received a consumable.
func ConsumableFound(box int32, found bool) Event {
	return Event{Kind: KindConsumableFound, Slot: box, Found: found}
}

// Seed passes a raw draw through to the output.
func Seed(v float32) Event {
	return Event{Kind: KindSeed, Seed: v}
}

// GenerationStart opens the output of level.
func GenerationStart(level string) Event {
	return Event{Kind: KindGenerationStart, Name: level}
}

// GenerationEnd closes a level's output.
func GenerationEnd() Event {
	return Event{Kind: KindGenerationEnd}
}

// Overflow reports how many placements found their category exhausted and the
// hash over the affected zones.
func Overflow(count uint64, hash [32]byte) Event {
	return Event{Kind: KindOverflow, Count: count, Hash: hash}
}

// ProcessFailed reports that the simulation stopped on malformed data.
func ProcessFailed() Event {
	return Event{Kind: KindProcessFailed}
}

// String formats the event for logs.
func (e Event) String() string {
	switch e.Kind {
	case KindSeed:
		return fmt.Sprintf("Seed(%v)", e.Seed)
	case KindKey:
		return fmt.Sprintf("Key(%s, %d, %d)", e.Name, e.Zone, e.Slot)
	case KindResourcePack:
		return fmt.Sprintf("ResourcePack(%s, %d, %d, %d)", e.Resource, e.Zone, e.Slot, e.Size)
	case KindConsumableFound:
		return fmt.Sprintf("ConsumableFound(%d, %t)", e.Slot, e.Found)
	case KindOverflow:
		return fmt.Sprintf("Overflow(%d, %s)", e.Count, hex.EncodeToString(e.Hash[:]))
	case KindGenerationStart:
		return fmt.Sprintf("GenerationStart(%s)", e.Name)
	default:
		return e.Kind.String()
	}
}
