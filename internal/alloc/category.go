package alloc

import (
	"encoding/binary"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Category is a kind of physical placement slot inside a room.
type Category uint8

const (
	Container Category = iota
	SmallPickup
	BigPickup
	Terminal
	Other

	categoryCount = 5
)

var categoryNames = [categoryCount]string{
	"container",
	"small_pickup",
	"big_pickup",
	"terminal",
	"other",
}

// overflowSkip is the number of build draws the game burns when a category
// has no slot left in the zone.
var overflowSkip = [categoryCount]int{4, 2, 1, 1, 1}

// String returns the configuration name of the category.
func (c Category) String() string {
	if int(c) < categoryCount {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return int(c) < categoryCount
}

// ParseCategory converts a configuration name into a Category.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown slot category %q", s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("decoding slot category: %w", err)
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Category) MarshalYAML() (any, error) {
	return c.String(), nil
}

// Weights are the start, middle and end emphasis of a placement.
type Weights [3]int32

// ZoneID addresses a zone inside a level.
type ZoneID struct {
	Layer     uint8 `yaml:"layer" json:"layer"`
	Dimension uint8 `yaml:"dimension" json:"dimension"`
	Zone      int32 `yaml:"zone" json:"zone"`
}

// String formats the identifier for logs.
func (id ZoneID) String() string {
	return fmt.Sprintf("L%d/D%d/Z%d", id.Layer, id.Dimension, id.Zone)
}

// AppendBinary appends the 6-byte little-endian form (layer, dimension, zone).
func (id ZoneID) AppendBinary(b []byte) []byte {
	b = append(b, id.Layer, id.Dimension)
	return binary.LittleEndian.AppendUint32(b, uint32(id.Zone))
}
