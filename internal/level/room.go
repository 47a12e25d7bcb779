package level

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RoomSize is one of the fixed room sizes or a custom slot layout.
type RoomSize struct {
	name   string
	custom [3]int
}

// Fixed room sizes.
var (
	Tiny   = RoomSize{name: "Tiny"}
	Small  = RoomSize{name: "Small"}
	Medium = RoomSize{name: "Medium"}
	Large  = RoomSize{name: "Large"}
	Huge   = RoomSize{name: "Huge"}
)

// slots per size: containers, small pickups, big pickups
var roomSlots = map[string][3]int{
	"Tiny":   {1, 2, 1},
	"Small":  {4, 3, 1},
	"Medium": {6, 6, 2},
	"Large":  {9, 8, 3},
	"Huge":   {14, 10, 5},
}

// CustomRoom returns a room with explicit container, small and big pickup slots.
func CustomRoom(containers, small, big int) RoomSize {
	return RoomSize{custom: [3]int{containers, small, big}}
}

func (r RoomSize) slots() [3]int {
	if r.name == "" {
		return r.custom
	}
	return roomSlots[r.name]
}

// Containers returns the number of container slots.
func (r RoomSize) Containers() int { return r.slots()[0] }

// SmallPickups returns the number of small pickup slots.
func (r RoomSize) SmallPickups() int { return r.slots()[1] }

// BigPickups returns the number of big pickup slots.
func (r RoomSize) BigPickups() int { return r.slots()[2] }

// String returns the size name or other(c,s,b).
func (r RoomSize) String() string {
	if r.name != "" {
		return r.name
	}
	return fmt.Sprintf("other(%d,%d,%d)", r.custom[0], r.custom[1], r.custom[2])
}

// UnmarshalYAML accepts a size name or {other: [containers, small, big]}.
func (r *RoomSize) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if _, ok := roomSlots[value.Value]; !ok {
			return fmt.Errorf("line %d: unknown room size %q", value.Line, value.Value)
		}
		*r = RoomSize{name: value.Value}
		return nil
	}

	var custom struct {
		Other []int `yaml:"other"`
	}
	if err := value.Decode(&custom); err != nil {
		return fmt.Errorf("line %d: decoding room size: %w", value.Line, err)
	}
	if len(custom.Other) != 3 {
		return fmt.Errorf("line %d: custom room needs 3 slot counts, got %d", value.Line, len(custom.Other))
	}
	for _, n := range custom.Other {
		if n < 0 {
			return fmt.Errorf("line %d: negative slot count in custom room", value.Line)
		}
	}
	*r = CustomRoom(custom.Other[0], custom.Other[1], custom.Other[2])
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r RoomSize) MarshalYAML() (any, error) {
	if r.name != "" {
		return r.name, nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, n := range r.custom {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(n)})
	}
	node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: "other"}, seq)
	return node, nil
}
