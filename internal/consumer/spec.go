package consumer

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnknownTag is returned when a consumer description names no known variant.
var ErrUnknownTag = errors.New("unknown consumer tag")

const (
	tagIgnore             = "ignore"
	tagKeyID              = "key_id"
	tagOutputSeed         = "output_seed"
	tagResourceGeneration = "resource_generation"
	tagKey                = "key"
	tagZone               = "zone"
	tagObjective          = "objective"
	tagConsumable         = "consumable"
	tagChoiceWrapper      = "choice_wrapper"
)

// Spec is the configuration form of a consumer: a mapping with exactly one
// variant tag, e.g.
//
//	- ignore: 3
//	- key_id: {name: ColoredKey, zone: 12, spawns_per_room: [4, 6]}
//	- output_seed: {}
type Spec struct {
	Consumer Consumer
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	var (
		tag  string
		body *yaml.Node
	)
	switch node.Kind {
	case yaml.ScalarNode:
		tag = node.Value
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: consumer must have exactly one tag, got %d", node.Line, len(node.Content)/2)
		}
		tag, body = node.Content[0].Value, node.Content[1]
	default:
		return fmt.Errorf("line %d: consumer must be a mapping", node.Line)
	}

	c, err := decode(tag, body)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	s.Consumer = c
	return nil
}

func decode(tag string, body *yaml.Node) (Consumer, error) {
	switch tag {
	case tagIgnore:
		var n int
		if err := decodeBody(tag, body, &n); err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%s: negative count %d", tag, n)
		}
		return Ignore{Count: n}, nil
	case tagOutputSeed:
		return OutputSeed{}, nil
	case tagKeyID:
		return decodeAs[KeyID](tag, body)
	case tagResourceGeneration:
		return decodeAs[ResourceGeneration](tag, body)
	case tagKey:
		return decodeAs[Key](tag, body)
	case tagZone:
		return decodeAs[Zone](tag, body)
	case tagObjective:
		return decodeAs[Objective](tag, body)
	case tagConsumable:
		return decodeAs[Consumable](tag, body)
	case tagChoiceWrapper:
		return decodeAs[ChoiceWrapper](tag, body)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownTag, tag)
	}
}

func decodeAs[T Consumer](tag string, body *yaml.Node) (Consumer, error) {
	var c T
	if err := decodeBody(tag, body, &c); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeBody(tag string, body *yaml.Node, v any) error {
	if body == nil {
		return fmt.Errorf("%s: missing body", tag)
	}
	if err := body.Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", tag, err)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Spec) MarshalYAML() (any, error) {
	var tag string
	var body any = s.Consumer
	switch c := s.Consumer.(type) {
	case Ignore:
		tag, body = tagIgnore, c.Count
	case OutputSeed:
		tag, body = tagOutputSeed, map[string]any{}
	case KeyID:
		tag = tagKeyID
	case ResourceGeneration:
		tag = tagResourceGeneration
	case Key:
		tag = tagKey
	case Zone:
		tag = tagZone
	case Objective:
		tag = tagObjective
	case Consumable:
		tag = tagConsumable
	case ChoiceWrapper:
		tag = tagChoiceWrapper
	default:
		return nil, fmt.Errorf("marshaling consumer %T: %w", s.Consumer, ErrUnknownTag)
	}
	return map[string]any{tag: body}, nil
}

// UnmarshalYAML decodes a sequence of consumer specs.
func (c *Chain) UnmarshalYAML(node *yaml.Node) error {
	var specs []Spec
	if err := node.Decode(&specs); err != nil {
		return err
	}
	out := make(Chain, len(specs))
	for i, s := range specs {
		out[i] = s.Consumer
	}
	*c = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Chain) MarshalYAML() (any, error) {
	specs := make([]Spec, len(c))
	for i, m := range c {
		specs[i] = Spec{Consumer: m}
	}
	return specs, nil
}
