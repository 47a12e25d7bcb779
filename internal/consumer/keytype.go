package consumer

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// KeyType selects how many draws precede the zone pick of a Key.
type KeyType uint8

const (
	ColoredKey KeyType = iota
	BulkheadKey
	OtherKey
)

var keyTypeNames = [...]string{"colored_key", "bulkhead_key", "other"}

// FirstID returns the number of draws burnt before the zone pick.
func (t KeyType) FirstID() int {
	switch t {
	case ColoredKey:
		return 2
	case BulkheadKey:
		return 1
	default:
		return 0
	}
}

// String returns the configuration name.
func (t KeyType) String() string {
	if int(t) < len(keyTypeNames) {
		return keyTypeNames[t]
	}
	return fmt.Sprintf("KeyType(%d)", uint8(t))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *KeyType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("decoding key type: %w", err)
	}
	for i, name := range keyTypeNames {
		if name == s {
			*t = KeyType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown key type %q", s)
}

// MarshalYAML implements yaml.Marshaler.
func (t KeyType) MarshalYAML() (any, error) {
	return t.String(), nil
}
