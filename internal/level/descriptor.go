package level

import (
	"fmt"
	"sort"
	"strings"
)

// Rundown identifies a content release. Values match the game's rundown ids.
type Rundown uint8

const (
	Modded   Rundown = 0
	OGR1     Rundown = 17
	OGR2     Rundown = 19
	OGR3     Rundown = 22
	OGR4     Rundown = 25
	OGR5     Rundown = 26
	OGR6     Rundown = 29
	R7       Rundown = 31
	R1       Rundown = 32
	R2       Rundown = 33
	R3       Rundown = 34
	R8       Rundown = 35
	R4       Rundown = 37
	R5       Rundown = 38
	Training Rundown = 39
	R6       Rundown = 41
)

var rundownNames = map[Rundown]string{
	Modded:   "$R",
	OGR1:     "OG.R1",
	OGR2:     "OG.R2",
	OGR3:     "OG.R3",
	OGR4:     "OG.R4",
	OGR5:     "OG.R5",
	OGR6:     "OG.R6",
	R1:       "R1",
	R2:       "R2",
	R3:       "R3",
	R4:       "R4",
	R5:       "R5",
	R6:       "R6",
	R7:       "R7",
	R8:       "R8",
	Training: "TRAINING",
}

// rundownPrefixes is rundownNames ordered longest first so "OG.R1" wins over "R1".
var rundownPrefixes = func() []Rundown {
	out := make([]Rundown, 0, len(rundownNames))
	for r := range rundownNames {
		if r != Training {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := rundownNames[out[i]], rundownNames[out[j]]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return out
}()

// String returns the canonical rundown prefix.
func (r Rundown) String() string {
	if name, ok := rundownNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rundown(%d)", uint8(r))
}

// Descriptor identifies a level: rundown, tier (A = 0) and index (1 = 0).
type Descriptor struct {
	Rundown Rundown
	Tier    uint8
	Level   uint8
}

// String returns the canonical form used as catalog key, e.g. "R1A1",
// "OG.R2B3" or "TRAINING".
func (d Descriptor) String() string {
	if d.Rundown == Training {
		return "TRAINING"
	}
	return fmt.Sprintf("%s%c%c", d.Rundown, 'A'+d.Tier, '1'+d.Level)
}

// ParseDescriptor parses the canonical form produced by String.
func ParseDescriptor(s string) (Descriptor, error) {
	if s == "TRAINING" {
		return Descriptor{Rundown: Training}, nil
	}

	for _, r := range rundownPrefixes {
		rest, ok := strings.CutPrefix(s, rundownNames[r])
		if !ok {
			continue
		}
		if len(rest) != 2 {
			return Descriptor{}, fmt.Errorf("level %q: expected tier and index after %s", s, r)
		}
		tier, index := rest[0], rest[1]
		if tier < 'A' || tier > 'Z' {
			return Descriptor{}, fmt.Errorf("level %q: invalid tier %q", s, tier)
		}
		if index < '1' || index > '9' {
			return Descriptor{}, fmt.Errorf("level %q: invalid index %q", s, index)
		}
		return Descriptor{Rundown: r, Tier: tier - 'A', Level: index - '1'}, nil
	}
	return Descriptor{}, fmt.Errorf("level %q: unknown rundown", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Descriptor) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Descriptor) UnmarshalText(text []byte) error {
	parsed, err := ParseDescriptor(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
