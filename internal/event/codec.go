package event

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/udisondev/gtfoseed/internal/wire"
)

// ErrUnknownKind is returned when decoding an event of an unknown variant.
var ErrUnknownKind = errors.New("unknown event kind")

// Format selects how events are serialized for a subscriber.
type Format uint8

const (
	FormatJSON Format = iota
	FormatBinary
)

// String returns the configuration name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatBinary:
		return "binary"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat converts a configuration name into a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json", "JSON":
		return FormatJSON, nil
	case "binary", "bin":
		return FormatBinary, nil
	default:
		return 0, fmt.Errorf("unknown event format %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Encode serializes e in format f.
func Encode(f Format, e Event) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.Marshal(e)
	case FormatBinary:
		return MarshalBinary(e)
	default:
		return nil, fmt.Errorf("encoding %s: unsupported %s", e.Kind, f)
	}
}

// MarshalBinary returns the binary form of e: a u32 variant index followed
// by the variant fields.
func MarshalBinary(e Event) ([]byte, error) {
	w := wire.Get()
	defer w.Put()

	if err := write(w, e); err != nil {
		return nil, err
	}
	out := make([]byte, w.Len())
	copy(out, w.Bytes())
	return out, nil
}

// AppendBinary appends the binary form of e to w.
func AppendBinary(w *wire.Writer, e Event) error {
	return write(w, e)
}

func write(w *wire.Writer, e Event) error {
	if e.Kind >= kindCount {
		return fmt.Errorf("encoding event: %w: %d", ErrUnknownKind, uint32(e.Kind))
	}
	w.WriteU32(uint32(e.Kind))

	switch e.Kind {
	case KindSeed:
		w.WriteF32(e.Seed)
	case KindKey:
		w.WriteString(e.Name)
		w.WriteI32(e.Zone)
		w.WriteI32(e.Slot)
	case KindResourcePack:
		w.WriteU32(uint32(e.Resource))
		w.WriteI32(e.Zone)
		w.WriteI32(e.Slot)
		w.WriteU8(e.Size)
	case KindConsumableFound:
		w.WriteI32(e.Slot)
		w.WriteBool(e.Found)
	case KindOverflow:
		w.WriteU64(e.Count)
		w.WriteBytes(e.Hash[:])
	case KindGenerationStart:
		w.WriteString(e.Name)
	}
	return nil
}

// Decode reads one binary event from the start of data and returns it with
// the number of bytes consumed.
func Decode(data []byte) (Event, int, error) {
	r := wire.NewReader(data)
	e, err := read(r)
	if err != nil {
		return Event{}, 0, err
	}
	return e, r.Position(), nil
}

// DecodeAll reads a concatenation of binary events.
func DecodeAll(data []byte) ([]Event, error) {
	r := wire.NewReader(data)
	var out []Event
	for r.Remaining() > 0 {
		e, err := read(r)
		if err != nil {
			return out, fmt.Errorf("decoding event %d: %w", len(out), err)
		}
		out = append(out, e)
	}
	return out, nil
}

func read(r *wire.Reader) (Event, error) {
	kind, err := r.ReadU32()
	if err != nil {
		return Event{}, fmt.Errorf("reading kind: %w", err)
	}

	e := Event{Kind: Kind(kind)}
	switch e.Kind {
	case KindSeed:
		e.Seed, err = r.ReadF32()
	case KindKey:
		if e.Name, err = r.ReadString(); err != nil {
			break
		}
		if e.Zone, err = r.ReadI32(); err != nil {
			break
		}
		e.Slot, err = r.ReadI32()
	case KindResourcePack:
		var res uint32
		if res, err = r.ReadU32(); err != nil {
			break
		}
		if res >= resourceKindCount {
			err = fmt.Errorf("invalid resource kind %d", res)
			break
		}
		e.Resource = ResourceKind(res)
		if e.Zone, err = r.ReadI32(); err != nil {
			break
		}
		if e.Slot, err = r.ReadI32(); err != nil {
			break
		}
		e.Size, err = r.ReadU8()
	case KindConsumableFound:
		if e.Slot, err = r.ReadI32(); err != nil {
			break
		}
		e.Found, err = r.ReadBool()
	case KindOverflow:
		if e.Count, err = r.ReadU64(); err != nil {
			break
		}
		var b []byte
		if b, err = r.ReadBytes(len(e.Hash)); err != nil {
			break
		}
		copy(e.Hash[:], b)
	case KindGenerationStart:
		e.Name, err = r.ReadString()
	case KindGenerationEnd, KindProcessFailed:
	default:
		return Event{}, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	if err != nil {
		return Event{}, fmt.Errorf("reading %s: %w", e.Kind, err)
	}
	return e, nil
}

// MarshalJSON encodes e externally tagged: unit variants as a bare string,
// single-field variants as {"Kind": value} and the rest as {"Kind": [fields]}.
func (e Event) MarshalJSON() ([]byte, error) {
	var payload any
	switch e.Kind {
	case KindGenerationEnd, KindProcessFailed:
		return json.Marshal(e.Kind.String())
	case KindSeed:
		payload = e.Seed
	case KindKey:
		payload = []any{e.Name, e.Zone, e.Slot}
	case KindResourcePack:
		payload = []any{e.Resource, e.Zone, e.Slot, e.Size}
	case KindConsumableFound:
		payload = []any{e.Slot, e.Found}
	case KindOverflow:
		payload = []any{e.Count, hex.EncodeToString(e.Hash[:])}
	case KindGenerationStart:
		payload = e.Name
	default:
		return nil, fmt.Errorf("encoding event: %w: %d", ErrUnknownKind, uint32(e.Kind))
	}
	return json.Marshal(map[string]any{e.Kind.String(): payload})
}

// UnmarshalJSON implements json.Unmarshaler for the MarshalJSON form.
func (e *Event) UnmarshalJSON(data []byte) error {
	var unit string
	if err := json.Unmarshal(data, &unit); err == nil {
		kind, ok := parseKind(unit)
		if !ok || (kind != KindGenerationEnd && kind != KindProcessFailed) {
			return fmt.Errorf("%w: %q", ErrUnknownKind, unit)
		}
		*e = Event{Kind: kind}
		return nil
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decoding event: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("decoding event: expected one variant, got %d", len(tagged))
	}

	for tag, raw := range tagged {
		kind, ok := parseKind(tag)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKind, tag)
		}
		out := Event{Kind: kind}
		var err error
		switch kind {
		case KindSeed:
			err = json.Unmarshal(raw, &out.Seed)
		case KindKey:
			err = unmarshalTuple(raw, &out.Name, &out.Zone, &out.Slot)
		case KindResourcePack:
			err = unmarshalTuple(raw, &out.Resource, &out.Zone, &out.Slot, &out.Size)
		case KindConsumableFound:
			err = unmarshalTuple(raw, &out.Slot, &out.Found)
		case KindOverflow:
			var digest string
			if err = unmarshalTuple(raw, &out.Count, &digest); err != nil {
				break
			}
			var b []byte
			if b, err = hex.DecodeString(digest); err != nil {
				break
			}
			if len(b) != len(out.Hash) {
				err = fmt.Errorf("overflow hash has %d bytes", len(b))
				break
			}
			copy(out.Hash[:], b)
		case KindGenerationStart:
			err = json.Unmarshal(raw, &out.Name)
		default:
			err = fmt.Errorf("unexpected payload for unit variant %s", kind)
		}
		if err != nil {
			return fmt.Errorf("decoding %s: %w", kind, err)
		}
		*e = out
	}
	return nil
}

func unmarshalTuple(raw json.RawMessage, fields ...any) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	if len(items) != len(fields) {
		return fmt.Errorf("expected %d fields, got %d", len(fields), len(items))
	}
	for i, item := range items {
		if err := json.Unmarshal(item, fields[i]); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
	}
	return nil
}

// Digest returns the BLAKE2b-256 hash of the binary encoding of events.
// Two runs with the same digest produced byte-identical output.
func Digest(events []Event) ([32]byte, error) {
	var sum [32]byte
	h, err := blake2b.New256(nil)
	if err != nil {
		return sum, fmt.Errorf("creating digest: %w", err)
	}

	w := wire.Get()
	defer w.Put()
	for _, e := range events {
		w.Reset()
		if err := write(w, e); err != nil {
			return sum, err
		}
		h.Write(w.Bytes())
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
