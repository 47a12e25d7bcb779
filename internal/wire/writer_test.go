package wire

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestWriter_WriteU8(t *testing.T) {
	w := NewWriter(16)

	w.WriteU8(0x42)

	data := w.Bytes()
	if len(data) != 1 {
		t.Fatalf("expected length 1, got %d", len(data))
	}
	if data[0] != 0x42 {
		t.Errorf("expected byte 0x42, got 0x%02X", data[0])
	}
}

func TestWriter_WriteBool(t *testing.T) {
	w := NewWriter(16)

	w.WriteBool(true)
	w.WriteBool(false)

	data := w.Bytes()
	if len(data) != 2 || data[0] != 1 || data[1] != 0 {
		t.Errorf("expected [1 0], got %v", data)
	}
}

func TestWriter_WriteI32(t *testing.T) {
	w := NewWriter(16)

	w.WriteI32(-2)

	data := w.Bytes()
	if len(data) != 4 {
		t.Fatalf("expected length 4, got %d", len(data))
	}

	val := int32(binary.LittleEndian.Uint32(data))
	if val != -2 {
		t.Errorf("expected -2, got %d", val)
	}
}

func TestWriter_WriteU64(t *testing.T) {
	w := NewWriter(16)

	w.WriteU64(0x123456789ABCDEF0)

	data := w.Bytes()
	if len(data) != 8 {
		t.Fatalf("expected length 8, got %d", len(data))
	}

	val := binary.LittleEndian.Uint64(data)
	if val != 0x123456789ABCDEF0 {
		t.Errorf("expected 0x123456789ABCDEF0, got 0x%016X", val)
	}
}

func TestWriter_WriteF32(t *testing.T) {
	w := NewWriter(16)

	w.WriteF32(0.88222855)

	bits := binary.LittleEndian.Uint32(w.Bytes())
	if bits != math.Float32bits(0.88222855) {
		t.Errorf("expected bits 0x%08X, got 0x%08X", math.Float32bits(0.88222855), bits)
	}
}

func TestWriter_WriteString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
	}{
		{
			name:     "empty string",
			input:    "",
			expected: []byte{0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:     "ASCII string",
			input:    "Cell",
			expected: []byte{4, 0, 0, 0, 0, 0, 0, 0, 'C', 'e', 'l', 'l'},
		},
		{
			name:     "multibyte string",
			input:    "ключ",
			expected: append([]byte{8, 0, 0, 0, 0, 0, 0, 0}, []byte("ключ")...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(64)
			w.WriteString(tt.input)

			data := w.Bytes()
			if len(data) != len(tt.expected) {
				t.Fatalf("expected length %d, got %d", len(tt.expected), len(data))
			}
			for i := range tt.expected {
				if data[i] != tt.expected[i] {
					t.Errorf("at index %d: expected 0x%02X, got 0x%02X", i, tt.expected[i], data[i])
				}
			}
		})
	}
}

func TestWriter_Pool(t *testing.T) {
	w := Get()
	w.WriteU32(7)
	if w.Len() != 4 {
		t.Fatalf("expected length 4, got %d", w.Len())
	}
	w.Put()

	w = Get()
	defer w.Put()
	if w.Len() != 0 {
		t.Errorf("pooled writer not reset: length %d", w.Len())
	}
}

func TestWriter_Reset(t *testing.T) {
	w := NewWriter(16)
	w.WriteU64(1)
	w.Reset()

	if w.Len() != 0 {
		t.Errorf("expected empty writer after Reset, got %d bytes", w.Len())
	}
}
