// Package wire implements the little-endian binary encoding used for event
// delivery to native subscribers: fixed-width integers and floats, one-byte
// booleans and UTF-8 strings prefixed with a u64 byte length.
package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
)

// Writer appends encoded values to an internal buffer.
type Writer struct {
	buf *bytes.Buffer
}

// writerPool reduces allocations by reusing Writers.
// Get() returns a Writer with Reset() called, Put() returns it to pool.
var writerPool = sync.Pool{
	New: func() any {
		return &Writer{
			buf: bytes.NewBuffer(make([]byte, 0, 128)),
		}
	},
}

// Get returns a Writer from the pool (already Reset).
func Get() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// Put returns a Writer to the pool for reuse.
// IMPORTANT: Do not use the Writer or its Bytes after calling Put.
func (w *Writer) Put() {
	writerPool.Put(w)
}

// NewWriter creates a new writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{
		buf: bytes.NewBuffer(make([]byte, 0, capacity)),
	}
}

// WriteU8 writes a single byte.
func (w *Writer) WriteU8(val uint8) {
	w.buf.WriteByte(val)
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(val bool) {
	if val {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

// WriteU32 writes a uint32 (4 bytes, LE).
func (w *Writer) WriteU32(val uint32) {
	w.buf.WriteByte(byte(val))
	w.buf.WriteByte(byte(val >> 8))
	w.buf.WriteByte(byte(val >> 16))
	w.buf.WriteByte(byte(val >> 24))
}

// WriteI32 writes an int32 (4 bytes, LE).
func (w *Writer) WriteI32(val int32) {
	w.WriteU32(uint32(val))
}

// WriteU64 writes a uint64 (8 bytes, LE).
func (w *Writer) WriteU64(val uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], val)
	w.buf.Write(tmp[:])
}

// WriteF32 writes a float32 as its IEEE 754 bits (4 bytes, LE).
func (w *Writer) WriteF32(val float32) {
	w.WriteU32(math.Float32bits(val))
}

// WriteString writes the u64 byte length followed by the UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteU64(uint64(len(s)))
	w.buf.WriteString(s)
}

// WriteBytes writes raw bytes without a length prefix.
func (w *Writer) WriteBytes(data []byte) {
	_, _ = w.buf.Write(data)
}

// Bytes returns the accumulated data.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Reset clears the buffer for reuse.
func (w *Writer) Reset() {
	w.buf.Reset()
}
