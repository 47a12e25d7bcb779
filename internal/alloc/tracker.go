package alloc

import (
	"crypto/sha256"
	"hash"
)

// Tracker counts overflows and accumulates a content hash over the zones in
// which they happened.
type Tracker struct {
	count int
	hash  hash.Hash
	buf   []byte
}

// Add records one overflow in zone id.
func (t *Tracker) Add(id ZoneID) {
	if t.hash == nil {
		t.hash = sha256.New()
	}
	t.buf = id.AppendBinary(t.buf[:0])
	t.hash.Write(t.buf)
	t.count++
}

// Count returns the number of recorded overflows.
func (t *Tracker) Count() int {
	return t.count
}

// Sum returns the SHA-256 over every recorded zone, in order.
func (t *Tracker) Sum() [32]byte {
	var out [32]byte
	if t.hash == nil {
		return sha256.Sum256(nil)
	}
	copy(out[:], t.hash.Sum(nil))
	return out
}
