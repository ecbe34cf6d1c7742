// Package bitseq implements the packed bit sequence backing bit-string
// chromosomes: fixed-length bit storage with zero-copy subviews and
// copy-on-write snapshotting.
package bitseq

import (
	"fmt"
	"sync/atomic"

	"meiosis/internal/model"
)

// buffer is the shared backing storage. Once shared is set the bytes are
// never written in place again; every writer clones first.
type buffer struct {
	bytes  []byte
	shared atomic.Bool
}

// Seq is a fixed-length mutable bit sequence, possibly a subview over a
// buffer shared with other sequences.
type Seq struct {
	buf    *buffer
	start  int // bit offset into buf.bytes
	length int
}

// Sealed is an immutable handle over a sealed buffer. Its contents never
// change after Seal returns it.
type Sealed struct {
	buf    *buffer
	start  int
	length int
}

// New creates a zero-initialized sequence of length bits backed by
// ceil(length/8) bytes.
func New(length int) (*Seq, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", model.ErrInvalidArgument, length)
	}
	return &Seq{
		buf:    &buffer{bytes: make([]byte, (length+7)/8)},
		length: length,
	}, nil
}

// Len reports the number of bits.
func (s *Seq) Len() int {
	return s.length
}

// Get reads the bit at index.
func (s *Seq) Get(index int) (bool, error) {
	if index < 0 || index >= s.length {
		return false, fmt.Errorf("%w: bit %d of %d", model.ErrOutOfRange, index, s.length)
	}
	return getBit(s.buf.bytes, s.start+index), nil
}

// Set writes the bit at index, cloning the backing buffer first if it has
// been sealed.
func (s *Seq) Set(index int, value bool) error {
	if index < 0 || index >= s.length {
		return fmt.Errorf("%w: bit %d of %d", model.ErrOutOfRange, index, s.length)
	}
	s.cloneIfShared()
	setBit(s.buf.bytes, s.start+index, value)
	return nil
}

// Sub returns a sequence sharing the same backing bytes, offset by start and
// covering end-start bits. No copy occurs.
func (s *Seq) Sub(start, end int) (*Seq, error) {
	if start < 0 || start > end || end > s.length {
		return nil, fmt.Errorf("%w: subview [%d, %d) of %d", model.ErrOutOfRange, start, end, s.length)
	}
	return &Seq{buf: s.buf, start: s.start + start, length: end - start}, nil
}

// Seal marks the current backing buffer shared and returns an immutable
// handle over it. O(1); the deferred O(n) clone cost lands on the next
// mutation through this or any other view of the buffer.
func (s *Seq) Seal() *Sealed {
	s.buf.shared.Store(true)
	return &Sealed{buf: s.buf, start: s.start, length: s.length}
}

// Copy returns an eager, fully independent duplicate with no future clone
// cost.
func (s *Seq) Copy() *Seq {
	return copyRange(s.buf.bytes, s.start, s.length)
}

// Swap exchanges bits [start, end) of s with bits [otherStart, otherEnd) of
// other in place. Both ranges must have equal length. Either operand whose
// buffer is sealed is cloned before mutation.
func (s *Seq) Swap(start, end int, other *Seq, otherStart, otherEnd int) error {
	if other == nil {
		return fmt.Errorf("%w: nil swap peer", model.ErrInvalidArgument)
	}
	if start < 0 || start > end || end > s.length {
		return fmt.Errorf("%w: swap range [%d, %d) of %d", model.ErrOutOfRange, start, end, s.length)
	}
	if otherStart < 0 || otherStart > otherEnd || otherEnd > other.length {
		return fmt.Errorf("%w: swap range [%d, %d) of %d", model.ErrOutOfRange, otherStart, otherEnd, other.length)
	}
	if end-start != otherEnd-otherStart {
		return fmt.Errorf("%w: swap ranges %d and %d bits", model.ErrLengthMismatch, end-start, otherEnd-otherStart)
	}

	s.cloneIfShared()
	other.cloneIfShared()
	swapRange(s.buf.bytes, s.start+start, s.start+end, other.buf.bytes, other.start+otherStart)
	return nil
}

// cloneIfShared redirects the sequence to a private copy of the backing
// bytes when the buffer has been sealed. The flag on a shared buffer is
// never cleared, so concurrent writers over the same sealed buffer each end
// up on their own clone and the sealed bytes stay untouched.
func (s *Seq) cloneIfShared() {
	if s.buf.shared.Load() {
		s.buf = &buffer{bytes: append([]byte(nil), s.buf.bytes...)}
	}
}

// Len reports the number of bits.
func (h *Sealed) Len() int {
	return h.length
}

// Get reads the bit at index.
func (h *Sealed) Get(index int) (bool, error) {
	if index < 0 || index >= h.length {
		return false, fmt.Errorf("%w: bit %d of %d", model.ErrOutOfRange, index, h.length)
	}
	return getBit(h.buf.bytes, h.start+index), nil
}

// Copy returns an independent mutable duplicate of the sealed contents.
func (h *Sealed) Copy() *Seq {
	return copyRange(h.buf.bytes, h.start, h.length)
}

// copyRange packs length bits starting at bit offset start into a fresh
// sequence. Byte-aligned sources copy whole bytes.
func copyRange(bytes []byte, start, length int) *Seq {
	out := &Seq{
		buf:    &buffer{bytes: make([]byte, (length+7)/8)},
		length: length,
	}
	if start&7 == 0 {
		copy(out.buf.bytes, bytes[start>>3:])
		// Mask off trailing bits beyond length carried in by the byte copy.
		if rem := length & 7; rem != 0 {
			out.buf.bytes[len(out.buf.bytes)-1] &= byte(1<<uint(rem)) - 1
		}
		return out
	}
	for i := 0; i < length; i++ {
		setBit(out.buf.bytes, i, getBit(bytes, start+i))
	}
	return out
}
