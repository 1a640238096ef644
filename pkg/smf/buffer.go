package smf

import (
	"encoding/binary"
	"fmt"
)

// growthHeadroom is the low-water mark for remaining capacity. After
// every append the buffer doubles itself until at least this many bytes
// stay free, so the small fixed-size writes of the encoder never run out
// of room mid-message.
const growthHeadroom = 1024

// DefaultInitialBufferSize is the capacity a stream buffer starts with
// unless WithInitialBufferSize says otherwise.
const DefaultInitialBufferSize = 64 * 1024

// trackBuffer is the growable byte sink a stream is assembled in. The
// whole file stays in memory so the track length can be patched in place
// before anything reaches storage. A maxSize of zero means unbounded.
type trackBuffer struct {
	data    []byte
	cursor  int
	maxSize int
}

func newTrackBuffer(initial, maxSize int) *trackBuffer {
	if initial < growthHeadroom {
		initial = growthHeadroom
	}
	if maxSize > 0 && initial > maxSize {
		initial = maxSize
	}
	return &trackBuffer{data: make([]byte, initial), maxSize: maxSize}
}

// position returns the offset the next byte will be written at. Patch
// targets must be remembered as positions, never as slices of data,
// because growth reallocates the backing array.
func (b *trackBuffer) position() int {
	return b.cursor
}

// bytes returns the written part of the buffer.
func (b *trackBuffer) bytes() []byte {
	return b.data[:b.cursor]
}

// appendByte writes a single byte at the cursor.
func (b *trackBuffer) appendByte(c byte) error {
	if len(b.data)-b.cursor < 1 {
		if err := b.grow(1); err != nil {
			return err
		}
	}
	b.data[b.cursor] = c
	b.cursor++
	return b.reserve()
}

// appendBytes copies p at the cursor, growing first when p alone would
// overrun the remaining capacity.
func (b *trackBuffer) appendBytes(p []byte) error {
	if len(p) > len(b.data)-b.cursor {
		if err := b.grow(len(p)); err != nil {
			return err
		}
	}
	copy(b.data[b.cursor:], p)
	b.cursor += len(p)
	return b.reserve()
}

// appendUint16 writes v in big-endian order.
func (b *trackBuffer) appendUint16(v uint16) error {
	var scratch [2]byte
	binary.BigEndian.PutUint16(scratch[:], v)
	return b.appendBytes(scratch[:])
}

// appendUint32 writes v in big-endian order.
func (b *trackBuffer) appendUint32(v uint32) error {
	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], v)
	return b.appendBytes(scratch[:])
}

// patchUint32 overwrites four already-written bytes at offset with v in
// big-endian order. The only caller is the track length fixup at close.
func (b *trackBuffer) patchUint32(offset int, v uint32) error {
	if offset < 0 || offset+4 > b.cursor {
		return fmt.Errorf("patch offset %d outside written range 0..%d", offset, b.cursor)
	}
	binary.BigEndian.PutUint32(b.data[offset:], v)
	return nil
}

// reserve keeps the growth invariant: after every append at least
// growthHeadroom bytes of capacity remain free.
func (b *trackBuffer) reserve() error {
	if len(b.data)-b.cursor >= growthHeadroom {
		return nil
	}
	return b.grow(growthHeadroom)
}

// grow doubles the buffer until need bytes fit beyond the cursor and
// copies the written prefix over. A configured maxSize caps growth;
// hitting the cap fails the write instead of silently truncating.
func (b *trackBuffer) grow(need int) error {
	size := len(b.data)
	for size-b.cursor < need {
		size *= 2
	}
	if b.maxSize > 0 && size > b.maxSize {
		return fmt.Errorf("%w: need %d free bytes, limit %d", ErrBufferExhausted, need, b.maxSize)
	}
	next := make([]byte, size)
	copy(next, b.data[:b.cursor])
	b.data = next
	return nil
}
