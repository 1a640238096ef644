package smf

import (
	"bytes"
	"errors"
	"testing"
)

// TestTrackBufferAppendAndPosition exercises the append forms and the
// write cursor.
func TestTrackBufferAppendAndPosition(t *testing.T) {
	b := newTrackBuffer(0, 0)

	if got := b.position(); got != 0 {
		t.Fatalf("position of empty buffer = %d, want 0", got)
	}
	if err := b.appendByte(0x41); err != nil {
		t.Fatalf("appendByte: %v", err)
	}
	if err := b.appendBytes([]byte{0x42, 0x43, 0x44}); err != nil {
		t.Fatalf("appendBytes: %v", err)
	}
	if err := b.appendUint16(0x01E0); err != nil {
		t.Fatalf("appendUint16: %v", err)
	}
	if err := b.appendUint32(6); err != nil {
		t.Fatalf("appendUint32: %v", err)
	}

	want := []byte{0x41, 0x42, 0x43, 0x44, 0x01, 0xE0, 0x00, 0x00, 0x00, 0x06}
	if !bytes.Equal(b.bytes(), want) {
		t.Errorf("bytes = % X, want % X", b.bytes(), want)
	}
	if got := b.position(); got != len(want) {
		t.Errorf("position = %d, want %d", got, len(want))
	}
}

// TestTrackBufferGrowthPreservesContent writes far past the initial
// capacity and checks nothing is lost or shifted by the reallocations.
func TestTrackBufferGrowthPreservesContent(t *testing.T) {
	b := newTrackBuffer(growthHeadroom, 0)

	chunk := make([]byte, 100)
	for i := range chunk {
		chunk[i] = byte(i)
	}

	const rounds = 100
	for i := 0; i < rounds; i++ {
		if err := b.appendBytes(chunk); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got := b.bytes()
	if len(got) != rounds*len(chunk) {
		t.Fatalf("buffer holds %d bytes, want %d", len(got), rounds*len(chunk))
	}
	for i := 0; i < rounds; i++ {
		if !bytes.Equal(got[i*len(chunk):(i+1)*len(chunk)], chunk) {
			t.Fatalf("chunk %d corrupted after growth", i)
		}
	}
}

// TestTrackBufferKeepsHeadroom checks the low-water mark holds after
// every single append.
func TestTrackBufferKeepsHeadroom(t *testing.T) {
	b := newTrackBuffer(growthHeadroom, 0)

	for i := 0; i < 5000; i++ {
		if err := b.appendByte(byte(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if free := len(b.data) - b.cursor; free < growthHeadroom {
			t.Fatalf("free space %d below low-water mark after %d appends", free, i+1)
		}
	}
}

// TestTrackBufferLargeAppendBeyondHeadroom appends a single slice larger
// than the free space in one call.
func TestTrackBufferLargeAppendBeyondHeadroom(t *testing.T) {
	b := newTrackBuffer(growthHeadroom, 0)

	big := bytes.Repeat([]byte{0x5A}, 10*growthHeadroom)
	if err := b.appendBytes(big); err != nil {
		t.Fatalf("appendBytes: %v", err)
	}
	if !bytes.Equal(b.bytes(), big) {
		t.Error("large append did not survive intact")
	}
}

// TestTrackBufferSizeLimit verifies the failure mode when growth would
// exceed the configured cap, and that the written prefix stays intact.
func TestTrackBufferSizeLimit(t *testing.T) {
	b := newTrackBuffer(2048, 2048)

	var err error
	written := 0
	for i := 0; i < 10000; i++ {
		if err = b.appendByte(0x55); err != nil {
			break
		}
		written++
	}
	if err == nil {
		t.Fatal("ten thousand appends fit within a 2048 byte cap")
	}
	if !errors.Is(err, ErrBufferExhausted) {
		t.Errorf("error = %v, want ErrBufferExhausted", err)
	}
	if written == 0 {
		t.Fatal("no append succeeded before exhaustion")
	}
	for i, c := range b.bytes()[:written] {
		if c != 0x55 {
			t.Fatalf("byte %d = %#x after exhaustion, want 0x55", i, c)
		}
	}
}

// TestTrackBufferPatchUint32 writes a placeholder, forces several
// reallocations, then patches through the stored offset.
func TestTrackBufferPatchUint32(t *testing.T) {
	b := newTrackBuffer(growthHeadroom, 0)

	if err := b.appendBytes([]byte("MTrk")); err != nil {
		t.Fatalf("appendBytes: %v", err)
	}
	offset := b.position()
	if err := b.appendUint32(0); err != nil {
		t.Fatalf("appendUint32: %v", err)
	}
	if err := b.appendBytes(bytes.Repeat([]byte{0xEE}, 4096)); err != nil {
		t.Fatalf("filler: %v", err)
	}

	if err := b.patchUint32(offset, 0xDEADBEEF); err != nil {
		t.Fatalf("patchUint32: %v", err)
	}

	got := b.bytes()[offset : offset+4]
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if !bytes.Equal(got, want) {
		t.Errorf("patched field = % X, want % X", got, want)
	}
}

// TestTrackBufferPatchUint32OutOfRange rejects offsets outside the
// written region.
func TestTrackBufferPatchUint32OutOfRange(t *testing.T) {
	b := newTrackBuffer(growthHeadroom, 0)
	if err := b.appendBytes([]byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("appendBytes: %v", err)
	}

	if err := b.patchUint32(1, 7); err != nil {
		t.Errorf("patch inside written region: %v", err)
	}
	if err := b.patchUint32(-1, 7); err == nil {
		t.Error("patch at negative offset succeeded")
	}
	if err := b.patchUint32(2, 7); err == nil {
		t.Error("patch overlapping the write cursor succeeded")
	}
	if err := b.patchUint32(b.position(), 7); err == nil {
		t.Error("patch at the write cursor succeeded")
	}
}
