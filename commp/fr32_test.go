package commp

import (
	"bytes"
	"io"
	"testing"
)

// fieldElementMaskOffsets are the byte offsets within a 128-byte Fr32 output
// block whose top two bits must always be clear (byte 31 of each of the
// four 32-byte field elements).
var fieldElementMaskOffsets = [4]int{31, 63, 95, 127}

func TestFr32ReaderMasksTopTwoBitsAllOnes(t *testing.T) {
	in := bytes.Repeat([]byte{0xFF}, inBytesPerBlock)
	r := NewFr32Reader(bytes.NewReader(in))

	out := make([]byte, outBytesPerBlock)
	if _, err := io.ReadFull(r, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, off := range fieldElementMaskOffsets {
		if out[off]&0xC0 != 0 {
			t.Errorf("byte %d = 0x%02X, top two bits not cleared", off, out[off])
		}
	}

	// The first field element is copied verbatim except for the two top bits
	// of its byte 31, which the mask clears, so bytes 0..30 stay all-ones.
	for i := 0; i < 31; i++ {
		if out[i] != 0xFF {
			t.Errorf("byte %d = 0x%02X, want 0xFF (first field element untouched)", i, out[i])
		}
	}
}

func TestFr32ReaderMasksTopTwoBitsAcrossManyBlocks(t *testing.T) {
	in := bytes.Repeat([]byte{0xFF}, inBytesPerBlock*8)
	r := NewFr32Reader(bytes.NewReader(in))

	out := make([]byte, outBytesPerBlock*8)
	if _, err := io.ReadFull(r, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for block := 0; block < 8; block++ {
		base := block * outBytesPerBlock
		for _, off := range fieldElementMaskOffsets {
			b := out[base+off]
			if b&0xC0 != 0 {
				t.Errorf("block %d byte %d = 0x%02X, top two bits not cleared", block, off, b)
			}
		}
	}
}

func TestFr32ReaderZeroInputProducesZeroOutput(t *testing.T) {
	in := make([]byte, inBytesPerBlock)
	r := NewFr32Reader(bytes.NewReader(in))

	out := make([]byte, outBytesPerBlock)
	if _, err := io.ReadFull(r, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, b := range out {
		if b != 0 {
			t.Fatalf("byte %d = 0x%02X, want 0x00 for all-zero input", i, b)
		}
	}
}

func TestFr32ReaderShortFinalBlockIsZeroPadded(t *testing.T) {
	// Fewer than inBytesPerBlock bytes available: the reader must zero-fill
	// the remainder of the block rather than erroring or truncating.
	in := bytes.Repeat([]byte{0xAB}, 10)
	r := NewFr32Reader(bytes.NewReader(in))

	out := make([]byte, outBytesPerBlock)
	n, err := io.ReadFull(r, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != outBytesPerBlock {
		t.Fatalf("got %d bytes, want %d", n, outBytesPerBlock)
	}

	for _, off := range fieldElementMaskOffsets {
		if out[off]&0xC0 != 0 {
			t.Errorf("byte %d = 0x%02X, top two bits not cleared", off, out[off])
		}
	}
}

func TestFr32ReaderEOFAfterExhaustion(t *testing.T) {
	in := bytes.Repeat([]byte{0x01}, inBytesPerBlock)
	r := NewFr32Reader(bytes.NewReader(in))

	buf := make([]byte, outBytesPerBlock)
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Fatalf("unexpected error reading first block: %v", err)
	}

	n, err := r.Read(buf)
	if n != 0 || err != nil {
		t.Fatalf("expected (0, nil) once source is exhausted, got (%d, %v)", n, err)
	}
}
