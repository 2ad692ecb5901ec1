/*
File Name:  fr32.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Fr32Reader re-frames 127-byte unpadded blocks into 128-byte Fr32 blocks: each
254-bit field element is extended to 256 bits with its top two bits cleared.
*/

package commp

import (
	"encoding/binary"
	"io"
)

const (
	inBytesPerBlock  = 127 // 4 field elements * 254 bits / 8
	outBytesPerBlock = 128 // 4 field elements * 256 bits / 8
	wordsPerBlock    = 8   // outBytesPerBlock / 16

	// maskSkipHighTwo clears the top two bits of a 64-bit high-half word,
	// i.e. bits 126 and 127 of the 128-bit value it belongs to.
	maskSkipHighTwo = uint64(0x3FFFFFFFFFFFFFFF)
)

// word128 is a little-endian 128-bit value split into low/high 64-bit halves.
type word128 struct {
	lo, hi uint64
}

func word128FromBytes(b []byte) word128 {
	return word128{
		lo: binary.LittleEndian.Uint64(b[0:8]),
		hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

func (w word128) putBytes(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], w.lo)
	binary.LittleEndian.PutUint64(b[8:16], w.hi)
}

func (w word128) shiftRight(s uint) word128 {
	switch {
	case s == 0:
		return w
	case s < 64:
		return word128{
			lo: (w.lo >> s) | (w.hi << (64 - s)),
			hi: w.hi >> s,
		}
	case s < 128:
		return word128{lo: w.hi >> (s - 64)}
	default:
		return word128{}
	}
}

func (w word128) shiftLeft(s uint) word128 {
	switch {
	case s == 0:
		return w
	case s < 64:
		return word128{
			lo: w.lo << s,
			hi: (w.hi << s) | (w.lo >> (64 - s)),
		}
	case s < 128:
		return word128{hi: w.lo << (s - 64)}
	default:
		return word128{}
	}
}

func (w word128) or(other word128) word128 {
	return word128{lo: w.lo | other.lo, hi: w.hi | other.hi}
}

func (w word128) maskTopTwoBits() word128 {
	return word128{lo: w.lo, hi: w.hi & maskSkipHighTwo}
}

// Fr32Reader is an io.Reader that re-frames 127-byte input blocks read from
// source into 128-byte Fr32 output blocks.
type Fr32Reader struct {
	source io.Reader

	inBuf  [inBytesPerBlock]byte
	outBuf [outBytesPerBlock]byte

	outOffset int // bytes already consumed from outBuf
	outValid  int // valid bytes currently held in outBuf
	done      bool
}

// NewFr32Reader wraps source with Fr32 re-framing.
func NewFr32Reader(source io.Reader) *Fr32Reader {
	return &Fr32Reader{source: source}
}

// Read implements io.Reader. It fills target with as many re-framed bytes as
// fit, processing as many internal 128-byte blocks as necessary.
func (r *Fr32Reader) Read(target []byte) (int, error) {
	if r.done || len(target) == 0 {
		return 0, nil
	}

	written := 0
	for written < len(target) {
		if r.outOffset == r.outValid {
			n, err := r.fillInBuffer()
			if err != nil {
				return written, err
			}
			if n == 0 {
				r.done = true
				break
			}
			r.processBlock()
		}

		copied := copy(target[written:], r.outBuf[r.outOffset:r.outValid])
		written += copied
		r.outOffset += copied
	}

	return written, nil
}

// fillInBuffer reads up to inBytesPerBlock bytes from source, looping on
// short reads. Unfilled bytes are zeroed. Returns the count of bytes
// actually read from source (0 signals end of stream).
func (r *Fr32Reader) fillInBuffer() (int, error) {
	read := 0
	for read < inBytesPerBlock {
		n, err := r.source.Read(r.inBuf[read:])
		if n > 0 {
			read += n
			continue
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		break
	}

	for i := read; i < inBytesPerBlock; i++ {
		r.inBuf[i] = 0
	}

	return read, nil
}

// processBlock re-frames the 127 payload bytes (plus implicit zero tail)
// currently in inBuf into the 128-byte outBuf.
func (r *Fr32Reader) processBlock() {
	var padded [outBytesPerBlock]byte
	copy(padded[:inBytesPerBlock], r.inBuf[:])
	// padded[127] is implicitly zero: the zero tail bit of the last word.

	var in [wordsPerBlock]word128
	for i := 0; i < wordsPerBlock; i++ {
		in[i] = word128FromBytes(padded[i*16 : i*16+16])
	}

	var out [wordsPerBlock]word128
	out[0] = in[0]
	out[1] = in[1].maskTopTwoBits()

	for k := uint(1); k <= 3; k++ {
		s := 2 * k
		o := 2*k - 1

		out[2*k] = in[o].shiftRight(128-s).or(in[o+1].shiftLeft(s))
		out[2*k+1] = in[o+1].shiftRight(128 - s).or(in[o+2].shiftLeft(s)).maskTopTwoBits()
	}

	for i := 0; i < wordsPerBlock; i++ {
		out[i].putBytes(r.outBuf[i*16 : i*16+16])
	}

	r.outOffset = 0
	r.outValid = outBytesPerBlock
}
