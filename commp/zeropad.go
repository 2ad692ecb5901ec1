/*
File Name:  zeropad.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

ZeroPaddingReader streams an inner reader, then emits zero bytes until a
fixed target length is reached.
*/

package commp

import "io"

// ZeroPaddingReader streams bytes from an inner reader and, once the inner
// reader signals end of stream (a 0-length read), pads the remainder of the
// requested total with zero bytes. It never delivers more than total bytes.
//
// A short (partial) read from the inner reader is not treated as end of
// stream; only a 0-length read starts the zero-fill phase. Errors from the
// inner reader are propagated unchanged, without substituting zeros.
type ZeroPaddingReader struct {
	inner     io.Reader
	remaining uint64
}

// NewZeroPaddingReader wraps inner so that exactly totalSize bytes are
// produced in total, padding with zeros once inner is exhausted.
func NewZeroPaddingReader(inner io.Reader, totalSize uint64) *ZeroPaddingReader {
	return &ZeroPaddingReader{inner: inner, remaining: totalSize}
}

// Read implements io.Reader.
func (r *ZeroPaddingReader) Read(buf []byte) (n int, err error) {
	if r.remaining == 0 {
		return 0, nil
	}

	toRead := len(buf)
	if uint64(toRead) > r.remaining {
		toRead = int(r.remaining)
	}

	read, err := r.inner.Read(buf[:toRead])
	if err != nil && err != io.EOF {
		return 0, err
	}

	if read > 0 {
		r.remaining -= uint64(read)
		return read, nil
	}

	// Inner reader is exhausted (0-length read): zero-fill the rest of this
	// call's window. Do not treat this as an error even if err == io.EOF.
	for i := 0; i < toRead; i++ {
		buf[i] = 0
	}
	r.remaining -= uint64(toRead)

	return toRead, nil
}
