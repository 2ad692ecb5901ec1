/*
File Name:  pieces.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner
*/

package commp

import "math/bits"

// minPaddedPieceSize is the smallest padded piece size Filecoin recognizes.
const minPaddedPieceSize = 128

// PaddedPieceSize computes the padded piece size for a piece of n unpadded
// bytes: next_power_of_two(max(n + ceil(n/127), 128)).
func PaddedPieceSize(n uint64) uint64 {
	withOverhead := n + ceilDiv(n, inBytesPerBlock)
	if withOverhead < minPaddedPieceSize {
		withOverhead = minPaddedPieceSize
	}
	return nextPowerOfTwo(withOverhead)
}

// UnpaddedPieceSize returns the unpadded byte count carried by a padded
// piece size (127/128 of it).
func UnpaddedPieceSize(padded uint64) uint64 {
	return padded - padded/128
}

func ceilDiv(n, d uint64) uint64 {
	if n == 0 {
		return 0
	}
	return (n + d - 1) / d
}

func nextPowerOfTwo(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	if bits.OnesCount64(n) == 1 {
		return n
	}
	return uint64(1) << bits.Len64(n)
}
