/*
File Name:  commp.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Orchestrates the CommP pipeline: zero-padding -> Fr32 re-framing -> leaf
hashing -> balanced binary Merkle tree -> CID encoding.
*/

package commp

import (
	"bytes"
	"errors"
	"io"

	"github.com/ipfs/go-cid"
)

// ErrEmptyInput is returned by CommPFromBytes when given zero-length data.
var ErrEmptyInput = errors.New("commp: input data is empty")

// CommPFromBytes computes the Filecoin piece commitment (CommP) for data and
// returns it encoded as a CID. Returns ErrEmptyInput if data is empty.
func CommPFromBytes(data []byte) (cid.Cid, error) {
	if len(data) == 0 {
		return cid.Undef, ErrEmptyInput
	}

	padded := PaddedPieceSize(uint64(len(data)))
	unpadded := UnpaddedPieceSize(padded)

	zeroPadded := NewZeroPaddingReader(bytes.NewReader(data), unpadded)
	fr32 := NewFr32Reader(zeroPadded)

	numLeaves := padded / NodeSize
	root, err := merkleRoot(fr32, numLeaves)
	if err != nil {
		return cid.Undef, err
	}

	return ToCID(root)
}

// merkleRoot reads numLeaves raw NodeSize-byte Fr32 chunks from r and folds
// them pairwise left-to-right into a single root digest with
// MaskedSha256(left || right). The leaves themselves are never hashed on
// their own: the Fr32 chunk IS the leaf, matching go-fil-commp-hashhash's
// raw-chunk layerQueues[0] and rs_merkle's from_leaves over the unhashed
// Fr32 nodes; only internal node pairs are hashed. numLeaves MUST be a
// power of two (guaranteed by PaddedPieceSize).
func merkleRoot(r io.Reader, numLeaves uint64) ([NodeSize]byte, error) {
	if numLeaves == 0 || (numLeaves&(numLeaves-1)) != 0 {
		return [NodeSize]byte{}, errors.New("commp: leaf count must be a non-zero power of two")
	}

	level := make([][NodeSize]byte, numLeaves)
	for i := range level {
		if _, err := io.ReadFull(r, level[i][:]); err != nil {
			return [NodeSize]byte{}, err
		}
	}

	for len(level) > 1 {
		next := make([][NodeSize]byte, len(level)/2)
		for i := range next {
			next[i] = maskedSha256Pair(level[2*i], level[2*i+1])
		}
		level = next
	}

	return level[0], nil
}
