/*
File Name:  hash.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner
*/

package commp

import sha256simd "github.com/minio/sha256-simd"

// NodeSize is the size in bytes of a Merkle leaf/node and the digest size of
// MaskedSha256.
const NodeSize = 32

// MaskedSha256 computes SHA-256 over data, then clears the top two bits of
// the last output byte, as required by the Filecoin piece-commitment spec.
func MaskedSha256(data []byte) [NodeSize]byte {
	digest := sha256simd.Sum256(data)
	digest[31] &= 0x3F
	return digest
}

// maskedSha256Pair hashes left||right with MaskedSha256, used for internal
// Merkle tree nodes.
func maskedSha256Pair(left, right [NodeSize]byte) [NodeSize]byte {
	var buf [2 * NodeSize]byte
	copy(buf[:NodeSize], left[:])
	copy(buf[NodeSize:], right[:])
	return MaskedSha256(buf[:])
}
