/*
File Name:  cid.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner
*/

package commp

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// filCommitmentUnsealedCodec is the multicodec for a Filecoin unsealed
// piece commitment (CommP), as registered in the multicodec table.
const filCommitmentUnsealedCodec = 0xf101

// shaTrunc254PaddedMultihash is the multihash code for a masked SHA-256
// digest (top two bits cleared), as used for Fr32-padded commitments.
const shaTrunc254PaddedMultihash = 0x1012

// ToCID encodes a masked SHA-256 digest as a CommP CID: CIDv1, the
// fil-commitment-unsealed multicodec, and the sha2-256-trunc254-padded
// multihash. The textual representation is multibase base32 and always
// starts with "baga".
func ToCID(digest [NodeSize]byte) (cid.Cid, error) {
	mh, err := multihash.Encode(digest[:], shaTrunc254PaddedMultihash)
	if err != nil {
		return cid.Undef, err
	}

	return cid.NewCidV1(filCommitmentUnsealedCodec, mh), nil
}
