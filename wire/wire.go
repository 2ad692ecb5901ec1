/*
File Name:  wire.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Wire types exchanged between the edge resolver and the indexing server's
request/response protocol, and the record format stored in the DHT.
*/

package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	ma "github.com/multiformats/go-multiaddr"

	delpeer "github.com/polkastorage/delia/peer"
)

// ProtocolID is the libp2p request/response protocol ID used for peer
// resolution. It is outbound-only on the resolver side: only Response
// messages ever arrive in practice.
const ProtocolID = "/polka-storage/rr/resolve-peer-id/1.0.0"

// Request asks the receiving indexer to resolve a peer ID to its known
// multiaddrs.
type Request struct {
	Peer delpeer.ID
}

// requestWire is the CBOR-level shape of Request: the peer id travels as
// its raw id bytes (a CBOR byte string), matching the Rust serde encoding
// of PeerId, rather than delpeer.ID's underlying string kind (which cbor
// would otherwise encode as a CBOR text string and reject on decode for
// any id containing non-UTF-8 bytes).
type requestWire struct {
	Peer []byte `cbor:"peer"`
}

// MarshalCBOR implements cbor.Marshaler for Request.
func (r Request) MarshalCBOR() ([]byte, error) {
	return cborCodec.Marshal(requestWire{Peer: []byte(r.Peer)})
}

// UnmarshalCBOR implements cbor.Unmarshaler for Request.
func (r *Request) UnmarshalCBOR(data []byte) error {
	var w requestWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("wire: decoding request: %w", err)
	}
	r.Peer = delpeer.ID(w.Peer)
	return nil
}

// Found is the Response variant returned when the indexer's DHT has a
// record for the requested peer.
type Found struct {
	Peer   delpeer.ID
	Maddrs []delpeer.Multiaddr
}

// foundWire is the CBOR-level shape of Found: the peer id travels as its
// raw id bytes (see requestWire), and multiaddrs travel as their raw binary
// form (addr.Bytes()), since Multiaddr itself has no native CBOR encoding
// and go-multiaddr's own binary form is the cheapest, lossless round-trip
// available.
type foundWire struct {
	Peer   []byte   `cbor:"peer"`
	Maddrs [][]byte `cbor:"maddrs"`
}

// MarshalCBOR implements cbor.Marshaler for Found.
func (f Found) MarshalCBOR() ([]byte, error) {
	w := foundWire{Peer: []byte(f.Peer), Maddrs: make([][]byte, len(f.Maddrs))}
	for i, addr := range f.Maddrs {
		w.Maddrs[i] = addr.Bytes()
	}
	return cborCodec.Marshal(w)
}

// UnmarshalCBOR implements cbor.Unmarshaler for Found.
func (f *Found) UnmarshalCBOR(data []byte) error {
	var w foundWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("wire: decoding found payload: %w", err)
	}

	maddrs := make([]delpeer.Multiaddr, len(w.Maddrs))
	for i, raw := range w.Maddrs {
		addr, err := ma.NewMultiaddrBytes(raw)
		if err != nil {
			return fmt.Errorf("wire: decoding multiaddr %d: %w", i, err)
		}
		maddrs[i] = addr
	}

	f.Peer = delpeer.ID(w.Peer)
	f.Maddrs = maddrs
	return nil
}

// NotFound is the Response variant returned when no record exists.
type NotFound struct {
	Peer delpeer.ID
}

// notFoundWire is the CBOR-level shape of NotFound; see requestWire.
type notFoundWire struct {
	Peer []byte `cbor:"peer"`
}

// MarshalCBOR implements cbor.Marshaler for NotFound.
func (n NotFound) MarshalCBOR() ([]byte, error) {
	return cborCodec.Marshal(notFoundWire{Peer: []byte(n.Peer)})
}

// UnmarshalCBOR implements cbor.Unmarshaler for NotFound.
func (n *NotFound) UnmarshalCBOR(data []byte) error {
	var w notFoundWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("wire: decoding not-found payload: %w", err)
	}
	n.Peer = delpeer.ID(w.Peer)
	return nil
}

// Response is the externally-tagged Found/NotFound union returned by the
// indexer. Exactly one of Found or NotFound is set.
type Response struct {
	Found    *Found
	NotFound *NotFound
}

// cborCodec is the shared CBOR codec, configured for deterministic
// (canonical) output so records written and read by different processes
// encode identically.
var cborCodec = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: invalid cbor encoding options: %v", err))
	}
	return mode
}()

// MarshalCBOR implements cbor.Marshaler. It encodes Response the way serde's
// default external tagging represents a struct-variant enum: a one-entry
// map keyed by the variant name.
func (r Response) MarshalCBOR() ([]byte, error) {
	switch {
	case r.Found != nil && r.NotFound != nil:
		return nil, fmt.Errorf("wire: response has both Found and NotFound set")
	case r.Found != nil:
		return cborCodec.Marshal(map[string]Found{"Found": *r.Found})
	case r.NotFound != nil:
		return cborCodec.Marshal(map[string]NotFound{"NotFound": *r.NotFound})
	default:
		return nil, fmt.Errorf("wire: response has neither Found nor NotFound set")
	}
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (r *Response) UnmarshalCBOR(data []byte) error {
	var tagged map[string]cbor.RawMessage
	if err := cbor.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("wire: decoding response envelope: %w", err)
	}

	if raw, ok := tagged["Found"]; ok {
		var found Found
		if err := cbor.Unmarshal(raw, &found); err != nil {
			return fmt.Errorf("wire: decoding Found response: %w", err)
		}
		r.Found = &found
		r.NotFound = nil
		return nil
	}

	if raw, ok := tagged["NotFound"]; ok {
		var notFound NotFound
		if err := cbor.Unmarshal(raw, &notFound); err != nil {
			return fmt.Errorf("wire: decoding NotFound response: %w", err)
		}
		r.NotFound = &notFound
		r.Found = nil
		return nil
	}

	return fmt.Errorf("wire: response envelope has neither Found nor NotFound key")
}

// NewFoundResponse builds a Response carrying the Found variant.
func NewFoundResponse(peer delpeer.ID, maddrs []delpeer.Multiaddr) Response {
	return Response{Found: &Found{Peer: peer, Maddrs: maddrs}}
}

// NewNotFoundResponse builds a Response carrying the NotFound variant.
func NewNotFoundResponse(peer delpeer.ID) Response {
	return Response{NotFound: &NotFound{Peer: peer}}
}

// EncodeRecord serializes the multiaddrs stored under a peer's DHT record
// key. Mirrors delia-server/src/swarm.rs's cbor4ii-encoded record value.
func EncodeRecord(maddrs []delpeer.Multiaddr) ([]byte, error) {
	raw := make([][]byte, len(maddrs))
	for i, addr := range maddrs {
		raw[i] = addr.Bytes()
	}
	return cborCodec.Marshal(raw)
}

// DecodeRecord parses a DHT record value back into its multiaddr list.
func DecodeRecord(data []byte) ([]delpeer.Multiaddr, error) {
	var raw [][]byte
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("wire: decoding record: %w", err)
	}

	maddrs := make([]delpeer.Multiaddr, len(raw))
	for i, b := range raw {
		addr, err := ma.NewMultiaddrBytes(b)
		if err != nil {
			return nil, fmt.Errorf("wire: decoding record multiaddr %d: %w", i, err)
		}
		maddrs[i] = addr
	}
	return maddrs, nil
}
