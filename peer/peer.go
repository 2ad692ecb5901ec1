/*
File Name:  peer.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Thin wrappers around libp2p's PeerId and Multiaddr types, plus the
bootnode-address parsing helpers shared by the resolver and the indexer.
*/

package peer

import (
	"errors"
	"fmt"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// ID identifies a libp2p peer. It is a thin alias so callers outside this
// package never need to import go-libp2p/core/peer directly.
type ID = peer.ID

// Multiaddr is a self-describing network address.
type Multiaddr = ma.Multiaddr

// ErrMissingP2PComponent is returned when a multiaddr has no terminal
// /p2p/<PeerId> component.
var ErrMissingP2PComponent = errors.New("peer: multiaddr has no terminal /p2p component")

// IDFromString parses a base58 or CIDv1 peer id string.
func IDFromString(s string) (ID, error) {
	return peer.Decode(s)
}

// AddrFromString parses a multiaddr string, e.g.
// "/ip4/127.0.0.1/tcp/4001/p2p/QmPeer...".
func AddrFromString(s string) (Multiaddr, error) {
	addr, err := ma.NewMultiaddr(s)
	if err != nil {
		return nil, fmt.Errorf("peer: invalid multiaddr %q: %w", s, err)
	}
	return addr, nil
}

// ExtractID returns the peer ID carried by the terminal /p2p/<PeerId>
// component of addr, if any. Mirrors the Rust indexing server's
// extract_peer_id: only the last protocol component is consulted.
func ExtractID(addr Multiaddr) (ID, error) {
	_, last := ma.SplitLast(addr)
	if last == nil || last.Protocol().Code != ma.P_P2P {
		return "", ErrMissingP2PComponent
	}

	return peer.Decode(last.Value())
}

// AddrInfoFromAddr splits addr into its AddrInfo (peer ID + remaining
// addresses), as required to dial it with a libp2p host.
func AddrInfoFromAddr(addr Multiaddr) (peer.AddrInfo, error) {
	info, err := peer.AddrInfoFromP2pAddr(addr)
	if err != nil {
		return peer.AddrInfo{}, fmt.Errorf("peer: %w", err)
	}
	return *info, nil
}
