/*
File Name:  resolver.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

EdgeResolver is an outbound-only, ephemeral libp2p client. It generates a
throwaway Ed25519 identity, dials a list of bootnode multiaddrs, sends a
resolution Request on every connection it establishes, and returns
whichever Response arrives first.
*/

package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/protocol"

	delpeer "github.com/polkastorage/delia/peer"
	"github.com/polkastorage/delia/wire"
)

// ErrNotFound is returned when the queried indexer has no record for the
// requested peer.
var ErrNotFound = errors.New("resolver: peer not found")

// EdgeResolver resolves a single peer ID against a fixed set of bootnodes,
// then tears itself down. It holds no long-lived state across calls.
type EdgeResolver struct {
	Logger *log.Logger
}

// New builds an EdgeResolver. A nil logger falls back to log.Default().
func New(logger *log.Logger) *EdgeResolver {
	if logger == nil {
		logger = log.Default()
	}
	return &EdgeResolver{Logger: logger}
}

// Resolve dials every address in bootnodes in turn, sending a Request on
// each connection as it is established, and once dialing is done returns
// the multiaddrs of query from the first bootnode that answers. It returns ErrNotFound if the first reply is a NotFound Response.
func (e *EdgeResolver) Resolve(ctx context.Context, bootnodes []delpeer.Multiaddr, query delpeer.ID) ([]delpeer.Multiaddr, error) {
	priv, _, err := crypto.GenerateEd25519Key(nil)
	if err != nil {
		return nil, fmt.Errorf("resolver: generating ephemeral identity: %w", err)
	}

	h, err := libp2p.New(
		libp2p.Identity(priv),
		libp2p.NoListenAddrs,
	)
	if err != nil {
		return nil, fmt.Errorf("resolver: creating libp2p host: %w", err)
	}
	defer h.Close()

	e.Logger.Printf("resolver: local peer id: %s", h.ID())

	result := make(chan resolveResult, 1)
	h.SetStreamHandler(protocol.ID(wire.ProtocolID), func(s network.Stream) {
		// The protocol is outbound-only: the edge resolver never accepts
		// inbound requests, but libp2p requires a handler to be registered
		// before it will negotiate the protocol on a dialed connection.
		s.Reset()
	})

	h.Network().Notify(&network.NotifyBundle{
		ConnectedF: func(_ network.Network, conn network.Conn) {
			go e.sendRequest(ctx, h, conn.RemotePeer(), query, result)
		},
	})

	if err := e.dialAll(ctx, h, bootnodes); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-result:
		return res.maddrs, res.err
	}
}

type resolveResult struct {
	maddrs []delpeer.Multiaddr
	err    error
}

// dialAll dials every bootnode, logging and tolerating individual failures.
// It only fails outright if every bootnode fails to dial.
func (e *EdgeResolver) dialAll(ctx context.Context, h host.Host, bootnodes []delpeer.Multiaddr) error {
	if len(bootnodes) == 0 {
		return errors.New("resolver: no bootnodes configured")
	}

	dialed := 0
	for _, addr := range bootnodes {
		info, err := delpeer.AddrInfoFromAddr(addr)
		if err != nil {
			e.Logger.Printf("resolver: skipping bootnode %s: %v", addr, err)
			continue
		}

		if err := h.Connect(ctx, info); err != nil {
			e.Logger.Printf("resolver: failed to dial bootnode %s: %v", addr, err)
			continue
		}
		dialed++
	}

	if dialed == 0 {
		return errors.New("resolver: failed to dial any bootnode")
	}
	return nil
}

// sendRequest opens a stream to peer, writes the Request, and publishes the
// first Response onto result. Because a connection can fire ConnectedF more
// than once is not expected here (one dial per bootnode), but the result
// channel is buffered so only the first send is observed by Resolve.
func (e *EdgeResolver) sendRequest(ctx context.Context, h host.Host, peer delpeer.ID, query delpeer.ID, result chan<- resolveResult) {
	s, err := h.NewStream(ctx, peer, protocol.ID(wire.ProtocolID))
	if err != nil {
		e.Logger.Printf("resolver: outbound failure to %s: %v", peer, err)
		return
	}
	defer s.Close()

	w := wire.NewWriter(s)
	if err := wire.WriteRequest(w, wire.Request{Peer: query}); err != nil {
		e.Logger.Printf("resolver: failed to send request to %s: %v", peer, err)
		s.Reset()
		return
	}

	r := wire.NewReader(s)
	resp, err := wire.ReadResponse(r)
	if err != nil {
		e.Logger.Printf("resolver: failed to read response from %s: %v", peer, err)
		s.Reset()
		return
	}

	e.Logger.Printf("resolver: received response from %s: %+v", peer, resp)

	switch {
	case resp.Found != nil:
		trySend(result, resolveResult{maddrs: resp.Found.Maddrs})
	case resp.NotFound != nil:
		trySend(result, resolveResult{err: ErrNotFound})
	default:
		trySend(result, resolveResult{err: errors.New("resolver: malformed response")})
	}
}

// trySend delivers res without blocking if the buffered channel already
// holds a result from a faster peer.
func trySend(result chan<- resolveResult, res resolveResult) {
	select {
	case result <- res:
	default:
	}
}
