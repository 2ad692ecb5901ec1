/*
File Name:  swarm.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

The swarm worker owns the Kademlia routing table and is the sole writer of
the in-flight query map. It is driven by Run, which cooperatively selects
between incoming SwarmRequests from the HTTP front-end and completed
lookups, mirroring delia-server/src/swarm.rs's select loop.

go-libp2p-kad-dht exposes a synchronous GetValue rather than rust-libp2p's
QueryId-keyed progress events, so each lookup runs in its own goroutine and
reports back on an internal results channel; the in-flight map still exists
and is still touched only from this loop, preserving the "sole writer"
invariant the spec requires.
*/

package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/libp2p/go-libp2p/core/routing"

	delpeer "github.com/polkastorage/delia/peer"
	"github.com/polkastorage/delia/wire"
)

// ErrNotFound is the distinct outcome reported when the DHT has no record
// for the requested peer, as opposed to a decode or transport failure.
var ErrNotFound = errors.New("indexer: no record found for peer")

// recordGetter is the subset of *dht.IpfsDHT this package depends on,
// narrowed so SwarmWorker can be exercised in tests without a live DHT.
type recordGetter interface {
	GetValue(ctx context.Context, key string, opts ...routing.Option) ([]byte, error)
}

// SwarmRequest is sent from the HTTP front-end to the swarm worker over an
// unbuffered channel, so a send waits until the worker's loop receives it;
// the channel is not unbounded. It carries the query and a single-shot completion
// channel; mirrors delia-server/src/swarm.rs's SwarmRequest::QueryPeerId.
type SwarmRequest struct {
	PeerID   delpeer.ID
	Response chan<- QueryOutcome
}

// QueryOutcome is the result of a single resolve_peer_id query: either a
// list of multiaddrs or an error (ErrNotFound, a decode error, or a
// transport/internal failure).
type QueryOutcome struct {
	Maddrs []delpeer.Multiaddr
	Err    error
}

// queryResult is the internal completion event produced by getRecord and
// consumed back on the worker's own select loop.
type queryResult struct {
	id     uint64
	maddrs []delpeer.Multiaddr
	err    error
}

// SwarmWorker answers QueryPeerId requests by issuing kad.GetValue lookups.
// Exactly one in-flight entry exists per outstanding query id; an entry is
// removed the moment its single outcome is dispatched.
type SwarmWorker struct {
	dht      recordGetter
	logger   *log.Logger
	requests <-chan SwarmRequest
}

// NewSwarmWorker builds a worker reading SwarmRequests off requests. A nil
// logger falls back to log.Default().
func NewSwarmWorker(d recordGetter, requests <-chan SwarmRequest, logger *log.Logger) *SwarmWorker {
	if logger == nil {
		logger = log.Default()
	}
	return &SwarmWorker{dht: d, logger: logger, requests: requests}
}

// Run drives the worker until ctx is cancelled or the request channel is
// closed. It never blocks on an individual lookup: each gets its own
// goroutine, and the worker keeps servicing new requests while earlier ones
// are still outstanding.
func (w *SwarmWorker) Run(ctx context.Context) {
	inflight := make(map[uint64]chan<- QueryOutcome)
	results := make(chan queryResult)
	var nextID uint64

	for {
		select {
		case <-ctx.Done():
			return

		case req, ok := <-w.requests:
			if !ok {
				return
			}
			id := nextID
			nextID++
			inflight[id] = req.Response
			go w.getRecord(ctx, id, req.PeerID, results)

		case res := <-results:
			respCh, ok := inflight[res.id]
			if !ok {
				w.logger.Printf("indexer: received result for unknown query %d, dropping", res.id)
				continue
			}
			delete(inflight, res.id)
			dispatch(respCh, QueryOutcome{Maddrs: res.maddrs, Err: res.err})
		}
	}
}

// getRecord performs one kad.get_record call and reports the outcome on
// results, tagged with id so the worker loop can find the waiting entry.
func (w *SwarmWorker) getRecord(ctx context.Context, id uint64, peerID delpeer.ID, results chan<- queryResult) {
	value, err := w.dht.GetValue(ctx, recordKey(peerID))
	if err != nil {
		if errors.Is(err, routing.ErrNotFound) {
			results <- queryResult{id: id, err: ErrNotFound}
			return
		}
		w.logger.Printf("indexer: get_record failed for %s: %v", peerID, err)
		results <- queryResult{id: id, err: fmt.Errorf("indexer: get_record: %w", err)}
		return
	}

	maddrs, err := wire.DecodeRecord(value)
	if err != nil {
		w.logger.Printf("indexer: failed to decode record for %s: %v", peerID, err)
		results <- queryResult{id: id, err: fmt.Errorf("indexer: decoding record: %w", err)}
		return
	}

	results <- queryResult{id: id, maddrs: maddrs}
}

// recordKey forms the Kademlia key a peer's record is stored under: the
// namespaced, raw peer id bytes (spec.md §3, "RecordKey = peer_id.to_bytes()").
func recordKey(peerID delpeer.ID) string {
	return "/" + recordNamespace + "/" + string(peerID)
}

// dispatch delivers out without blocking; resp is always buffered by one
// slot (see httpHandler.resolvePeerID), so a failure to send only happens
// when the caller has already gone away.
func dispatch(resp chan<- QueryOutcome, out QueryOutcome) {
	select {
	case resp <- out:
	default:
	}
}
