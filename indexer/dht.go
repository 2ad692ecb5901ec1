/*
File Name:  dht.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Kademlia DHT construction: routing table seeded from bootnode multiaddrs,
with a permissive validator for this indexer's record namespace. Record
distribution itself is out of scope (spec.md, "Out of scope") -- this
process only ever reads what Kademlia already stores.
*/

package indexer

import (
	"context"
	"fmt"
	"log"

	kaddht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"

	delpeer "github.com/polkastorage/delia/peer"
)

// recordNamespace is the Kademlia key namespace this indexer's records live
// under.
const recordNamespace = "delia"

// passthroughValidator accepts any record under recordNamespace. The DHT's
// record-distribution and conflict-resolution mechanics are explicitly out
// of scope; this indexer only consumes get_record (spec.md §1).
type passthroughValidator struct{}

func (passthroughValidator) Validate(key string, value []byte) error { return nil }

func (passthroughValidator) Select(key string, values [][]byte) (int, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("indexer: no candidate values to select from")
	}
	return 0, nil
}

// NewDHT builds the Kademlia behaviour, seeding its routing table from
// bootnodes. A bootnode address missing a terminal /p2p/<PeerId> component
// is logged and ignored rather than rejected outright (spec.md §4.6).
func NewDHT(ctx context.Context, h host.Host, bootnodes []delpeer.Multiaddr, logger *log.Logger) (*kaddht.IpfsDHT, error) {
	if logger == nil {
		logger = log.Default()
	}

	infos := make([]peer.AddrInfo, 0, len(bootnodes))
	for _, addr := range bootnodes {
		info, err := delpeer.AddrInfoFromAddr(addr)
		if err != nil {
			logger.Printf("indexer: bootnode %s has no /p2p component, ignoring: %v", addr, err)
			continue
		}
		infos = append(infos, info)
		h.Peerstore().AddAddrs(info.ID, info.Addrs, peerstore.PermanentAddrTTL)
	}

	d, err := kaddht.New(ctx, h,
		kaddht.Mode(kaddht.ModeClient),
		kaddht.NamespacedValidator(recordNamespace, passthroughValidator{}),
		kaddht.BootstrapPeers(infos...),
	)
	if err != nil {
		return nil, fmt.Errorf("indexer: creating kademlia dht: %w", err)
	}

	if err := d.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("indexer: bootstrapping kademlia dht: %w", err)
	}

	return d, nil
}
