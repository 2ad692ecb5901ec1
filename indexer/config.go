/*
File Name:  config.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Optional YAML bootnode list, following the teacher's Settings.go convention
of a flat validated list (there: SeedList of PublicKey/Address pairs; here:
a list of bootnode multiaddr strings). cmd/indexer does not load such a file;
it takes its bootnodes from the --bootnodes flag only.
*/

package indexer

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	delpeer "github.com/polkastorage/delia/peer"
)

// bootnodeFile is the on-disk shape of an optional bootnode list file.
type bootnodeFile struct {
	Bootnodes []string `yaml:"Bootnodes"`
}

// LoadBootnodeFile reads a YAML file of the form `Bootnodes: ["/ip4/.../p2p/...", ...]`
// and parses each entry as a multiaddr. Malformed entries are logged and
// skipped rather than failing the whole load on one bad line (unlike the
// --bootnodes flag, which rejects a malformed entry).
func LoadBootnodeFile(path string, logger *log.Logger) ([]delpeer.Multiaddr, error) {
	if logger == nil {
		logger = log.Default()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("indexer: reading bootnode file %q: %w", path, err)
	}

	var parsed bootnodeFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("indexer: parsing bootnode file %q: %w", path, err)
	}

	addrs := make([]delpeer.Multiaddr, 0, len(parsed.Bootnodes))
	for _, s := range parsed.Bootnodes {
		addr, err := delpeer.AddrFromString(s)
		if err != nil {
			logger.Printf("indexer: skipping bootnode entry %q from %s: %v", s, path, err)
			continue
		}
		addrs = append(addrs, addr)
	}

	return addrs, nil
}
