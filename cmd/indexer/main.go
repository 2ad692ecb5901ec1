/*
File Name:  main.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Entry point for the indexing server: parses flags, builds an
indexer.Server, and runs it until SIGINT. Mirrors
delia-server/src/main.rs/config.rs (listen-address/serve-directory/
bootnodes flags, the -l short alias) using urfave/cli/v2 in place of clap.
*/

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/polkastorage/delia/indexer"
	delpeer "github.com/polkastorage/delia/peer"
)

func main() {
	app := &cli.App{
		Name:  "indexer",
		Usage: "Kademlia-backed peer resolution server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen-address",
				Aliases: []string{"l"},
				Value:   "0.0.0.0:50000",
				Usage:   "HTTP API listen address, host:port",
			},
			&cli.StringFlag{
				Name:  "serve-directory",
				Value: "static",
				Usage: "static file fallback root, relative to the process's working directory unless absolute",
			},
			&cli.StringSliceFlag{
				Name:  "bootnodes",
				Usage: "Kademlia bootnode multiaddrs (repeatable, or comma-separated)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	logger := log.Default()

	bootnodes, err := parseBootnodes(c.StringSlice("bootnodes"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := indexer.New(ctx, indexer.Config{
		ListenAddress:  c.String("listen-address"),
		ServeDirectory: c.String("serve-directory"),
		Bootnodes:      bootnodes,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	return server.Run(ctx)
}

// parseBootnodes accepts both repeated --bootnodes flags and comma-joined
// values within a single flag occurrence, matching the Rust CLI's
// value_delimiter = ',' behaviour.
func parseBootnodes(raw []string) ([]delpeer.Multiaddr, error) {
	var addrs []delpeer.Multiaddr
	for _, entry := range raw {
		for _, s := range strings.Split(entry, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			addr, err := delpeer.AddrFromString(s)
			if err != nil {
				return nil, err
			}
			addrs = append(addrs, addr)
		}
	}
	return addrs, nil
}
