/*
File Name:  main.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Streams stdin through the CommP pipeline and reports the resulting CID.
Flag shape and the stderr summary report follow
go-fil-commp-hashhash/cmd/stream-commp's CLI; the flag parser itself is
urfave/cli/v2 (go-ethereum's choice) rather than pborman/options, since this
module's CLI stack otherwise has no dependency on getopt.
*/

package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/polkastorage/delia/commp"
)

func main() {
	app := &cli.App{
		Name:  "commp",
		Usage: "compute a Filecoin piece commitment (CommP) over stdin",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input",
				Usage: "read from PATH instead of stdin",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	var in io.Reader = os.Stdin
	if path := c.String("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("commp: opening %q: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("commp: reading input: %w", err)
	}

	id, err := commp.CommPFromBytes(data)
	if err != nil {
		return fmt.Errorf("commp: %w", err)
	}

	padded := commp.PaddedPieceSize(uint64(len(data)))

	fmt.Fprintf(os.Stderr, `
CommPCid:       %s
Payload:        %12d bytes
Unpadded piece: %12d bytes
Padded piece:   %12d bytes
`,
		id.String(), len(data), commp.UnpaddedPieceSize(padded), padded,
	)

	fmt.Println(id.String())
	return nil
}
