// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

type metadata struct {
	connect string
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "tranche-cli"
	app.Usage = "issue and transfer loan tranches through a tranched node"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "connect, c",
			Value:  "127.0.0.1:2130",
			EnvVar: "TRANCHE_CONNECT",
			Usage:  " node client RPC `HOST:PORT`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "info",
			Usage:  "display the node name, account and peers",
			Action: runInfo,
		},
		{
			Name:      "issue",
			Usage:     "issue a new tranche with the node as agent",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "reference, r",
					Value: "",
					Usage: "*tranche reference number `STRING`",
				},
				cli.StringFlag{
					Name:  "borrower, b",
					Value: "",
					Usage: " borrower `NAME`",
				},
				cli.StringFlag{
					Name:  "interest-rate, i",
					Value: "0",
					Usage: " interest rate `DECIMAL`",
				},
				cli.StringFlag{
					Name:  "exchange-rate, x",
					Value: "1",
					Usage: " exchange rate `DECIMAL`",
				},
				cli.StringFlag{
					Name:  "interest-fixing",
					Value: "",
					Usage: " interest fixing `DATE`",
				},
				cli.StringFlag{
					Name:  "exchange-fixing",
					Value: "",
					Usage: " exchange fixing `DATE`",
				},
				cli.StringFlag{
					Name:  "start, s",
					Value: "",
					Usage: " start `DATE`",
				},
				cli.StringFlag{
					Name:  "end, e",
					Value: "",
					Usage: " end `DATE`",
				},
				cli.StringFlag{
					Name:  "currency, C",
					Value: "",
					Usage: "*currency `CODE`",
				},
				cli.StringFlag{
					Name:  "amount, a",
					Value: "",
					Usage: "*total amount `DECIMAL`",
				},
			},
			Action: runIssue,
		},
		{
			Name:      "transfer",
			Usage:     "transfer part of a tranche position to another party",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "state, s",
					Value: "",
					Usage: "*linear id of the position `UUID`",
				},
				cli.StringFlag{
					Name:  "receiver, r",
					Value: "",
					Usage: "*party to receive the amount `NAME`",
				},
				cli.StringFlag{
					Name:  "amount, a",
					Value: "",
					Usage: "*amount to move `DECIMAL`",
				},
			},
			Action: runTransfer,
		},
		{
			Name:   "tranches",
			Usage:  "list the tranche positions visible to the node",
			Action: runTranches,
		},
		{
			Name:   "balances",
			Usage:  "list the balances visible to the node",
			Action: runBalances,
		},
		{
			Name:      "transactions",
			Usage:     "list committed transactions",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "start, s",
					Value: 0,
					Usage: " position in the feed `NUMBER`",
				},
				cli.IntFlag{
					Name:  "count, c",
					Value: 20,
					Usage: " number of transactions `COUNT`",
				},
			},
			Action: runTransactions,
		},
		{
			Name:  "version",
			Usage: "display tranche-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {
		connect := c.GlobalString("connect")
		if "" == connect {
			return ErrRequiredConnect
		}

		c.App.Metadata["config"] = &metadata{
			connect: connect,
			verbose: c.GlobalBool("verbose"),
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}

	return app
}
