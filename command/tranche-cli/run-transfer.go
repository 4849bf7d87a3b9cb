// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/tranched/command/tranche-cli/rpccalls"
)

func runTransfer(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	stateId, err := checkStateId(c.String("state"))
	if nil != err {
		return err
	}

	receiver, err := checkReceiver(c.String("receiver"))
	if nil != err {
		return err
	}

	amount, err := checkAmount(c.String("amount"))
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "state: %s\n", stateId)
		fmt.Fprintf(m.e, "receiver: %s\n", receiver)
		fmt.Fprintf(m.e, "amount: %s\n", amount)
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Transfer(&rpccalls.TransferData{
		StateId:  stateId,
		NewOwner: receiver,
		Amount:   amount,
	})
	if nil != err {
		return err
	}

	printJson(m.w, response)
	return nil
}
