// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/tranched/command/tranche-cli/rpccalls"
	"github.com/bitmark-inc/tranched/tranche"
)

func runIssue(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	reference, err := checkReference(c.String("reference"))
	if nil != err {
		return err
	}

	currency, err := checkCurrency(c.String("currency"))
	if nil != err {
		return err
	}

	amount, err := checkAmount(c.String("amount"))
	if nil != err {
		return err
	}

	terms := tranche.Terms{
		ReferenceNumber:    reference,
		Borrower:           c.String("borrower"),
		InterestRate:       c.String("interest-rate"),
		ExchangeRate:       c.String("exchange-rate"),
		InterestFixingDate: c.String("interest-fixing"),
		ExchangeFixingDate: c.String("exchange-fixing"),
		StartDate:          c.String("start"),
		EndDate:            c.String("end"),
		Currency:           currency,
	}
	if err := terms.Validate(); nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "reference: %s\n", reference)
		fmt.Fprintf(m.e, "amount: %s %s\n", amount, currency)
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Issue(&rpccalls.IssueData{
		Terms:  terms,
		Amount: amount,
	})
	if nil != err {
		return err
	}

	printJson(m.w, response)
	return nil
}
