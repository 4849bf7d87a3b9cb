// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/bitmark-inc/tranched/rpc/ledger"
)

// GetTranches - unconsumed positions
func (client *Client) GetTranches() (*ledger.TranchesReply, error) {
	var reply ledger.TranchesReply
	if err := client.client.Call(ledger.ServiceName+".Tranches", ledger.ListArguments{}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetBalances - unconsumed balance rows
func (client *Client) GetBalances() (*ledger.BalancesReply, error) {
	var reply ledger.BalancesReply
	if err := client.client.Call(ledger.ServiceName+".Balances", ledger.ListArguments{}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetTransactions - one page of the committed transaction feed
func (client *Client) GetTransactions(start uint64, count int) (*ledger.TransactionsReply, error) {
	arguments := ledger.TransactionsArguments{
		Start: start,
		Count: count,
	}
	client.printJson("Transactions Request", arguments)

	var reply ledger.TransactionsReply
	if err := client.client.Call(ledger.ServiceName+".Transactions", arguments, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
