// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/bitmark-inc/tranched/rpc/ledger"
	"github.com/bitmark-inc/tranched/tranche"
)

// IssueData - the tranche to create
type IssueData struct {
	Terms  tranche.Terms
	Amount string
}

// TransferData - part of a position to move
type TransferData struct {
	StateId  string
	NewOwner string
	Amount   string
}

// Issue - create a tranche; a rejection is a reply, not an error
func (client *Client) Issue(data *IssueData) (*ledger.OutcomeReply, error) {
	arguments := ledger.IssueArguments{
		Terms:  data.Terms,
		Amount: data.Amount,
	}
	if err := client.printJson("Issue Request", arguments); nil != err {
		return nil, err
	}

	var reply ledger.OutcomeReply
	if err := client.client.Call(ledger.ServiceName+".Issue", arguments, &reply); err != nil {
		return nil, err
	}

	client.printJson("Issue Reply", reply)
	return &reply, nil
}

// Transfer - move an amount to a named party
func (client *Client) Transfer(data *TransferData) (*ledger.OutcomeReply, error) {
	arguments := ledger.TransferArguments{
		StateId:  data.StateId,
		NewOwner: data.NewOwner,
		Amount:   data.Amount,
	}
	if err := client.printJson("Transfer Request", arguments); nil != err {
		return nil, err
	}

	var reply ledger.OutcomeReply
	if err := client.client.Call(ledger.ServiceName+".Transfer", arguments, &reply); err != nil {
		return nil, err
	}

	client.printJson("Transfer Reply", reply)
	return &reply, nil
}
