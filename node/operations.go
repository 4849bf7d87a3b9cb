// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"context"

	"github.com/bitmark-inc/tranched/builder"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/messagebus"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/tranche"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// IssueRequest - terms and the total as a display amount
//
// the display scale is the currency's minor unit count
type IssueRequest struct {
	Terms  tranche.Terms `json:"terms"`
	Amount string        `json:"amount"`
}

// TransferRequest - move part of a position to a named party
type TransferRequest struct {
	StateId  string `json:"stateId"`
	NewOwner string `json:"newOwner"`
	Amount   string `json:"amount"`
}

// Issue - create a tranche held by this node as agent
func (n *Node) Issue(ctx context.Context, request IssueRequest) Outcome {
	self := n.key.Account()
	token := tranche.Token{
		Issuer:   self,
		Currency: request.Terms.Currency,
	}
	total, err := tranche.ParseMoney(request.Amount, tranche.DisplayScaleOf(request.Terms.Currency), token)
	if nil != err {
		return rejected(err)
	}
	if 0 == total.Quantity {
		return rejected(fault.ErrAmountTooSmall)
	}

	// the reference number is the tranche's business key
	reference := request.Terms.ReferenceNumber
	existing, err := n.vault.FindAllUnconsumed(func(s state.State) bool {
		position, ok := s.(*state.TrancheState)
		return ok && reference == position.Terms.ReferenceNumber
	})
	if nil != err {
		return rejected(err)
	}
	if 0 != len(existing) {
		return rejected(fault.ErrTrancheExists)
	}

	proposal, err := builder.BuildIssue(request.Terms, total, self, n.oracle.Identity())
	if nil != err {
		return rejected(err)
	}
	return n.run(ctx, proposal)
}

// Transfer - move an amount of a position this node is agent for
func (n *Node) Transfer(ctx context.Context, request TransferRequest) Outcome {
	id, err := state.ParseUniqueId(request.StateId)
	if nil != err {
		return rejected(err)
	}
	newOwner, ok := n.directory.Resolve(request.NewOwner)
	if !ok {
		return rejected(fault.ErrPartyNotFound)
	}

	found, err := n.vault.FindUnconsumed(id)
	if nil != err {
		return rejected(err)
	}
	position, ok := found.State.(*state.TrancheState)
	if !ok {
		return rejected(fault.ErrStateNotFound)
	}
	amount, err := tranche.ParseMoney(request.Amount, position.Available.DisplayScale, position.Available.Token)
	if nil != err {
		return rejected(err)
	}

	proposal, err := builder.BuildTransfer(n.vault, id, amount.Quantity, newOwner, n.key.Account(), n.oracle.Identity())
	if nil != err {
		return rejected(err)
	}
	return n.run(ctx, proposal)
}

func (n *Node) run(ctx context.Context, proposal *builder.Proposal) Outcome {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	nt, err := n.initiator.Run(ctx, proposal)
	if nil != err {
		n.log.Warnf("rejected: %s", err)

		// the notary may have answered after all
		if fault.IsErrTransport(err) {
			if txId, e := proposal.Tx.Id(); nil == e {
				n.resubmit.Send(messagebus.Resubmit, txId)
			}
		}
		return rejected(err)
	}

	// committed by the notary but the local store failed
	if !n.vault.HasTransaction(nt.Id()) {
		n.resubmit.Send(messagebus.Resubmit, nt.Id())
	}
	return committed(nt.Id())
}

// ListTranches - unconsumed positions visible to this node
func (n *Node) ListTranches() ([]state.StateAndRef, error) {
	return n.vault.FindAllUnconsumed(func(s state.State) bool {
		return state.TrancheKind == s.Kind()
	})
}

// ListBalances - unconsumed balance rows visible to this node
func (n *Node) ListBalances() ([]state.StateAndRef, error) {
	return n.vault.FindAllUnconsumed(func(s state.State) bool {
		return state.BalanceKind == s.Kind()
	})
}

// Transactions - committed transactions in the order applied
func (n *Node) Transactions(start uint64, count int) ([]*transactionrecord.NotarisedTransaction, uint64, error) {
	return n.vault.Transactions(start, count)
}

// Transaction - one committed transaction
func (n *Node) Transaction(txId merkle.Digest) (*transactionrecord.NotarisedTransaction, error) {
	return n.vault.Transaction(txId)
}
