// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package builder

import (
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/tranche"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// Snapshot - read only view of the local vault
type Snapshot interface {
	FindUnconsumed(id state.UniqueId) (*state.StateAndRef, error)
	FindAllUnconsumed(predicate func(state.State) bool) ([]state.StateAndRef, error)
	Transaction(txId merkle.Digest) (*transactionrecord.NotarisedTransaction, error)
}

// Proposal - an unsigned transaction with everything a counter-party
// needs to check it
//
// Inputs are in the same order as Tx.Inputs; Dependencies are the
// notarised transactions that produced them
type Proposal struct {
	Tx           *transactionrecord.Transaction
	Inputs       []state.StateAndRef
	Dependencies []*transactionrecord.NotarisedTransaction
}

// Consumed - the resolved input states
func (p *Proposal) Consumed() []state.State {
	result := make([]state.State, len(p.Inputs))
	for i, in := range p.Inputs {
		result[i] = in.State
	}
	return result
}

// BuildIssue - create a tranche held entirely by its agent
func BuildIssue(terms tranche.Terms, total tranche.Money, agent *account.Account, notary *account.Account) (*Proposal, error) {
	if err := terms.Validate(); nil != err {
		return nil, err
	}
	if nil == agent {
		return nil, fault.ErrMissingParameters
	}
	if nil == notary {
		return nil, fault.ErrInvalidNotary
	}

	position := &state.TrancheState{
		Terms:       terms,
		TotalIssued: total,
		Agent:       agent,
		Available:   total,
		Owner:       agent,
		Id:          state.NewUniqueId(),
	}
	row := &state.TrancheBalanceState{
		Terms:   terms,
		Balance: total,
		Agent:   agent,
		Owner:   agent,
		Id:      state.NewUniqueId(),
	}

	return &Proposal{
		Tx: &transactionrecord.Transaction{
			Inputs:  []state.Ref{},
			Outputs: []state.State{position, row},
			Command: transactionrecord.Command{
				Intent:  transactionrecord.IssueIntent,
				Signers: []*account.Account{agent},
			},
			Notary: notary,
		},
		Inputs:       []state.StateAndRef{},
		Dependencies: []*transactionrecord.NotarisedTransaction{},
	}, nil
}

// BuildTransfer - move a quantity of a position to a new owner
//
// outputs are ordered: remainder, transferred, agent balance row,
// recipient balance row; the agent's row is debited whoever holds the
// source position
func BuildTransfer(snapshot Snapshot, sourceId state.UniqueId, quantity int64, newOwner *account.Account, local *account.Account, notary *account.Account) (*Proposal, error) {
	if nil == newOwner || nil == local {
		return nil, fault.ErrMissingParameters
	}
	if nil == notary {
		return nil, fault.ErrInvalidNotary
	}

	found, err := snapshot.FindUnconsumed(sourceId)
	if nil != err {
		return nil, err
	}
	source, ok := found.State.(*state.TrancheState)
	if !ok {
		return nil, fault.ErrStateNotFound
	}

	if !local.Equal(source.Agent) {
		return nil, fault.ErrNotAuthorised
	}
	if quantity <= 0 {
		return nil, fault.ErrAmountTooSmall
	}
	if newOwner.Equal(source.Owner) || newOwner.Equal(source.Agent) {
		return nil, fault.ErrOwnerMustChange
	}

	amount := source.Available.Zero()
	amount.Quantity = quantity

	rows, err := snapshot.FindAllUnconsumed(func(s state.State) bool {
		row, ok := s.(*state.TrancheBalanceState)
		return ok &&
			row.Terms.ReferenceNumber == source.Terms.ReferenceNumber &&
			row.Agent.Equal(source.Agent)
	})
	if nil != err {
		return nil, err
	}

	var senderRow, recipientRow *state.StateAndRef
	for i := range rows {
		row := rows[i].State.(*state.TrancheBalanceState)
		switch {
		case row.Owner.Equal(source.Agent):
			senderRow = &rows[i]
		case row.Owner.Equal(newOwner):
			recipientRow = &rows[i]
		}
	}

	// a missing row is a zero balance
	if nil == senderRow || senderRow.State.(*state.TrancheBalanceState).Balance.Quantity < quantity {
		return nil, fault.ErrInsufficientBalance
	}
	remaining, err := source.Available.Minus(amount)
	if fault.ErrNegativeAmount == err {
		return nil, fault.ErrInsufficientBalance
	} else if nil != err {
		return nil, err
	}

	inputs := []state.StateAndRef{*found, *senderRow}
	outputs := []state.State{
		source.WithOwner(source.Owner, remaining, source.Id),
		source.WithOwner(newOwner, amount, state.NewUniqueId()),
	}

	sender := senderRow.State.(*state.TrancheBalanceState)
	senderBalance, err := sender.Balance.Minus(amount)
	if nil != err {
		return nil, fault.ErrInsufficientBalance
	}
	outputs = append(outputs, sender.WithBalance(senderBalance))

	if nil != recipientRow {
		recipient := recipientRow.State.(*state.TrancheBalanceState)
		balance, err := recipient.Balance.Plus(amount)
		if nil != err {
			return nil, err
		}
		inputs = append(inputs, *recipientRow)
		outputs = append(outputs, recipient.WithBalance(balance))
	} else {
		outputs = append(outputs, &state.TrancheBalanceState{
			Terms:   sender.Terms,
			Balance: amount,
			Agent:   source.Agent,
			Owner:   newOwner,
			Id:      state.NewUniqueId(),
		})
	}

	refs := make([]state.Ref, len(inputs))
	for i, in := range inputs {
		refs[i] = in.Ref
	}

	dependencies, err := resolveDependencies(snapshot, refs)
	if nil != err {
		return nil, err
	}

	return &Proposal{
		Tx: &transactionrecord.Transaction{
			Inputs:  refs,
			Outputs: outputs,
			Command: transactionrecord.Command{
				Intent:    transactionrecord.MoveIntent,
				Amount:    amount,
				Recipient: newOwner,
				Signers:   distinct(source.Agent, newOwner),
			},
			Notary: notary,
		},
		Inputs:       inputs,
		Dependencies: dependencies,
	}, nil
}

// the notarised transactions that produced a set of inputs
func resolveDependencies(snapshot Snapshot, refs []state.Ref) ([]*transactionrecord.NotarisedTransaction, error) {
	seen := make(map[merkle.Digest]struct{})
	result := make([]*transactionrecord.NotarisedTransaction, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.TxId]; ok {
			continue
		}
		seen[ref.TxId] = struct{}{}
		tx, err := snapshot.Transaction(ref.TxId)
		if nil != err {
			return nil, fault.ErrDependencyNotFound
		}
		result = append(result, tx)
	}
	return result, nil
}

func distinct(keys ...*account.Account) []*account.Account {
	result := make([]*account.Account, 0, len(keys))
next:
	for _, k := range keys {
		for _, r := range result {
			if r.Equal(k) {
				continue next
			}
		}
		result = append(result, k)
	}
	return result
}
