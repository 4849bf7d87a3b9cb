// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// Verify - check a transition against the rules of its declared intent
func Verify(consumed []state.State, produced []state.State, command transactionrecord.Command) error {
	switch command.Intent {
	case transactionrecord.IssueIntent:
		return verifyIssue(consumed, produced, command)
	case transactionrecord.MoveIntent:
		return verifyMove(consumed, produced, command)
	default:
		return fault.ErrInvalidCommand
	}
}

// VerifyTransaction - structural checks on a transaction followed by
// Verify, the consumed states must be the resolved inputs in order
func VerifyTransaction(tx *transactionrecord.Transaction, consumed []state.State) error {
	if nil == tx || nil == tx.Notary {
		return fault.ErrInvalidNotary
	}
	if len(consumed) != len(tx.Inputs) {
		return fault.ErrDependencyNotFound
	}
	for _, s := range consumed {
		if nil == s {
			return fault.ErrDependencyNotFound
		}
	}
	return Verify(consumed, tx.Outputs, tx.Command)
}

// split a list of states by type
func partition(states []state.State) ([]*state.TrancheState, []*state.TrancheBalanceState, bool) {
	tranches := make([]*state.TrancheState, 0, len(states))
	balances := make([]*state.TrancheBalanceState, 0, len(states))
	for _, s := range states {
		switch st := s.(type) {
		case *state.TrancheState:
			tranches = append(tranches, st)
		case *state.TrancheBalanceState:
			balances = append(balances, st)
		default:
			return nil, nil, false
		}
	}
	return tranches, balances, true
}
