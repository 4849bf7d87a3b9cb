// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"math"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// a move splits one position into [remainder, transferred] and moves
// the same quantity from the agent's balance row to the recipient's
//
// the position's owner need not sign, the agent acts for the holders
func verifyMove(consumed []state.State, produced []state.State, command transactionrecord.Command) error {
	if nil == command.Recipient {
		return fault.ErrInvalidCommand
	}

	inTranches, inBalances, ok := partition(consumed)
	if !ok {
		return fault.ErrWrongOutputCount
	}
	outTranches, outBalances, ok := partition(produced)
	if !ok {
		return fault.ErrWrongOutputCount
	}
	if 1 != len(inTranches) || 2 != len(outTranches) {
		return fault.ErrWrongOutputCount
	}
	input := inTranches[0]

	err := verifyPositions(input, outTranches[0], outTranches[1], command)
	if nil != err {
		return err
	}

	err = verifyBalances(input, inBalances, outBalances, command)
	if nil != err {
		return err
	}

	for _, key := range []*account.Account{input.Agent, command.Recipient} {
		if !command.HasSigner(key) {
			return fault.ErrMissingRequiredSigner
		}
	}
	return nil
}

func verifyPositions(input *state.TrancheState, remainder *state.TrancheState, transferred *state.TrancheState, command transactionrecord.Command) error {
	if input.Available.Quantity < 0 ||
		remainder.Available.Quantity < 0 ||
		transferred.Available.Quantity < 0 ||
		command.Amount.Quantity < 0 {
		return fault.ErrNegativeAmount
	}

	if !remainder.Available.SameToken(input.Available) ||
		!transferred.Available.SameToken(input.Available) ||
		!command.Amount.SameToken(input.Available) {
		return fault.ErrCurrencyMismatch
	}

	if !remainder.Owner.Equal(input.Owner) {
		return fault.ErrOwnerUnchanged
	}
	if transferred.Owner.Equal(input.Owner) || !transferred.Owner.Equal(command.Recipient) {
		return fault.ErrOwnerMustChange
	}

	// only the available quantity and the owner may differ
	for _, out := range []*state.TrancheState{remainder, transferred} {
		if out.Terms != input.Terms ||
			!out.Agent.Equal(input.Agent) ||
			!out.TotalIssued.Equal(input.TotalIssued) {
			return fault.ErrConservationViolated
		}
	}
	if remainder.Id == transferred.Id {
		return fault.ErrConservationViolated
	}

	total, err := remainder.Available.Plus(transferred.Available)
	if nil != err {
		return err
	}
	if total.Quantity != input.Available.Quantity {
		return fault.ErrConservationViolated
	}
	if transferred.Available.Quantity != command.Amount.Quantity {
		return fault.ErrConservationViolated
	}
	return nil
}

// balance rows grouped by owner
type rowPair struct {
	in  *state.TrancheBalanceState
	out *state.TrancheBalanceState
}

func verifyBalances(input *state.TrancheState, inRows []*state.TrancheBalanceState, outRows []*state.TrancheBalanceState, command transactionrecord.Command) error {
	if 0 == len(outRows) || len(outRows) > 2 || len(inRows) > 2 {
		return fault.ErrWrongOutputCount
	}

	// the agent's row cannot be both debited and credited
	if command.Recipient.Equal(input.Agent) {
		return fault.ErrOwnerMustChange
	}

	sender := rowPair{}
	recipient := rowPair{}

	assign := func(row *state.TrancheBalanceState, consumed bool) error {
		if row.Balance.Quantity < 0 {
			return fault.ErrNegativeAmount
		}
		if !row.Balance.SameToken(input.Available) {
			return fault.ErrCurrencyMismatch
		}
		if row.Terms.ReferenceNumber != input.Terms.ReferenceNumber || !row.Agent.Equal(input.Agent) {
			return fault.ErrConservationViolated
		}

		var pair *rowPair
		switch {
		case row.Owner.Equal(input.Agent):
			pair = &sender
		case row.Owner.Equal(command.Recipient):
			pair = &recipient
		default:
			return fault.ErrConservationViolated
		}

		slot := &pair.out
		if consumed {
			slot = &pair.in
		}
		if nil != *slot {
			return fault.ErrWrongOutputCount
		}
		*slot = row
		return nil
	}

	for _, row := range inRows {
		if err := assign(row, true); nil != err {
			return err
		}
	}
	for _, row := range outRows {
		if err := assign(row, false); nil != err {
			return err
		}
	}

	// a row keeps its owner for its whole lineage
	for _, out := range outRows {
		for _, in := range inRows {
			if out.Id == in.Id && !out.Owner.Equal(in.Owner) {
				return fault.ErrOwnerUnchanged
			}
		}
	}

	moved := command.Amount.Quantity

	if nil == sender.in {
		if moved > 0 {
			return fault.ErrNegativeAmount
		}
		if nil != sender.out {
			return fault.ErrWrongOutputCount
		}
	} else {
		if nil == sender.out {
			return fault.ErrWrongOutputCount
		}
		remaining := sender.in.Balance.Quantity - moved
		if remaining < 0 {
			return fault.ErrNegativeAmount
		}
		if sender.out.Balance.Quantity != remaining {
			return fault.ErrConservationViolated
		}
	}

	if nil == recipient.out {
		return fault.ErrWrongOutputCount
	}
	previous := int64(0)
	if nil != recipient.in {
		previous = recipient.in.Balance.Quantity
	}
	if previous > math.MaxInt64-moved {
		return fault.ErrNegativeAmount
	}
	if recipient.out.Balance.Quantity != previous+moved {
		return fault.ErrConservationViolated
	}
	return nil
}
