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

// an issue creates one position and the matching balance row from nothing
func verifyIssue(consumed []state.State, produced []state.State, command transactionrecord.Command) error {
	if 0 != len(consumed) {
		return fault.ErrEmptyInputsExpected
	}

	tranches, balances, ok := partition(produced)
	if !ok || 1 != len(tranches) || 1 != len(balances) {
		return fault.ErrWrongOutputCount
	}
	position := tranches[0]
	row := balances[0]

	if position.TotalIssued.Quantity <= 0 ||
		position.Available.Quantity < 0 ||
		row.Balance.Quantity <= 0 {
		return fault.ErrNegativeAmount
	}

	if !position.Available.SameToken(position.TotalIssued) || !row.Balance.SameToken(position.Available) {
		return fault.ErrCurrencyMismatch
	}

	if row.Balance.Quantity != position.Available.Quantity ||
		position.Available.Quantity > position.TotalIssued.Quantity {
		return fault.ErrConservationViolated
	}

	if row.Terms != position.Terms ||
		!row.Owner.Equal(position.Owner) ||
		!row.Agent.Equal(position.Agent) {
		return fault.ErrConservationViolated
	}

	if !command.HasSigner(position.Agent) {
		return fault.ErrMissingRequiredSigner
	}
	return nil
}
