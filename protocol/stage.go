// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"github.com/bitmark-inc/tranched/merkle"
)

// Stage - position of a transaction in the signing protocol
type Stage int

// the stages in order, Rejected is terminal and may follow any stage
// before Committed
const (
	Built Stage = iota
	LocallyVerified
	LocallySigned
	AwaitingCountersignatures
	FullySigned
	Finalizing
	Committed
	Rejected
)

// String - the stage name
func (s Stage) String() string {
	switch s {
	case Built:
		return "BUILT"
	case LocallyVerified:
		return "LOCALLY_VERIFIED"
	case LocallySigned:
		return "LOCALLY_SIGNED"
	case AwaitingCountersignatures:
		return "AWAITING_COUNTERSIGNATURES"
	case FullySigned:
		return "FULLY_SIGNED"
	case Finalizing:
		return "FINALIZING"
	case Committed:
		return "COMMITTED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Label - progress text shown to an operator
func (s Stage) Label() string {
	switch s {
	case Built:
		return "Generating transaction based on new tranche."
	case LocallyVerified:
		return "Verifying contract constraints."
	case LocallySigned:
		return "Signing transaction with our private key."
	case AwaitingCountersignatures:
		return "Gathering the counterparty's signature."
	case FullySigned:
		return "All required signatures collected."
	case Finalizing:
		return "Obtaining notary signature and recording transaction."
	case Committed:
		return "Transaction recorded in the ledger."
	case Rejected:
		return "Transaction rejected."
	default:
		return ""
	}
}

// Transition - one step of a run
//
// Err is set only on a transition to Rejected; the first transition of
// a run has From equal to To
type Transition struct {
	TxId merkle.Digest
	From Stage
	To   Stage
	Err  error
}

// Observer - called synchronously on every transition
type Observer func(Transition)
