// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"fmt"

	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
)

// text shown for failures that carry no rule
const transactionFailed = "Transaction failed."

// Outcome - result of an issue or transfer
//
// exactly one of TxId or Reason is set
type Outcome struct {
	Committed bool          `json:"committed"`
	TxId      merkle.Digest `json:"txId"`
	Reason    string        `json:"reason,omitempty"`
}

func committed(txId merkle.Digest) Outcome {
	return Outcome{
		Committed: true,
		TxId:      txId,
	}
}

func rejected(err error) Outcome {
	return Outcome{
		Reason: Reason(err),
	}
}

// Message - client facing text
func (o Outcome) Message() string {
	if o.Committed {
		return fmt.Sprintf("Transaction id %s committed to ledger.", o.TxId)
	}
	return o.Reason
}

// Reason - the violated rule for errors a caller can act on, a fixed
// message for local failures
func Reason(err error) string {
	switch {
	case nil == err:
		return ""
	case fault.IsErrValidation(err),
		fault.IsErrAuthorisation(err),
		fault.IsErrBalance(err),
		fault.IsErrNotFound(err),
		fault.IsErrDoubleSpend(err),
		fault.IsErrRejected(err),
		fault.IsErrInvalid(err),
		fault.IsErrExists(err):
		return err.Error()
	default:
		return transactionFailed
	}
}
