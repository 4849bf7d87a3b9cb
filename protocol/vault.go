// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"context"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// Vault - the parts of the local store the protocol writes
type Vault interface {
	IsConsumed(ref state.Ref) (merkle.Digest, bool)
	RecordSubmitted(st *transactionrecord.SignedTransaction) error
	RecordReceipt(nt *transactionrecord.NotarisedTransaction) error
	DropPending(txId merkle.Digest) error
	ApplyCommit(nt *transactionrecord.NotarisedTransaction) (bool, error)
}

// Acceptor - local policy consulted before a responder signs
type Acceptor interface {
	Accept(ctx context.Context, from *account.Account, tx *transactionrecord.Transaction, consumed []state.State) error
}

// AcceptAll - sign anything that satisfies the contract
type AcceptAll struct{}

// Accept - always nil
func (AcceptAll) Accept(context.Context, *account.Account, *transactionrecord.Transaction, []state.State) error {
	return nil
}

// find the states a transaction consumes in the notarised
// transactions that produced them
func resolveInputs(tx *transactionrecord.Transaction, dependencies []*transactionrecord.NotarisedTransaction) ([]state.State, error) {
	byId := make(map[merkle.Digest]*transactionrecord.NotarisedTransaction, len(dependencies))
	for _, d := range dependencies {
		if nil == d || nil == d.Signed {
			return nil, fault.ErrDependencyNotFound
		}
		byId[d.Id()] = d
	}

	verified := make(map[merkle.Digest]struct{}, len(dependencies))
	consumed := make([]state.State, len(tx.Inputs))
	for i, ref := range tx.Inputs {
		d, ok := byId[ref.TxId]
		if !ok {
			return nil, fault.ErrDependencyNotFound
		}
		if _, ok := verified[ref.TxId]; !ok {
			if err := d.Verify(); nil != err {
				return nil, err
			}
			if !d.Signed.Tx.Notary.Equal(tx.Notary) {
				return nil, fault.ErrInvalidNotary
			}
			verified[ref.TxId] = struct{}{}
		}
		outputs := d.Signed.Tx.Outputs
		if int(ref.Index) >= len(outputs) {
			return nil, fault.ErrDependencyNotFound
		}
		consumed[i] = outputs[ref.Index]
	}
	return consumed, nil
}

// participants of both consumed and produced states
func participants(tx *transactionrecord.Transaction, consumed []state.State) []*account.Account {
	result := tx.Participants()
	for _, s := range consumed {
	next:
		for _, p := range s.Participants() {
			for _, r := range result {
				if r.Equal(p) {
					continue next
				}
			}
			result = append(result, p)
		}
	}
	return result
}
