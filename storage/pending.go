// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/transactionrecord"
	"github.com/bitmark-inc/tranched/util"
)

// PendingRecord - a transaction this party submitted for notarisation
// that has not been applied
//
// Receipt is nil until the notary has answered
type PendingRecord struct {
	Signed  *transactionrecord.SignedTransaction
	Receipt *transactionrecord.Receipt
}

// RecordSubmitted - remember a fully signed transaction before it is
// sent to the notary
func (v *Vault) RecordSubmitted(st *transactionrecord.SignedTransaction) error {
	packed, err := st.Pack()
	if nil != err {
		return err
	}
	return v.putPending(st.Id, packed)
}

// RecordReceipt - remember the notary's receipt before the commit is
// applied locally
func (v *Vault) RecordReceipt(nt *transactionrecord.NotarisedTransaction) error {
	packed, err := nt.Pack()
	if nil != err {
		return err
	}
	return v.putPending(nt.Id(), packed)
}

func (v *Vault) putPending(txId merkle.Digest, packed []byte) error {
	v.Lock()
	defer v.Unlock()

	if v.pools.Transactions.Has(txId[:]) {
		return nil
	}
	if err := v.access.Begin(); nil != err {
		return err
	}
	v.pools.Pending.put(txId[:], packed)
	if err := v.access.Commit(); nil != err {
		v.log.Errorf("pending: %s  error: %s", txId, err)
		return fault.ErrCommitNotApplied
	}
	return nil
}

// DropPending - forget a submission the notary refused
func (v *Vault) DropPending(txId merkle.Digest) error {
	v.Lock()
	defer v.Unlock()

	if err := v.access.Begin(); nil != err {
		return err
	}
	v.pools.Pending.remove(txId[:])
	return v.access.Commit()
}

// Pending - all submissions not yet applied
func (v *Vault) Pending() ([]PendingRecord, error) {
	v.RLock()
	defer v.RUnlock()

	result := make([]PendingRecord, 0, 4)
	err := v.pools.Pending.NewFetchCursor().Map(func(key []byte, value []byte) error {
		tag, n := util.FromVarint64(value)
		if 0 == n {
			return fault.ErrInvalidTransaction
		}
		switch transactionrecord.TagType(tag) {
		case transactionrecord.SignedTransactionTag:
			st, err := transactionrecord.UnpackSignedTransaction(value)
			if nil != err {
				return err
			}
			result = append(result, PendingRecord{Signed: st})
		case transactionrecord.NotarisedTransactionTag:
			nt, err := transactionrecord.UnpackNotarisedTransaction(value)
			if nil != err {
				return err
			}
			result = append(result, PendingRecord{Signed: nt.Signed, Receipt: nt.Receipt})
		default:
			return fault.ErrInvalidTransaction
		}
		return nil
	})
	if nil != err {
		return nil, err
	}
	return result, nil
}
