// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"encoding/binary"

	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

const sequenceKey = "sequence"

// FindUnconsumed - the current unconsumed state with a linear id
func (v *Vault) FindUnconsumed(id state.UniqueId) (*state.StateAndRef, error) {
	v.RLock()
	defer v.RUnlock()

	refBytes := v.pools.Linear.Get(id.Bytes())
	if nil == refBytes {
		return nil, fault.ErrStateNotFound
	}
	return v.stateAt(refBytes)
}

func (v *Vault) stateAt(refBytes []byte) (*state.StateAndRef, error) {
	ref, err := state.RefFromBytes(refBytes)
	if nil != err {
		return nil, err
	}
	record := v.pools.States.Get(refBytes)
	if nil == record {
		v.log.Errorf("linear index points to missing state: %s", ref)
		return nil, fault.ErrStateNotFound
	}
	s, err := state.Unpack(record)
	if nil != err {
		return nil, err
	}
	return &state.StateAndRef{
		State: s,
		Ref:   ref,
	}, nil
}

// FindAllUnconsumed - every unconsumed state accepted by the predicate
func (v *Vault) FindAllUnconsumed(predicate func(state.State) bool) ([]state.StateAndRef, error) {
	v.RLock()
	defer v.RUnlock()

	result := make([]state.StateAndRef, 0, 16)
	err := v.pools.States.NewFetchCursor().Map(func(key []byte, value []byte) error {
		ref, err := state.RefFromBytes(key)
		if nil != err {
			return err
		}
		s, err := state.Unpack(value)
		if nil != err {
			return err
		}
		if nil == predicate || predicate(s) {
			result = append(result, state.StateAndRef{
				State: s,
				Ref:   ref,
			})
		}
		return nil
	})
	if nil != err {
		return nil, err
	}
	return result, nil
}

// IsConsumed - the transaction that consumed a state, if known here
func (v *Vault) IsConsumed(ref state.Ref) (merkle.Digest, bool) {
	v.RLock()
	defer v.RUnlock()

	var txId merkle.Digest
	value := v.pools.Consumed.Get(ref.Bytes())
	if nil == value {
		return txId, false
	}
	if err := merkle.DigestFromBytes(&txId, value); nil != err {
		return txId, false
	}
	return txId, true
}

// Transaction - an applied notarised transaction
func (v *Vault) Transaction(txId merkle.Digest) (*transactionrecord.NotarisedTransaction, error) {
	v.RLock()
	defer v.RUnlock()

	record := v.pools.Transactions.Get(txId[:])
	if nil == record {
		return nil, fault.ErrTransactionNotFound
	}
	return transactionrecord.UnpackNotarisedTransaction(record)
}

// HasTransaction - true if the transaction was applied
func (v *Vault) HasTransaction(txId merkle.Digest) bool {
	v.RLock()
	defer v.RUnlock()
	return v.pools.Transactions.Has(txId[:])
}

// Transactions - applied transactions in order of application
//
// returns the sequence number to start the next page
func (v *Vault) Transactions(start uint64, count int) ([]*transactionrecord.NotarisedTransaction, uint64, error) {
	v.RLock()
	defer v.RUnlock()

	cursor := v.pools.Sequence.NewFetchCursor().Seek(sequenceBytes(start))
	elements, err := cursor.Fetch(count)
	if nil != err {
		return nil, start, err
	}

	result := make([]*transactionrecord.NotarisedTransaction, 0, len(elements))
	next := start
	for _, e := range elements {
		record := v.pools.Transactions.Get(e.Value)
		if nil == record {
			return nil, start, fault.ErrTransactionNotFound
		}
		nt, err := transactionrecord.UnpackNotarisedTransaction(record)
		if nil != err {
			return nil, start, err
		}
		result = append(result, nt)
		next = sequenceFromBytes(e.Key) + 1
	}
	return result, next, nil
}

// ApplyCommit - record a notarised transaction: consume its inputs and
// store the outputs relevant to the vault owner in a single batch
//
// returns false if the transaction had already been applied
func (v *Vault) ApplyCommit(nt *transactionrecord.NotarisedTransaction) (bool, error) {
	if nil == nt || nil == nt.Signed || nil == nt.Receipt {
		return false, fault.ErrInvalidReceipt
	}
	packed, err := nt.Pack()
	if nil != err {
		return false, err
	}

	v.Lock()
	defer v.Unlock()

	txId := nt.Id()
	if v.pools.Transactions.Has(txId[:]) {
		v.log.Debugf("already applied: %s", txId)
		return false, nil
	}

	if err := v.access.Begin(); nil != err {
		return false, err
	}

	for _, ref := range nt.Signed.Tx.Inputs {
		key := ref.Bytes()
		if record := v.pools.States.Get(key); nil != record {
			s, err := state.Unpack(record)
			if nil != err {
				v.access.Abort()
				return false, err
			}
			v.pools.States.remove(key)

			// a successor output with the same id replaces the entry below
			id := s.LinearId().Bytes()
			if bytes.Equal(v.pools.Linear.Get(id), key) {
				v.pools.Linear.remove(id)
			}
		}
		v.pools.Consumed.put(key, txId[:])
	}

	stored := 0
	for i, s := range nt.Signed.Tx.Outputs {
		if !state.IsRelevant(s, v.owner) {
			continue
		}
		record, err := s.Pack()
		if nil != err {
			v.access.Abort()
			return false, err
		}
		key := transactionrecord.OutputRef(txId, i).Bytes()
		v.pools.States.put(key, record)
		v.pools.Linear.put(s.LinearId().Bytes(), key)
		stored += 1
	}

	sequence, _ := v.pools.Counters.GetN([]byte(sequenceKey))
	v.pools.Sequence.put(sequenceBytes(sequence), txId[:])
	v.pools.Counters.putN([]byte(sequenceKey), sequence+1)

	v.pools.Transactions.put(txId[:], packed)
	v.pools.Pending.remove(txId[:])

	if err := v.access.Commit(); nil != err {
		v.log.Errorf("apply: %s  error: %s", txId, err)
		return false, fault.ErrCommitNotApplied
	}

	v.log.Infof("applied: %s  inputs: %d  stored outputs: %d", txId, len(nt.Signed.Tx.Inputs), stored)
	return true, nil
}

func sequenceBytes(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func sequenceFromBytes(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
