// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/tranche"
)

// TagType - type code for packed records
type TagType uint64

// enumerate the possible record types
// this is encoded a Varint64 at start of "Packed"
const (
	// null marks beginning of list - not used as a record type
	NullTag = TagType(iota)

	// valid record types
	TransactionTag          = TagType(iota) // unsigned ledger transaction
	SignedTransactionTag    = TagType(iota) // transaction with signatures
	ReceiptTag              = TagType(iota) // notary commit receipt
	NotarisedTransactionTag = TagType(iota) // signed transaction with receipt

	// this item must be last
	InvalidTag = TagType(iota)
)

// Packed - packed records are just a byte slice
type Packed []byte

// Intent - what a transaction does to its states
type Intent uint64

// the possible intents
const (
	NullIntent  = Intent(iota)
	IssueIntent = Intent(iota) // create a tranche from nothing
	MoveIntent  = Intent(iota) // transfer part of a position
)

// String - for logging
func (intent Intent) String() string {
	switch intent {
	case IssueIntent:
		return "Issue"
	case MoveIntent:
		return "Move"
	default:
		return "Invalid"
	}
}

// limits on list lengths
const (
	maxStates  = 64
	maxSigners = 16
)

// Command - the declared intent and the keys that must sign
//
// Amount and Recipient are only present for a Move
type Command struct {
	Intent    Intent             `json:"intent"`
	Amount    tranche.Money      `json:"amount"`
	Recipient *account.Account   `json:"recipient,omitempty"`
	Signers   []*account.Account `json:"signers"`
}

// HasSigner - true if key is one of the required signers
func (command Command) HasSigner(key *account.Account) bool {
	for _, s := range command.Signers {
		if s.Equal(key) {
			return true
		}
	}
	return false
}

// Transaction - consumed references, produced states and a command,
// anchored to a single notary
type Transaction struct {
	Inputs  []state.Ref      `json:"inputs"`
	Outputs []state.State    `json:"-"`
	Command Command          `json:"command"`
	Notary  *account.Account `json:"notary"`
}

// Id - SHA3-256 of the packed transaction
func (tx *Transaction) Id() (merkle.Digest, error) {
	packed, err := tx.Pack()
	if nil != err {
		return merkle.Digest{}, err
	}
	return merkle.NewDigest(packed), nil
}

// OutputRef - the spend key of an output of this transaction
func OutputRef(txId merkle.Digest, index int) state.Ref {
	return state.Ref{
		TxId:  txId,
		Index: uint32(index),
	}
}

// Participants - distinct participants of every output
func (tx *Transaction) Participants() []*account.Account {
	result := make([]*account.Account, 0, 4)
	for _, s := range tx.Outputs {
		result = appendDistinct(result, s.Participants()...)
	}
	return result
}

func appendDistinct(list []*account.Account, keys ...*account.Account) []*account.Account {
next:
	for _, k := range keys {
		for _, a := range list {
			if a.Equal(k) {
				continue next
			}
		}
		list = append(list, k)
	}
	return list
}
