// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixture - deterministic parties and tranche values shared by
// package tests
package fixture

import (
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/tranche"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// deterministic keys
var (
	AgentKey  = Key(0x0a)
	BuyerKey  = Key(0x0b)
	OtherKey  = Key(0x0c)
	NotaryKey = Key(0x0d)

	Agent  = AgentKey.Account()
	Buyer  = BuyerKey.Account()
	Other  = OtherKey.Account()
	Notary = NotaryKey.Account()
)

// Key - private key from a one byte seed
func Key(seed byte) *account.PrivateKey {
	s := make([]byte, 32)
	for i := range s {
		s[i] = seed
	}
	key, err := account.PrivateKeyFromSeed(s, true)
	if nil != err {
		panic(err)
	}
	return key
}

// Terms - terms for a tranche reference
func Terms(reference string) tranche.Terms {
	return tranche.Terms{
		ReferenceNumber:    reference,
		Borrower:           "Acme Holdings",
		InterestRate:       "0.0425",
		ExchangeRate:       "1.0870",
		InterestFixingDate: "2020-01-15",
		ExchangeFixingDate: "2020-01-15",
		StartDate:          "2020-02-01",
		EndDate:            "2025-02-01",
		Currency:           "USD",
	}
}

// Token - USD issued by the agent
func Token() tranche.Token {
	return tranche.Token{
		Issuer:   Agent,
		Currency: "USD",
	}
}

// Amount - quantity of the agent's USD token
func Amount(quantity int64) tranche.Money {
	return tranche.Money{
		Quantity:     quantity,
		DisplayScale: 2,
		Token:        Token(),
	}
}

// Position - a tranche position
func Position(reference string, total int64, available int64, owner *account.Account) *state.TrancheState {
	return &state.TrancheState{
		Terms:       Terms(reference),
		TotalIssued: Amount(total),
		Agent:       Agent,
		Available:   Amount(available),
		Owner:       owner,
		Id:          state.NewUniqueId(),
	}
}

// BalanceRow - a balance row
func BalanceRow(reference string, balance int64, owner *account.Account) *state.TrancheBalanceState {
	return &state.TrancheBalanceState{
		Terms:   Terms(reference),
		Balance: Amount(balance),
		Agent:   Agent,
		Owner:   owner,
		Id:      state.NewUniqueId(),
	}
}

// KeyOf - the private key of a fixture account
func KeyOf(a *account.Account) *account.PrivateKey {
	for _, key := range []*account.PrivateKey{AgentKey, BuyerKey, OtherKey, NotaryKey} {
		if key.Account().Equal(a) {
			return key
		}
	}
	return nil
}

// Notarise - sign with every required fixture key and add a receipt
// from the fixture notary
func Notarise(tx *transactionrecord.Transaction) *transactionrecord.NotarisedTransaction {
	st, err := transactionrecord.NewSignedTransaction(tx)
	if nil != err {
		panic(err)
	}
	for _, signer := range tx.Command.Signers {
		if err := st.Sign(KeyOf(signer)); nil != err {
			panic(err)
		}
	}
	return &transactionrecord.NotarisedTransaction{
		Signed:  st,
		Receipt: transactionrecord.NewReceipt(st.Id, NotaryKey),
	}
}
