// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/testing/fixture"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

func moveTransaction() *transactionrecord.Transaction {
	input := state.Ref{TxId: merkle.NewDigest([]byte("issue")), Index: 0}
	remainder := fixture.Position("T-1", 1000, 600, fixture.Agent)
	transferred := fixture.Position("T-1", 1000, 400, fixture.Buyer)
	return &transactionrecord.Transaction{
		Inputs:  []state.Ref{input},
		Outputs: []state.State{remainder, transferred},
		Command: transactionrecord.Command{
			Intent:    transactionrecord.MoveIntent,
			Amount:    fixture.Amount(400),
			Recipient: fixture.Buyer,
			Signers:   []*account.Account{fixture.Agent, fixture.Buyer},
		},
		Notary: fixture.Notary,
	}
}

func TestPackUnpack(t *testing.T) {
	tx := moveTransaction()
	packed, err := tx.Pack()
	assert.Nil(t, err, "pack")

	r, err := packed.Unpack()
	assert.Nil(t, err, "unpack")
	assert.Equal(t, tx.Inputs, r.Inputs, "inputs")
	assert.Equal(t, 2, len(r.Outputs), "outputs")
	assert.Equal(t, transactionrecord.MoveIntent, r.Command.Intent, "intent")
	assert.True(t, tx.Command.Amount.Equal(r.Command.Amount), "amount")
	assert.True(t, fixture.Buyer.Equal(r.Command.Recipient), "recipient")
	assert.True(t, fixture.Notary.Equal(r.Notary), "notary")

	id1, _ := tx.Id()
	id2, _ := r.Id()
	assert.Equal(t, id1, id2, "id is stable")

	_, err = append(packed, 0x01).Unpack()
	assert.Equal(t, fault.ErrInvalidTransaction, err, "trailing bytes")
}

func TestPackRejectsMalformed(t *testing.T) {
	tx := moveTransaction()
	tx.Notary = nil
	_, err := tx.Pack()
	assert.Equal(t, fault.ErrInvalidNotary, err, "no notary")

	tx = moveTransaction()
	tx.Command.Signers = nil
	_, err = tx.Pack()
	assert.Equal(t, fault.ErrInvalidCommand, err, "no signers")

	tx = moveTransaction()
	tx.Command.Recipient = nil
	_, err = tx.Pack()
	assert.Equal(t, fault.ErrInvalidCommand, err, "move without recipient")
}

func TestSignatures(t *testing.T) {
	st, err := transactionrecord.NewSignedTransaction(moveTransaction())
	assert.Nil(t, err, "new signed")

	assert.Nil(t, st.Sign(fixture.AgentKey), "agent signs")
	assert.Equal(t, 1, len(st.MissingSigners()), "buyer missing")
	assert.Equal(t, fault.ErrSignatureInvalid, st.VerifySignatures(), "incomplete")

	assert.Equal(t, fault.ErrSignatureInvalid, st.Sign(fixture.OtherKey), "not a required signer")

	assert.Nil(t, st.Sign(fixture.BuyerKey), "buyer signs")
	assert.Equal(t, 0, len(st.MissingSigners()), "none missing")
	assert.Nil(t, st.VerifySignatures(), "complete")

	packed, err := st.Pack()
	assert.Nil(t, err, "pack")
	r, err := transactionrecord.UnpackSignedTransaction(packed)
	assert.Nil(t, err, "unpack")
	assert.Equal(t, st.Id, r.Id, "id")
	assert.Nil(t, r.VerifySignatures(), "signatures survive packing")
}

func TestForgedSignature(t *testing.T) {
	st, _ := transactionrecord.NewSignedTransaction(moveTransaction())
	err := st.AddSignature(transactionrecord.Signature{
		Signer:    fixture.Buyer,
		Signature: fixture.OtherKey.Sign(st.Id[:]),
	})
	assert.Equal(t, fault.ErrSignatureInvalid, err, "wrong key")
}

func TestTamperedBody(t *testing.T) {
	st, _ := transactionrecord.NewSignedTransaction(moveTransaction())
	_ = st.Sign(fixture.AgentKey)
	_ = st.Sign(fixture.BuyerKey)

	st.Tx.Command.Amount = fixture.Amount(500)
	assert.Equal(t, fault.ErrSignatureInvalid, st.VerifySignatures(), "body changed")
}

func TestReceipt(t *testing.T) {
	st, _ := transactionrecord.NewSignedTransaction(moveTransaction())
	_ = st.Sign(fixture.AgentKey)
	_ = st.Sign(fixture.BuyerKey)

	receipt := transactionrecord.NewReceipt(st.Id, fixture.NotaryKey)
	assert.Nil(t, receipt.Verify(fixture.Notary, st.Id), "valid")
	assert.Equal(t, fault.ErrInvalidReceipt, receipt.Verify(fixture.Agent, st.Id), "wrong notary")
	assert.Equal(t, fault.ErrInvalidReceipt, receipt.Verify(fixture.Notary, merkle.Digest{}), "wrong tx")

	nt := &transactionrecord.NotarisedTransaction{Signed: st, Receipt: receipt}
	assert.Nil(t, nt.Verify(), "notarised")

	packed, err := nt.Pack()
	assert.Nil(t, err, "pack")
	r, err := transactionrecord.UnpackNotarisedTransaction(packed)
	assert.Nil(t, err, "unpack")
	assert.Equal(t, nt.Id(), r.Id(), "id")
	assert.Nil(t, r.Verify(), "verify after unpack")

	forged := transactionrecord.NewReceipt(st.Id, fixture.OtherKey)
	nt.Receipt = forged
	assert.Equal(t, fault.ErrInvalidReceipt, nt.Verify(), "receipt from another key")
}

func TestParticipants(t *testing.T) {
	p := moveTransaction().Participants()
	assert.Equal(t, 2, len(p), "distinct participants")
}
