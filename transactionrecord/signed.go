// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/util"
)

// Signature - one party's signature over a transaction id
type Signature struct {
	Signer    *account.Account  `json:"signer"`
	Signature account.Signature `json:"signature"`
}

// SignedTransaction - a transaction and the signatures collected so far
type SignedTransaction struct {
	Tx         *Transaction  `json:"tx"`
	Id         merkle.Digest `json:"id"`
	Signatures []Signature   `json:"signatures"`
}

// NewSignedTransaction - wrap an unsigned transaction, computing its id
func NewSignedTransaction(tx *Transaction) (*SignedTransaction, error) {
	id, err := tx.Id()
	if nil != err {
		return nil, err
	}
	return &SignedTransaction{
		Tx:         tx,
		Id:         id,
		Signatures: make([]Signature, 0, len(tx.Command.Signers)),
	}, nil
}

// Sign - add the signature of a required signer
func (st *SignedTransaction) Sign(signer account.Signer) error {
	return st.AddSignature(Signature{
		Signer:    signer.Account(),
		Signature: signer.Sign(st.Id[:]),
	})
}

// AddSignature - check and add a signature received from another party
//
// a repeated signature from the same key replaces the earlier one
func (st *SignedTransaction) AddSignature(sig Signature) error {
	if nil == sig.Signer || !st.Tx.Command.HasSigner(sig.Signer) {
		return fault.ErrSignatureInvalid
	}
	if err := sig.Signer.CheckSignature(st.Id[:], sig.Signature); nil != err {
		return err
	}
	for i, s := range st.Signatures {
		if s.Signer.Equal(sig.Signer) {
			st.Signatures[i] = sig
			return nil
		}
	}
	st.Signatures = append(st.Signatures, sig)
	return nil
}

// SignatureOf - the signature made by a key, if present
func (st *SignedTransaction) SignatureOf(key *account.Account) (Signature, bool) {
	for _, s := range st.Signatures {
		if s.Signer.Equal(key) {
			return s, true
		}
	}
	return Signature{}, false
}

// MissingSigners - required signers that have not yet signed
func (st *SignedTransaction) MissingSigners() []*account.Account {
	missing := make([]*account.Account, 0, len(st.Tx.Command.Signers))
	for _, key := range st.Tx.Command.Signers {
		if _, ok := st.SignatureOf(key); !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// VerifySignatures - id matches the body and every required signer
// has a valid signature
func (st *SignedTransaction) VerifySignatures() error {
	id, err := st.Tx.Id()
	if nil != err {
		return err
	}
	if id != st.Id {
		return fault.ErrSignatureInvalid
	}
	for _, key := range st.Tx.Command.Signers {
		sig, ok := st.SignatureOf(key)
		if !ok {
			return fault.ErrSignatureInvalid
		}
		if err := key.CheckSignature(st.Id[:], sig.Signature); nil != err {
			return err
		}
	}
	return nil
}

// Pack - Varint64(tag), packed transaction then signatures
func (st *SignedTransaction) Pack() (Packed, error) {
	tx, err := st.Tx.Pack()
	if nil != err {
		return nil, err
	}
	if len(st.Signatures) > maxSigners {
		return nil, fault.ErrInvalidCount
	}
	message := util.ToVarint64(uint64(SignedTransactionTag))
	message = util.AppendBytes(message, tx)
	message = util.AppendUint64(message, uint64(len(st.Signatures)))
	for _, sig := range st.Signatures {
		message = appendAccount(message, sig.Signer)
		message = util.AppendBytes(message, sig.Signature)
	}
	return message, nil
}

// UnpackSignedTransaction - inverse of Pack, the id is recomputed
// from the body
//
// signatures are not checked here
func UnpackSignedTransaction(record Packed) (*SignedTransaction, error) {
	c := util.NewCursor(record)
	st, err := unpackSigned(c)
	if nil != err {
		return nil, err
	}
	if !c.Done() {
		return nil, fault.ErrInvalidTransaction
	}
	return st, nil
}

func unpackSigned(c *util.Cursor) (*SignedTransaction, error) {
	if err := expectTag(c, SignedTransactionTag); nil != err {
		return nil, err
	}
	body, err := c.Bytes()
	if nil != err {
		return nil, err
	}
	tx, err := Packed(body).Unpack()
	if nil != err {
		return nil, err
	}
	count, err := unpackCount(c, maxSigners)
	if nil != err {
		return nil, err
	}
	st := &SignedTransaction{
		Tx:         tx,
		Id:         merkle.NewDigest(body),
		Signatures: make([]Signature, count),
	}
	for i := range st.Signatures {
		signer, err := unpackAccount(c)
		if nil != err {
			return nil, err
		}
		sig, err := c.Bytes()
		if nil != err {
			return nil, err
		}
		st.Signatures[i] = Signature{
			Signer:    signer,
			Signature: sig,
		}
	}
	return st, nil
}
