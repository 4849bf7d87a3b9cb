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

// Receipt - the notary's signed statement that a transaction was
// accepted and its inputs are now spent
type Receipt struct {
	TxId      merkle.Digest     `json:"txId"`
	Notary    *account.Account  `json:"notary"`
	Signature account.Signature `json:"signature"`
}

// NewReceipt - sign a receipt for a transaction id
func NewReceipt(txId merkle.Digest, notary account.Signer) *Receipt {
	r := &Receipt{
		TxId:   txId,
		Notary: notary.Account(),
	}
	r.Signature = notary.Sign(r.message())
	return r
}

func (r *Receipt) message() []byte {
	message := util.ToVarint64(uint64(ReceiptTag))
	return util.AppendBytes(message, r.TxId[:])
}

// Verify - signed by the expected notary for the expected transaction
func (r *Receipt) Verify(notary *account.Account, txId merkle.Digest) error {
	if nil == r.Notary || !r.Notary.Equal(notary) || r.TxId != txId {
		return fault.ErrInvalidReceipt
	}
	if err := notary.CheckSignature(r.message(), r.Signature); nil != err {
		return fault.ErrInvalidReceipt
	}
	return nil
}

// Pack - Varint64(tag) followed by fields with signature last
func (r *Receipt) Pack() Packed {
	message := r.message()
	message = appendAccount(message, r.Notary)
	return util.AppendBytes(message, r.Signature)
}

// UnpackReceipt - inverse of Pack
func UnpackReceipt(record Packed) (*Receipt, error) {
	c := util.NewCursor(record)
	r, err := unpackReceipt(c)
	if nil != err {
		return nil, err
	}
	if !c.Done() {
		return nil, fault.ErrInvalidReceipt
	}
	return r, nil
}

func unpackReceipt(c *util.Cursor) (*Receipt, error) {
	if err := expectTag(c, ReceiptTag); nil != err {
		return nil, fault.ErrInvalidReceipt
	}
	r := &Receipt{}
	id, err := c.Bytes()
	if nil != err {
		return nil, err
	}
	if err := merkle.DigestFromBytes(&r.TxId, id); nil != err {
		return nil, err
	}
	if r.Notary, err = unpackAccount(c); nil != err {
		return nil, err
	}
	if r.Signature, err = c.Bytes(); nil != err {
		return nil, err
	}
	return r, nil
}

// NotarisedTransaction - a fully signed transaction with the receipt
// that finalised it
type NotarisedTransaction struct {
	Signed  *SignedTransaction `json:"signed"`
	Receipt *Receipt           `json:"receipt"`
}

// Id - the transaction id
func (nt *NotarisedTransaction) Id() merkle.Digest {
	return nt.Signed.Id
}

// Verify - fully signed and finalised by the transaction's notary
func (nt *NotarisedTransaction) Verify() error {
	if err := nt.Signed.VerifySignatures(); nil != err {
		return err
	}
	if nil == nt.Receipt {
		return fault.ErrInvalidReceipt
	}
	return nt.Receipt.Verify(nt.Signed.Tx.Notary, nt.Signed.Id)
}

// Pack - Varint64(tag), signed transaction then receipt
func (nt *NotarisedTransaction) Pack() (Packed, error) {
	signed, err := nt.Signed.Pack()
	if nil != err {
		return nil, err
	}
	if nil == nt.Receipt {
		return nil, fault.ErrInvalidReceipt
	}
	message := util.ToVarint64(uint64(NotarisedTransactionTag))
	message = util.AppendBytes(message, signed)
	return util.AppendBytes(message, nt.Receipt.Pack()), nil
}

// UnpackNotarisedTransaction - inverse of Pack
func UnpackNotarisedTransaction(record Packed) (*NotarisedTransaction, error) {
	c := util.NewCursor(record)
	if err := expectTag(c, NotarisedTransactionTag); nil != err {
		return nil, err
	}
	signed, err := c.Bytes()
	if nil != err {
		return nil, err
	}
	st, err := UnpackSignedTransaction(signed)
	if nil != err {
		return nil, err
	}
	receipt, err := c.Bytes()
	if nil != err {
		return nil, err
	}
	r, err := UnpackReceipt(receipt)
	if nil != err {
		return nil, err
	}
	if !c.Done() {
		return nil, fault.ErrInvalidTransaction
	}
	return &NotarisedTransaction{
		Signed:  st,
		Receipt: r,
	}, nil
}
