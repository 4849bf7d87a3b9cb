// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/transactionrecord"
	"github.com/bitmark-inc/tranched/util"
)

// transport topics
const (
	SignTopic     = "tranche-sign"
	FinaliseTopic = "tranche-finalise"
)

type messageTag uint64

const (
	nullMessage = messageTag(iota)
	proposeMessage
	signatureMessage
	rejectMessage
	finaliseMessage
	acknowledgeMessage
)

// upper bound on dependencies carried with a transaction
const maxDependencies = 64

// proposal: tag, signed transaction, dependencies
// finalise: tag, notarised transaction, dependencies
type envelope struct {
	tag          messageTag
	signed       *transactionrecord.SignedTransaction
	notarised    *transactionrecord.NotarisedTransaction
	dependencies []*transactionrecord.NotarisedTransaction
	signature    transactionrecord.Signature
	reason       string
}

func packDependencies(buffer []byte, dependencies []*transactionrecord.NotarisedTransaction) ([]byte, error) {
	if len(dependencies) > maxDependencies {
		return nil, fault.ErrInvalidCount
	}
	buffer = util.AppendUint64(buffer, uint64(len(dependencies)))
	for _, d := range dependencies {
		packed, err := d.Pack()
		if nil != err {
			return nil, err
		}
		buffer = util.AppendBytes(buffer, packed)
	}
	return buffer, nil
}

func packProposal(st *transactionrecord.SignedTransaction, dependencies []*transactionrecord.NotarisedTransaction) ([]byte, error) {
	packed, err := st.Pack()
	if nil != err {
		return nil, err
	}
	buffer := util.AppendUint64(nil, uint64(proposeMessage))
	buffer = util.AppendBytes(buffer, packed)
	return packDependencies(buffer, dependencies)
}

func packFinalise(nt *transactionrecord.NotarisedTransaction, dependencies []*transactionrecord.NotarisedTransaction) ([]byte, error) {
	packed, err := nt.Pack()
	if nil != err {
		return nil, err
	}
	buffer := util.AppendUint64(nil, uint64(finaliseMessage))
	buffer = util.AppendBytes(buffer, packed)
	return packDependencies(buffer, dependencies)
}

func packSignature(sig transactionrecord.Signature) []byte {
	buffer := util.AppendUint64(nil, uint64(signatureMessage))
	buffer = util.AppendBytes(buffer, sig.Signer.Bytes())
	return util.AppendBytes(buffer, sig.Signature)
}

func packReject(err error) []byte {
	buffer := util.AppendUint64(nil, uint64(rejectMessage))
	return util.AppendString(buffer, err.Error())
}

func packAcknowledge() []byte {
	return util.AppendUint64(nil, uint64(acknowledgeMessage))
}

func unpackMessage(message []byte) (*envelope, error) {
	c := util.NewCursor(message)
	tag, err := c.Uint64()
	if nil != err {
		return nil, err
	}

	e := &envelope{tag: messageTag(tag)}
	switch e.tag {
	case proposeMessage:
		b, err := c.Bytes()
		if nil != err {
			return nil, err
		}
		if e.signed, err = transactionrecord.UnpackSignedTransaction(b); nil != err {
			return nil, err
		}
		if e.dependencies, err = unpackDependencies(c); nil != err {
			return nil, err
		}

	case finaliseMessage:
		b, err := c.Bytes()
		if nil != err {
			return nil, err
		}
		if e.notarised, err = transactionrecord.UnpackNotarisedTransaction(b); nil != err {
			return nil, err
		}
		if e.dependencies, err = unpackDependencies(c); nil != err {
			return nil, err
		}

	case signatureMessage:
		b, err := c.Bytes()
		if nil != err {
			return nil, err
		}
		if e.signature.Signer, err = account.AccountFromBytes(b); nil != err {
			return nil, err
		}
		if e.signature.Signature, err = c.Bytes(); nil != err {
			return nil, err
		}

	case rejectMessage:
		if e.reason, err = c.String(); nil != err {
			return nil, err
		}

	case acknowledgeMessage:

	default:
		return nil, fault.ErrInvalidMessage
	}

	if !c.Done() {
		return nil, fault.ErrInvalidMessage
	}
	return e, nil
}

func unpackDependencies(c *util.Cursor) ([]*transactionrecord.NotarisedTransaction, error) {
	n, err := c.Uint64()
	if nil != err {
		return nil, err
	}
	if n > maxDependencies {
		return nil, fault.ErrInvalidCount
	}
	result := make([]*transactionrecord.NotarisedTransaction, n)
	for i := range result {
		b, err := c.Bytes()
		if nil != err {
			return nil, err
		}
		if result[i], err = transactionrecord.UnpackNotarisedTransaction(b); nil != err {
			return nil, err
		}
	}
	return result, nil
}
