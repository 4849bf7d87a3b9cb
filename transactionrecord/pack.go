// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/util"
)

// Pack - Varint64(tag) followed by notary, inputs, outputs and command
//
// the result is the message that every party signs via its digest
func (tx *Transaction) Pack() (Packed, error) {
	if nil == tx.Notary {
		return nil, fault.ErrInvalidNotary
	}
	if len(tx.Inputs) > maxStates || len(tx.Outputs) > maxStates || 0 == len(tx.Outputs) {
		return nil, fault.ErrInvalidCount
	}

	message := util.ToVarint64(uint64(TransactionTag))
	message = appendAccount(message, tx.Notary)

	message = util.AppendUint64(message, uint64(len(tx.Inputs)))
	for _, ref := range tx.Inputs {
		message = ref.Pack(message)
	}

	message = util.AppendUint64(message, uint64(len(tx.Outputs)))
	for _, s := range tx.Outputs {
		packed, err := s.Pack()
		if nil != err {
			return nil, err
		}
		message = util.AppendBytes(message, packed)
	}

	return tx.Command.pack(message)
}

func (command Command) pack(buffer Packed) (Packed, error) {
	if 0 == len(command.Signers) || len(command.Signers) > maxSigners {
		return nil, fault.ErrInvalidCommand
	}

	buffer = util.AppendUint64(buffer, uint64(command.Intent))
	buffer = util.AppendUint64(buffer, uint64(len(command.Signers)))
	for _, signer := range command.Signers {
		buffer = appendAccount(buffer, signer)
	}

	switch command.Intent {
	case IssueIntent:
		return buffer, nil

	case MoveIntent:
		if nil == command.Recipient {
			return nil, fault.ErrInvalidCommand
		}
		buffer, err := command.Amount.Pack(buffer)
		if nil != err {
			return nil, err
		}
		return appendAccount(buffer, command.Recipient), nil

	default:
		return nil, fault.ErrInvalidCommand
	}
}

// append an account to a buffer
//
// the field is prefixed by Varint64(length)
func appendAccount(buffer Packed, address *account.Account) Packed {
	return util.AppendBytes(buffer, address.Bytes())
}
