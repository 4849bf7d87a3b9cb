// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/tranche"
	"github.com/bitmark-inc/tranched/util"
)

// Unpack - turn a packed record into a transaction
//
// the whole record must be consumed
func (record Packed) Unpack() (*Transaction, error) {
	c := util.NewCursor(record)
	tx, err := unpackTransaction(c)
	if nil != err {
		return nil, err
	}
	if !c.Done() {
		return nil, fault.ErrInvalidTransaction
	}
	return tx, nil
}

func unpackTransaction(c *util.Cursor) (*Transaction, error) {
	if err := expectTag(c, TransactionTag); nil != err {
		return nil, err
	}

	notary, err := unpackAccount(c)
	if nil != err {
		return nil, err
	}

	inputCount, err := unpackCount(c, maxStates)
	if nil != err {
		return nil, err
	}
	inputs := make([]state.Ref, inputCount)
	for i := range inputs {
		inputs[i], err = state.UnpackRef(c)
		if nil != err {
			return nil, err
		}
	}

	outputCount, err := unpackCount(c, maxStates)
	if nil != err {
		return nil, err
	}
	outputs := make([]state.State, outputCount)
	for i := range outputs {
		b, err := c.Bytes()
		if nil != err {
			return nil, err
		}
		outputs[i], err = state.Unpack(b)
		if nil != err {
			return nil, err
		}
	}

	command, err := unpackCommand(c)
	if nil != err {
		return nil, err
	}

	return &Transaction{
		Inputs:  inputs,
		Outputs: outputs,
		Command: command,
		Notary:  notary,
	}, nil
}

func unpackCommand(c *util.Cursor) (Command, error) {
	intent, err := c.Uint64()
	if nil != err {
		return Command{}, err
	}
	signerCount, err := unpackCount(c, maxSigners)
	if nil != err {
		return Command{}, err
	}
	command := Command{
		Intent:  Intent(intent),
		Signers: make([]*account.Account, signerCount),
	}
	for i := range command.Signers {
		command.Signers[i], err = unpackAccount(c)
		if nil != err {
			return Command{}, err
		}
	}

	switch command.Intent {
	case IssueIntent:
	case MoveIntent:
		command.Amount, err = tranche.UnpackMoney(c)
		if nil != err {
			return Command{}, err
		}
		command.Recipient, err = unpackAccount(c)
		if nil != err {
			return Command{}, err
		}
	default:
		return Command{}, fault.ErrInvalidCommand
	}
	return command, nil
}

func expectTag(c *util.Cursor, tag TagType) error {
	t, err := c.Uint64()
	if nil != err {
		return err
	}
	if tag != TagType(t) {
		return fault.ErrInvalidTransaction
	}
	return nil
}

func unpackCount(c *util.Cursor, maximum int) (int, error) {
	n, err := c.Uint64()
	if nil != err {
		return 0, err
	}
	if n > uint64(maximum) {
		return 0, fault.ErrInvalidCount
	}
	return int(n), nil
}

func unpackAccount(c *util.Cursor) (*account.Account, error) {
	b, err := c.Bytes()
	if nil != err {
		return nil, err
	}
	return account.AccountFromBytes(b)
}
