// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bitmark-inc/tranched/state"
)

// a positive decimal amount, returned as typed
func checkAmount(amount string) (string, error) {
	amount = strings.TrimSpace(amount)
	if "" == amount {
		return "", ErrRequiredAmount
	}
	d, err := decimal.NewFromString(amount)
	if nil != err {
		return "", err
	}
	if !d.IsPositive() {
		return "", ErrRequiredAmount
	}
	return amount, nil
}

func checkReference(reference string) (string, error) {
	reference = strings.TrimSpace(reference)
	if "" == reference {
		return "", ErrRequiredReference
	}
	return reference, nil
}

func checkCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if "" == currency {
		return "", ErrRequiredCurrency
	}
	return currency, nil
}

func checkReceiver(receiver string) (string, error) {
	receiver = strings.TrimSpace(receiver)
	if "" == receiver {
		return "", ErrRequiredReceiver
	}
	return receiver, nil
}

// the linear id of a position
func checkStateId(id string) (string, error) {
	id = strings.TrimSpace(id)
	if "" == id {
		return "", ErrRequiredState
	}
	if _, err := state.ParseUniqueId(id); nil != err {
		return "", err
	}
	return id, nil
}
