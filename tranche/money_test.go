// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tranche_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/tranche"
	"github.com/bitmark-inc/tranched/util"
)

func issuer(seed byte) *account.Account {
	s := make([]byte, 32)
	s[0] = seed
	key, err := account.PrivateKeyFromSeed(s, true)
	if nil != err {
		panic(err)
	}
	return key.Account()
}

func usd(quantity int64) tranche.Money {
	return tranche.Money{
		Quantity:     quantity,
		DisplayScale: 2,
		Token: tranche.Token{
			Issuer:   issuer(1),
			Currency: "USD",
		},
	}
}

func TestPlusMinus(t *testing.T) {
	sum, err := usd(600).Plus(usd(400))
	assert.Nil(t, err, "plus")
	assert.Equal(t, int64(1000), sum.Quantity, "sum")

	diff, err := usd(1000).Minus(usd(400))
	assert.Nil(t, err, "minus")
	assert.Equal(t, int64(600), diff.Quantity, "difference")

	zero, err := usd(400).Minus(usd(400))
	assert.Nil(t, err, "minus to zero")
	assert.True(t, zero.IsZero(), "zero")
}

func TestNegativeResults(t *testing.T) {
	_, err := usd(400).Minus(usd(1000))
	assert.Equal(t, fault.ErrNegativeAmount, err, "overdraft")

	_, err = usd(math.MaxInt64).Plus(usd(1))
	assert.Equal(t, fault.ErrNegativeAmount, err, "overflow")

	_, err = usd(-1).Plus(usd(1))
	assert.Equal(t, fault.ErrNegativeAmount, err, "negative operand")

	_, err = tranche.NewMoney(-5, 2, usd(0).Token)
	assert.Equal(t, fault.ErrNegativeAmount, err, "negative construction")
}

func TestTokenMismatch(t *testing.T) {
	eur := usd(100)
	eur.Token.Currency = "EUR"
	_, err := usd(100).Plus(eur)
	assert.Equal(t, fault.ErrCurrencyMismatch, err, "currency")

	other := usd(100)
	other.Token.Issuer = issuer(2)
	_, err = usd(100).Minus(other)
	assert.Equal(t, fault.ErrCurrencyMismatch, err, "issuer")

	scaled := usd(100)
	scaled.DisplayScale = 3
	assert.False(t, usd(100).SameToken(scaled), "scale")
}

func TestParseMoney(t *testing.T) {
	token := usd(0).Token

	m, err := tranche.ParseMoney("12.5", 2, token)
	assert.Nil(t, err, "parse")
	assert.Equal(t, int64(1250), m.Quantity, "minor units")

	_, err = tranche.ParseMoney("12.345", 2, token)
	assert.Equal(t, fault.ErrInvalidCount, err, "too many places")

	_, err = tranche.ParseMoney("-1", 2, token)
	assert.Equal(t, fault.ErrNegativeAmount, err, "negative")

	_, err = tranche.ParseMoney("abc", 2, token)
	assert.Equal(t, fault.ErrInvalidCount, err, "not a number")
}

func TestString(t *testing.T) {
	assert.Equal(t, "$12.50", usd(1250).String(), "iso currency")

	m := usd(1250)
	m.Token.Currency = "TRN"
	assert.Equal(t, "12.50 TRN", m.String(), "unknown currency")
}

func TestDisplayScaleOf(t *testing.T) {
	assert.Equal(t, int32(2), tranche.DisplayScaleOf("USD"), "dollar")
	assert.Equal(t, int32(0), tranche.DisplayScaleOf("JPY"), "yen")
	assert.Equal(t, int32(3), tranche.DisplayScaleOf("KWD"), "dinar")
	assert.Equal(t, int32(2), tranche.DisplayScaleOf("TRN"), "unknown")
}

func TestMoneyPack(t *testing.T) {
	m := usd(123456)
	buffer, err := m.Pack(nil)
	assert.Nil(t, err, "pack")

	r, err := tranche.UnpackMoney(util.NewCursor(buffer))
	assert.Nil(t, err, "unpack")
	assert.True(t, m.Equal(r), "round trip")

	_, err = usd(-1).Pack(nil)
	assert.Equal(t, fault.ErrNegativeAmount, err, "negative pack")
}

func TestTermsValidate(t *testing.T) {
	terms := tranche.Terms{
		ReferenceNumber: "T-1",
		Borrower:        "Borrower Ltd",
		InterestRate:    "0.0425",
		ExchangeRate:    "1.1",
		Currency:        "USD",
	}
	assert.Nil(t, terms.Validate(), "valid")

	bad := terms
	bad.ReferenceNumber = " "
	assert.Equal(t, fault.ErrInvalidTerms, bad.Validate(), "reference")

	bad = terms
	bad.InterestRate = "4.25%"
	assert.Equal(t, fault.ErrInvalidRate, bad.Validate(), "rate")

	buffer := terms.Pack(nil)
	r, err := tranche.UnpackTerms(util.NewCursor(buffer))
	assert.Nil(t, err, "unpack")
	assert.Equal(t, terms, r, "round trip")
}
