// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tranche

import (
	"math"

	money "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/util"
)

// maximum number of decimal places in a display amount
const maxDisplayScale = 18

// Token - what a quantity is denominated in
//
// amounts are only combinable when issuer and currency both match
type Token struct {
	Issuer   *account.Account `json:"issuer"`
	Currency string           `json:"currency"`
}

// Equal - identical issuer key and currency code
func (token Token) Equal(other Token) bool {
	return token.Currency == other.Currency && token.Issuer.Equal(other.Issuer)
}

// Money - a non-negative quantity of minor units of a token
type Money struct {
	Quantity     int64 `json:"quantity"`
	DisplayScale int32 `json:"displayScale"`
	Token        Token `json:"token"`
}

// DisplayScaleOf - minor unit digits of an ISO currency, two if the
// code is unknown
func DisplayScaleOf(currency string) int32 {
	if c := money.GetCurrency(currency); nil != c {
		return int32(c.Fraction)
	}
	return 2
}

// NewMoney - create an amount, rejecting negative quantities
func NewMoney(quantity int64, displayScale int32, token Token) (Money, error) {
	if quantity < 0 {
		return Money{}, fault.ErrNegativeAmount
	}
	return Money{
		Quantity:     quantity,
		DisplayScale: displayScale,
		Token:        token,
	}, nil
}

// ParseMoney - convert display text such as "12.50" to minor units
func ParseMoney(text string, displayScale int32, token Token) (Money, error) {
	if displayScale < 0 || displayScale > maxDisplayScale {
		return Money{}, fault.ErrInvalidCount
	}
	d, err := decimal.NewFromString(text)
	if nil != err {
		return Money{}, fault.ErrInvalidCount
	}
	if d.IsNegative() {
		return Money{}, fault.ErrNegativeAmount
	}
	minor := d.Shift(displayScale)
	if !minor.Equal(minor.Truncate(0)) {
		return Money{}, fault.ErrInvalidCount
	}
	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return Money{}, fault.ErrNegativeAmount
	}
	return NewMoney(minor.IntPart(), displayScale, token)
}

// Zero - an empty amount of the same token
func (m Money) Zero() Money {
	return Money{
		Quantity:     0,
		DisplayScale: m.DisplayScale,
		Token:        m.Token,
	}
}

// IsZero - no units
func (m Money) IsZero() bool {
	return 0 == m.Quantity
}

// SameToken - amounts are combinable
func (m Money) SameToken(other Money) bool {
	return m.DisplayScale == other.DisplayScale && m.Token.Equal(other.Token)
}

// Plus - sum of two amounts of the same token
func (m Money) Plus(other Money) (Money, error) {
	if !m.SameToken(other) {
		return Money{}, fault.ErrCurrencyMismatch
	}
	if m.Quantity < 0 || other.Quantity < 0 || m.Quantity > math.MaxInt64-other.Quantity {
		return Money{}, fault.ErrNegativeAmount
	}
	return m.withQuantity(m.Quantity + other.Quantity), nil
}

// Minus - difference of two amounts of the same token
//
// a result below zero is a contract violation, not a wrap around
func (m Money) Minus(other Money) (Money, error) {
	if !m.SameToken(other) {
		return Money{}, fault.ErrCurrencyMismatch
	}
	if other.Quantity < 0 || m.Quantity < other.Quantity {
		return Money{}, fault.ErrNegativeAmount
	}
	return m.withQuantity(m.Quantity - other.Quantity), nil
}

// Equal - same token and quantity
func (m Money) Equal(other Money) bool {
	return m.Quantity == other.Quantity && m.SameToken(other)
}

func (m Money) withQuantity(quantity int64) Money {
	return Money{
		Quantity:     quantity,
		DisplayScale: m.DisplayScale,
		Token:        m.Token,
	}
}

// Decimal - display value as a decimal
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Quantity, -m.DisplayScale)
}

// String - display form, using the ISO currency format when the scale
// matches the currency's minor unit
func (m Money) String() string {
	if c := money.GetCurrency(m.Token.Currency); nil != c && int32(c.Fraction) == m.DisplayScale {
		return money.New(m.Quantity, m.Token.Currency).Display()
	}
	return m.Decimal().StringFixed(m.DisplayScale) + " " + m.Token.Currency
}

// Pack - append the amount to a buffer
func (m Money) Pack(buffer []byte) ([]byte, error) {
	if m.Quantity < 0 {
		return nil, fault.ErrNegativeAmount
	}
	if nil == m.Token.Issuer {
		return nil, fault.ErrInvalidStateRecord
	}
	buffer = util.AppendUint64(buffer, uint64(m.Quantity))
	buffer = util.AppendUint64(buffer, uint64(m.DisplayScale))
	buffer = util.AppendBytes(buffer, m.Token.Issuer.Bytes())
	buffer = util.AppendString(buffer, m.Token.Currency)
	return buffer, nil
}

// UnpackMoney - read an amount from a cursor
func UnpackMoney(c *util.Cursor) (Money, error) {
	quantity, err := c.Uint64()
	if nil != err {
		return Money{}, err
	}
	if quantity > math.MaxInt64 {
		return Money{}, fault.ErrNegativeAmount
	}
	scale, err := c.Uint64()
	if nil != err {
		return Money{}, err
	}
	if scale > maxDisplayScale {
		return Money{}, fault.ErrInvalidStateRecord
	}
	issuerBytes, err := c.Bytes()
	if nil != err {
		return Money{}, err
	}
	issuer, err := account.AccountFromBytes(issuerBytes)
	if nil != err {
		return Money{}, err
	}
	currency, err := c.String()
	if nil != err {
		return Money{}, err
	}
	return Money{
		Quantity:     int64(quantity),
		DisplayScale: int32(scale),
		Token: Token{
			Issuer:   issuer,
			Currency: currency,
		},
	}, nil
}
