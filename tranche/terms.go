// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tranche

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/util"
)

// Terms - the business terms of a tranche
//
// all fields other than the reference number are opaque to the ledger;
// two Terms are the same tranche only if every field matches
type Terms struct {
	ReferenceNumber    string `json:"referenceNumber"`
	Borrower           string `json:"borrower"`
	InterestRate       string `json:"interestRate"`
	ExchangeRate       string `json:"exchangeRate"`
	InterestFixingDate string `json:"interestFixingDate"`
	ExchangeFixingDate string `json:"exchangeFixingDate"`
	StartDate          string `json:"startDate"`
	EndDate            string `json:"endDate"`
	Currency           string `json:"currency"`
}

// Validate - check the terms are usable for an issue
func (terms Terms) Validate() error {
	if "" == strings.TrimSpace(terms.ReferenceNumber) {
		return fault.ErrInvalidTerms
	}
	if "" == strings.TrimSpace(terms.Currency) {
		return fault.ErrInvalidTerms
	}
	for _, rate := range []string{terms.InterestRate, terms.ExchangeRate} {
		if "" == rate {
			continue
		}
		if _, err := decimal.NewFromString(rate); nil != err {
			return fault.ErrInvalidRate
		}
	}
	return nil
}

// Pack - append the terms to a buffer, fields in declaration order
func (terms Terms) Pack(buffer []byte) []byte {
	for _, s := range terms.fields() {
		buffer = util.AppendString(buffer, *s)
	}
	return buffer
}

// UnpackTerms - read terms from a cursor
func UnpackTerms(c *util.Cursor) (Terms, error) {
	terms := Terms{}
	for _, s := range terms.fields() {
		v, err := c.String()
		if nil != err {
			return Terms{}, err
		}
		*s = v
	}
	return terms, nil
}

func (terms *Terms) fields() []*string {
	return []*string{
		&terms.ReferenceNumber,
		&terms.Borrower,
		&terms.InterestRate,
		&terms.ExchangeRate,
		&terms.InterestFixingDate,
		&terms.ExchangeFixingDate,
		&terms.StartDate,
		&terms.EndDate,
		&terms.Currency,
	}
}
