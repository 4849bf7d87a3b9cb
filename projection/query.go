// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package projection

import (
	"context"
)

// Terms - the flattened tranche terms of a row
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

// TrancheRow - latest known version of a tranche position
type TrancheRow struct {
	Terms
	LinearId     string `json:"linearId"`
	TotalIssued  int64  `json:"totalIssued"`
	Available    int64  `json:"available"`
	DisplayScale int32  `json:"displayScale"`
	Agent        string `json:"agent"`
	Owner        string `json:"owner"`
	TxId         string `json:"txId"`
	OutputIndex  int    `json:"outputIndex"`
	Consumed     bool   `json:"consumed"`
}

// BalanceRow - latest known version of a balance row
type BalanceRow struct {
	Terms
	LinearId     string `json:"linearId"`
	Balance      int64  `json:"balance"`
	DisplayScale int32  `json:"displayScale"`
	Agent        string `json:"agent"`
	Owner        string `json:"owner"`
	TxId         string `json:"txId"`
	OutputIndex  int    `json:"outputIndex"`
	Consumed     bool   `json:"consumed"`
}

// Filter - restrict a listing, empty fields match anything
type Filter struct {
	ReferenceNumber string
	Owner           string
	IncludeConsumed bool
}

func (f Filter) where() (string, []interface{}) {
	clause := ` WHERE 1 = 1`
	args := make([]interface{}, 0, 2)
	if "" != f.ReferenceNumber {
		clause += ` AND reference_number = ?`
		args = append(args, f.ReferenceNumber)
	}
	if "" != f.Owner {
		clause += ` AND owner = ?`
		args = append(args, f.Owner)
	}
	if !f.IncludeConsumed {
		clause += ` AND consumed = FALSE`
	}
	return clause, args
}

const termSelect = `linear_id, reference_number, borrower, interest_rate, exchange_rate,
	interest_fixing_date, exchange_fixing_date, start_date, end_date, currency`

func (t *Terms) fields() []interface{} {
	return []interface{}{
		&t.ReferenceNumber,
		&t.Borrower,
		&t.InterestRate,
		&t.ExchangeRate,
		&t.InterestFixingDate,
		&t.ExchangeFixingDate,
		&t.StartDate,
		&t.EndDate,
		&t.Currency,
	}
}

// Tranches - positions matching the filter, by reference then id
func (p *Projection) Tranches(ctx context.Context, filter Filter) ([]TrancheRow, error) {
	clause, args := filter.where()
	rows, err := p.db.QueryContext(ctx, `SELECT `+termSelect+`,
	total_issued, available, display_scale, agent, owner, tx_id, output_index, consumed
	FROM tranche_states`+clause+` ORDER BY reference_number, linear_id`, args...)
	if nil != err {
		return nil, err
	}
	defer rows.Close()

	result := make([]TrancheRow, 0, 16)
	for rows.Next() {
		var r TrancheRow
		dest := append([]interface{}{&r.LinearId}, r.Terms.fields()...)
		dest = append(dest, &r.TotalIssued, &r.Available, &r.DisplayScale, &r.Agent, &r.Owner, &r.TxId, &r.OutputIndex, &r.Consumed)
		if err := rows.Scan(dest...); nil != err {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Balances - balance rows matching the filter, by reference then id
func (p *Projection) Balances(ctx context.Context, filter Filter) ([]BalanceRow, error) {
	clause, args := filter.where()
	rows, err := p.db.QueryContext(ctx, `SELECT `+termSelect+`,
	balance, display_scale, agent, owner, tx_id, output_index, consumed
	FROM tranche_balance_states`+clause+` ORDER BY reference_number, linear_id`, args...)
	if nil != err {
		return nil, err
	}
	defer rows.Close()

	result := make([]BalanceRow, 0, 16)
	for rows.Next() {
		var r BalanceRow
		dest := append([]interface{}{&r.LinearId}, r.Terms.fields()...)
		dest = append(dest, &r.Balance, &r.DisplayScale, &r.Agent, &r.Owner, &r.TxId, &r.OutputIndex, &r.Consumed)
		if err := rows.Scan(dest...); nil != err {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
