// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package projection - a query-only SQL copy of the states a party
// holds
//
// each state type maps to one flat table keyed by linear id with the
// tranche terms as columns; the vault remains the source of truth
package projection

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/tranche"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// Projection - handle on the query database
type Projection struct {
	log *logger.L
	db  *sql.DB
}

// Open - open or create the database and ensure the tables exist
//
// use ":memory:" for a private in-memory database
func Open(log *logger.L, fileName string) (*Projection, error) {
	db, err := sql.Open("sqlite", fileName)
	if nil != err {
		return nil, err
	}

	// a single connection keeps ":memory:" to one database and
	// serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); nil != err {
		db.Close()
		return nil, err
	}

	log.Infof("projection: %s", fileName)
	return &Projection{
		log: log,
		db:  db,
	}, nil
}

// Close - release the database
func (p *Projection) Close() error {
	return p.db.Close()
}

// Apply - reflect a committed transaction
//
// consumed rows are marked, outputs for which relevant is true
// replace any row with the same linear id
func (p *Projection) Apply(ctx context.Context, nt *transactionrecord.NotarisedTransaction, relevant func(state.State) bool) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if nil != err {
		return err
	}

	txId := nt.Id()
	for _, ref := range nt.Signed.Tx.Inputs {
		for _, table := range []string{"tranche_states", "tranche_balance_states"} {
			_, err := tx.ExecContext(ctx,
				`UPDATE `+table+` SET consumed = TRUE WHERE tx_id = ? AND output_index = ?`,
				ref.TxId.String(), ref.Index)
			if nil != err {
				tx.Rollback()
				return err
			}
		}
	}

	for i, s := range nt.Signed.Tx.Outputs {
		if nil != relevant && !relevant(s) {
			continue
		}
		if err := upsert(ctx, tx, s, txId.String(), i); nil != err {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); nil != err {
		return err
	}
	p.log.Debugf("projected: %s", txId)
	return nil
}

func upsert(ctx context.Context, tx *sql.Tx, s state.State, txId string, index int) error {
	switch v := s.(type) {
	case *state.TrancheState:
		_, err := tx.ExecContext(ctx, `
INSERT INTO tranche_states (
	linear_id, reference_number, borrower, interest_rate, exchange_rate,
	interest_fixing_date, exchange_fixing_date, start_date, end_date, currency,
	total_issued, available, display_scale, agent, owner, tx_id, output_index, consumed
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE)
ON CONFLICT(linear_id) DO UPDATE SET
	available = excluded.available,
	owner = excluded.owner,
	tx_id = excluded.tx_id,
	output_index = excluded.output_index,
	consumed = FALSE`,
			append(termColumns(v.Id, v.Terms),
				v.TotalIssued.Quantity, v.Available.Quantity, v.Available.DisplayScale,
				v.Agent.String(), v.Owner.String(), txId, index)...)
		return err

	case *state.TrancheBalanceState:
		_, err := tx.ExecContext(ctx, `
INSERT INTO tranche_balance_states (
	linear_id, reference_number, borrower, interest_rate, exchange_rate,
	interest_fixing_date, exchange_fixing_date, start_date, end_date, currency,
	balance, display_scale, agent, owner, tx_id, output_index, consumed
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE)
ON CONFLICT(linear_id) DO UPDATE SET
	balance = excluded.balance,
	owner = excluded.owner,
	tx_id = excluded.tx_id,
	output_index = excluded.output_index,
	consumed = FALSE`,
			append(termColumns(v.Id, v.Terms),
				v.Balance.Quantity, v.Balance.DisplayScale,
				v.Agent.String(), v.Owner.String(), txId, index)...)
		return err

	default:
		return nil
	}
}

// the key followed by the flattened terms
func termColumns(id state.UniqueId, terms tranche.Terms) []interface{} {
	return []interface{}{
		id.String(),
		terms.ReferenceNumber,
		terms.Borrower,
		terms.InterestRate,
		terms.ExchangeRate,
		terms.InterestFixingDate,
		terms.ExchangeFixingDate,
		terms.StartDate,
		terms.EndDate,
		terms.Currency,
	}
}
