// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package projection

// one row per linear id, replaced as each successor is committed
const schema = `
CREATE TABLE IF NOT EXISTS tranche_states (
	linear_id TEXT PRIMARY KEY,
	reference_number TEXT NOT NULL,
	borrower TEXT NOT NULL,
	interest_rate TEXT NOT NULL,
	exchange_rate TEXT NOT NULL,
	interest_fixing_date TEXT NOT NULL,
	exchange_fixing_date TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	currency TEXT NOT NULL,
	total_issued INTEGER NOT NULL,
	available INTEGER NOT NULL,
	display_scale INTEGER NOT NULL,
	agent TEXT NOT NULL,
	owner TEXT NOT NULL,
	tx_id TEXT NOT NULL,
	output_index INTEGER NOT NULL,
	consumed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS tranche_balance_states (
	linear_id TEXT PRIMARY KEY,
	reference_number TEXT NOT NULL,
	borrower TEXT NOT NULL,
	interest_rate TEXT NOT NULL,
	exchange_rate TEXT NOT NULL,
	interest_fixing_date TEXT NOT NULL,
	exchange_fixing_date TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	currency TEXT NOT NULL,
	balance INTEGER NOT NULL,
	display_scale INTEGER NOT NULL,
	agent TEXT NOT NULL,
	owner TEXT NOT NULL,
	tx_id TEXT NOT NULL,
	output_index INTEGER NOT NULL,
	consumed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS tranche_states_reference ON tranche_states(reference_number);
CREATE INDEX IF NOT EXISTS tranche_balance_states_reference ON tranche_balance_states(reference_number);
`
