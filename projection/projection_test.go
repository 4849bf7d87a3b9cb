// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package projection_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/background"
	"github.com/bitmark-inc/tranched/messagebus"
	"github.com/bitmark-inc/tranched/projection"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/testing/fixture"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

const (
	testingDirName = "testing"
)

func setupTestLogger() {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

func teardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(testingDirName)
}

func TestMain(m *testing.M) {
	setupTestLogger()
	result := m.Run()
	teardownTestLogger()
	os.Exit(result)
}

func open(t *testing.T) *projection.Projection {
	p, err := projection.Open(logger.New("projection"), ":memory:")
	if nil != err {
		t.Fatalf("open error: %s", err)
	}
	return p
}

func relevantTo(party *account.Account) func(state.State) bool {
	return func(s state.State) bool {
		return state.IsRelevant(s, party)
	}
}

// issue of 1000 then a move of 400 to the buyer
func history() (*transactionrecord.NotarisedTransaction, *transactionrecord.NotarisedTransaction) {
	position := fixture.Position("T-1", 1000, 1000, fixture.Agent)
	row := fixture.BalanceRow("T-1", 1000, fixture.Agent)
	issued := fixture.Notarise(&transactionrecord.Transaction{
		Outputs: []state.State{position, row},
		Command: transactionrecord.Command{
			Intent:  transactionrecord.IssueIntent,
			Signers: []*account.Account{fixture.Agent},
		},
		Notary: fixture.Notary,
	})

	issueId := issued.Id()
	moved := fixture.Notarise(&transactionrecord.Transaction{
		Inputs: []state.Ref{
			transactionrecord.OutputRef(issueId, 0),
			transactionrecord.OutputRef(issueId, 1),
		},
		Outputs: []state.State{
			position.WithOwner(fixture.Agent, fixture.Amount(600), position.Id),
			position.WithOwner(fixture.Buyer, fixture.Amount(400), state.NewUniqueId()),
			row.WithBalance(fixture.Amount(600)),
			fixture.BalanceRow("T-1", 400, fixture.Buyer),
		},
		Command: transactionrecord.Command{
			Intent:    transactionrecord.MoveIntent,
			Amount:    fixture.Amount(400),
			Recipient: fixture.Buyer,
			Signers:   []*account.Account{fixture.Agent, fixture.Buyer},
		},
		Notary: fixture.Notary,
	})
	return issued, moved
}

func TestApplyIssue(t *testing.T) {
	p := open(t)
	defer p.Close()
	ctx := context.Background()

	issued, _ := history()
	assert.Nil(t, p.Apply(ctx, issued, relevantTo(fixture.Agent)), "wrong apply error")

	tranches, err := p.Tranches(ctx, projection.Filter{})
	assert.Nil(t, err, "wrong query error")
	assert.Equal(t, 1, len(tranches), "wrong number of tranches")

	r := tranches[0]
	assert.Equal(t, "T-1", r.ReferenceNumber, "wrong reference")
	assert.Equal(t, "Acme Holdings", r.Borrower, "wrong borrower")
	assert.Equal(t, "2025-02-01", r.EndDate, "wrong end date")
	assert.Equal(t, int64(1000), r.TotalIssued, "wrong total")
	assert.Equal(t, int64(1000), r.Available, "wrong available")
	assert.Equal(t, int32(2), r.DisplayScale, "wrong scale")
	assert.Equal(t, fixture.Agent.String(), r.Owner, "wrong owner")
	assert.Equal(t, issued.Id().String(), r.TxId, "wrong tx id")
	assert.False(t, r.Consumed, "new state consumed")

	balances, err := p.Balances(ctx, projection.Filter{})
	assert.Nil(t, err, "wrong query error")
	assert.Equal(t, 1, len(balances), "wrong number of balances")
	assert.Equal(t, int64(1000), balances[0].Balance, "wrong balance")
}

func TestApplyMove(t *testing.T) {
	p := open(t)
	defer p.Close()
	ctx := context.Background()

	issued, moved := history()
	relevant := relevantTo(fixture.Agent)
	assert.Nil(t, p.Apply(ctx, issued, relevant), "wrong issue apply error")
	assert.Nil(t, p.Apply(ctx, moved, relevant), "wrong move apply error")

	tranches, err := p.Tranches(ctx, projection.Filter{ReferenceNumber: "T-1"})
	assert.Nil(t, err, "wrong query error")
	assert.Equal(t, 2, len(tranches), "wrong number of tranches")

	total := int64(0)
	for _, r := range tranches {
		total += r.Available
		assert.Equal(t, moved.Id().String(), r.TxId, "wrong tx id")
	}
	assert.Equal(t, int64(1000), total, "quantity not conserved")

	buyer, err := p.Balances(ctx, projection.Filter{Owner: fixture.Buyer.String()})
	assert.Nil(t, err, "wrong query error")
	assert.Equal(t, 1, len(buyer), "wrong number of buyer rows")
	assert.Equal(t, int64(400), buyer[0].Balance, "wrong buyer balance")

	// the agent row was replaced, not duplicated
	agent, err := p.Balances(ctx, projection.Filter{Owner: fixture.Agent.String(), IncludeConsumed: true})
	assert.Nil(t, err, "wrong query error")
	assert.Equal(t, 1, len(agent), "wrong number of agent rows")
	assert.Equal(t, int64(600), agent[0].Balance, "wrong agent balance")
}

func TestConsumedHidden(t *testing.T) {
	p := open(t)
	defer p.Close()
	ctx := context.Background()

	issued, moved := history()
	assert.Nil(t, p.Apply(ctx, issued, nil), "wrong issue apply error")

	// the buyer view only stores its own outputs, the consumed rows
	// remain from the issue
	assert.Nil(t, p.Apply(ctx, moved, relevantTo(fixture.Other)), "wrong move apply error")

	live, err := p.Tranches(ctx, projection.Filter{})
	assert.Nil(t, err, "wrong query error")
	assert.Equal(t, 0, len(live), "consumed position listed")

	all, err := p.Tranches(ctx, projection.Filter{IncludeConsumed: true})
	assert.Nil(t, err, "wrong query error")
	assert.Equal(t, 1, len(all), "consumed position missing")
	assert.True(t, all[0].Consumed, "position not marked consumed")
}

func TestFollower(t *testing.T) {
	p := open(t)
	defer p.Close()

	bus := messagebus.NewBroadcastQueue()
	defer bus.Close()

	b := background.Start(background.Processes{p.Follow(bus.Chan(0), nil)}, nil)
	defer b.Stop()

	issued, _ := history()
	bus.Send("ignored", nil)
	bus.Send(messagebus.Committed, issued)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rows, err := p.Balances(context.Background(), projection.Filter{})
		assert.Nil(t, err, "wrong query error")
		if 1 == len(rows) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("commit not projected")
}
