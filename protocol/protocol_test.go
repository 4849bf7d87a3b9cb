// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/builder"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/testing/fixture"
	"github.com/bitmark-inc/tranched/transactionrecord"
	"github.com/bitmark-inc/tranched/transport"
)

type rejectAll struct{}

func (rejectAll) Accept(context.Context, *account.Account, *transactionrecord.Transaction, []state.State) error {
	return fault.ErrPolicyRejected
}

// issue a tranche from the agent's node
func issue(t *testing.T, w *world) *transactionrecord.NotarisedTransaction {
	p, err := builder.BuildIssue(fixture.Terms("T-1"), fixture.Amount(1000), fixture.Agent, fixture.Notary)
	assert.Nil(t, err, "wrong build error")

	nt, err := w.initiator(fixture.Agent, nil).Run(context.Background(), p)
	if nil != err {
		t.Fatalf("issue error: %s", err)
	}
	return nt
}

func transfer(t *testing.T, w *world, source state.UniqueId, quantity int64, to *account.Account) *builder.Proposal {
	p, err := builder.BuildTransfer(w.node(fixture.Agent).vault, source, quantity, to, fixture.Agent, fixture.Notary)
	if nil != err {
		t.Fatalf("transfer build error: %s", err)
	}
	return p
}

func TestIssueStages(t *testing.T) {
	w := newWorld(t, fixture.AgentKey)
	defer w.close()

	p, err := builder.BuildIssue(fixture.Terms("T-1"), fixture.Amount(1000), fixture.Agent, fixture.Notary)
	assert.Nil(t, err, "wrong build error")

	r := &recorder{}
	nt, err := w.initiator(fixture.Agent, r.observe).Run(context.Background(), p)
	assert.Nil(t, err, "wrong run error")
	assert.Nil(t, nt.Verify(), "notarised transaction does not verify")

	expected := []Stage{
		Built,
		LocallyVerified,
		LocallySigned,
		AwaitingCountersignatures,
		FullySigned,
		Finalizing,
		Committed,
	}
	assert.Equal(t, expected, r.stages(), "wrong stages")
	for _, tr := range r.transitions {
		assert.Equal(t, nt.Id(), tr.TxId, "wrong transition tx id")
		assert.Nil(t, tr.Err, "unexpected transition error")
	}

	held, err := w.node(fixture.Agent).vault.FindAllUnconsumed(nil)
	assert.Nil(t, err, "wrong find error")
	assert.Equal(t, 2, len(held), "wrong number of states")
}

func TestTransferReachesBothParties(t *testing.T) {
	w := newWorld(t, fixture.AgentKey, fixture.BuyerKey)
	defer w.close()

	issued := issue(t, w)
	source := issued.Signed.Tx.Outputs[0].LinearId()

	nt, err := w.initiator(fixture.Agent, nil).Run(context.Background(), transfer(t, w, source, 400, fixture.Buyer))
	assert.Nil(t, err, "wrong run error")
	assert.Equal(t, 2, len(nt.Signed.Signatures), "wrong number of signatures")

	_, ok := nt.Signed.SignatureOf(fixture.Buyer)
	assert.True(t, ok, "missing buyer signature")

	agent := w.node(fixture.Agent).vault
	buyer := w.node(fixture.Buyer).vault

	remainder, err := agent.FindUnconsumed(source)
	assert.Nil(t, err, "wrong find error")
	assert.Equal(t, int64(600), remainder.State.(*state.TrancheState).Available.Quantity, "wrong remainder")

	held, err := buyer.FindAllUnconsumed(nil)
	assert.Nil(t, err, "wrong find error")
	assert.Equal(t, 2, len(held), "wrong number of buyer states")
	for _, s := range held {
		switch v := s.State.(type) {
		case *state.TrancheState:
			assert.Equal(t, int64(400), v.Available.Quantity, "wrong transferred quantity")
			assert.True(t, fixture.Buyer.Equal(v.Owner), "wrong owner")
		case *state.TrancheBalanceState:
			assert.Equal(t, int64(400), v.Balance.Quantity, "wrong buyer balance")
		}
	}
	assert.True(t, buyer.HasTransaction(nt.Id()), "buyer missing transaction")

	pending, err := agent.Pending()
	assert.Nil(t, err, "wrong pending error")
	assert.Equal(t, 0, len(pending), "pending not cleared")
}

func TestTransferRejectedByCounterparty(t *testing.T) {
	w := newWorld(t, fixture.AgentKey, fixture.BuyerKey)
	defer w.close()

	buyer := w.node(fixture.Buyer)
	buyer.responder.acceptor = rejectAll{}

	issued := issue(t, w)
	source := issued.Signed.Tx.Outputs[0].LinearId()

	r := &recorder{}
	_, err := w.initiator(fixture.Agent, r.observe).Run(context.Background(), transfer(t, w, source, 400, fixture.Buyer))
	assert.True(t, errors.Is(err, fault.ErrCounterpartyRejected), "wrong run error: %s", err)
	assert.Contains(t, err.Error(), fault.ErrPolicyRejected.Error(), "reason not carried")

	last := r.last()
	assert.Equal(t, AwaitingCountersignatures, last.From, "wrong stage at rejection")
	assert.Equal(t, Rejected, last.To, "wrong final stage")
	assert.Equal(t, err, last.Err, "wrong transition error")

	position, err := w.node(fixture.Agent).vault.FindUnconsumed(source)
	assert.Nil(t, err, "source position consumed")
	assert.Equal(t, issued.Id(), position.Ref.TxId, "source position changed")
}

func TestTransferCounterpartyOffline(t *testing.T) {
	w := newWorld(t, fixture.AgentKey, fixture.BuyerKey)
	defer w.close()

	issued := issue(t, w)
	source := issued.Signed.Tx.Outputs[0].LinearId()

	w.node(fixture.Buyer).endpoint.SetOffline(true)

	_, err := w.initiator(fixture.Agent, nil).Run(context.Background(), transfer(t, w, source, 400, fixture.Buyer))
	assert.Equal(t, fault.ErrDisconnected, err, "wrong run error")
	assert.True(t, fault.Retryable(err), "disconnect should be retryable")
}

func TestTransferCancelled(t *testing.T) {
	w := newWorld(t, fixture.AgentKey, fixture.BuyerKey)
	defer w.close()

	issued := issue(t, w)
	source := issued.Signed.Tx.Outputs[0].LinearId()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &recorder{}
	_, err := w.initiator(fixture.Agent, r.observe).Run(ctx, transfer(t, w, source, 400, fixture.Buyer))
	assert.Equal(t, context.Canceled, err, "wrong run error")
	assert.Equal(t, Rejected, r.last().To, "wrong final stage")
}

func TestTransferTimeout(t *testing.T) {
	w := newWorld(t, fixture.AgentKey, fixture.BuyerKey)
	defer w.close()

	issued := issue(t, w)
	source := issued.Signed.Tx.Outputs[0].LinearId()

	// a counter-party that never answers
	w.node(fixture.Buyer).endpoint.Handle(SignTopic, func(session transport.Session) {
		defer session.Close()
		_, _ = session.Receive(context.Background())
		time.Sleep(time.Second)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := w.initiator(fixture.Agent, nil).Run(ctx, transfer(t, w, source, 400, fixture.Buyer))
	assert.Equal(t, fault.ErrTimeout, err, "wrong run error")
}

func TestDoubleSpendRejected(t *testing.T) {
	w := newWorld(t, fixture.AgentKey, fixture.BuyerKey, fixture.OtherKey)
	defer w.close()

	issued := issue(t, w)
	source := issued.Signed.Tx.Outputs[0].LinearId()

	first := transfer(t, w, source, 400, fixture.Buyer)
	second := transfer(t, w, source, 300, fixture.Other)

	_, err := w.initiator(fixture.Agent, nil).Run(context.Background(), first)
	assert.Nil(t, err, "wrong first run error")

	r := &recorder{}
	_, err = w.initiator(fixture.Agent, r.observe).Run(context.Background(), second)
	assert.True(t, errors.Is(err, fault.ErrDoubleSpend), "wrong second run error: %s", err)
	assert.Equal(t, Finalizing, r.last().From, "wrong stage at rejection")

	var conflict *fault.Conflict
	assert.True(t, errors.As(err, &conflict), "not a conflict")
	firstId, _ := first.Tx.Id()
	assert.Equal(t, firstId.String(), conflict.TxId, "wrong conflicting transaction")

	pending, err := w.node(fixture.Agent).vault.Pending()
	assert.Nil(t, err, "wrong pending error")
	assert.Equal(t, 0, len(pending), "conflicting transaction left pending")

	held, err := w.node(fixture.Other).vault.FindAllUnconsumed(nil)
	assert.Nil(t, err, "wrong find error")
	assert.Equal(t, 0, len(held), "conflicting transfer reached recipient")
}

func TestWrongNotaryRejected(t *testing.T) {
	w := newWorld(t, fixture.AgentKey)
	defer w.close()

	p, err := builder.BuildIssue(fixture.Terms("T-1"), fixture.Amount(1000), fixture.Agent, fixture.Other)
	assert.Nil(t, err, "wrong build error")

	r := &recorder{}
	_, err = w.initiator(fixture.Agent, r.observe).Run(context.Background(), p)
	assert.Equal(t, fault.ErrInvalidNotary, err, "wrong run error")
	assert.Equal(t, []Stage{Built, Rejected}, r.stages(), "wrong stages")
}

func TestOnlySignerMayInitiate(t *testing.T) {
	w := newWorld(t, fixture.AgentKey, fixture.BuyerKey)
	defer w.close()

	p, err := builder.BuildIssue(fixture.Terms("T-1"), fixture.Amount(1000), fixture.Agent, fixture.Notary)
	assert.Nil(t, err, "wrong build error")

	_, err = w.initiator(fixture.Buyer, nil).Run(context.Background(), p)
	assert.Equal(t, fault.ErrNotAuthorised, err, "wrong run error")
}
