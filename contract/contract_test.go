// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/contract"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/testing/fixture"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

var (
	agent = fixture.Agent
	buyer = fixture.Buyer
	other = fixture.Other
)

func issueCommand(signers ...*account.Account) transactionrecord.Command {
	return transactionrecord.Command{
		Intent:  transactionrecord.IssueIntent,
		Signers: signers,
	}
}

func moveCommand(quantity int64, recipient *account.Account, signers ...*account.Account) transactionrecord.Command {
	return transactionrecord.Command{
		Intent:    transactionrecord.MoveIntent,
		Amount:    fixture.Amount(quantity),
		Recipient: recipient,
		Signers:   signers,
	}
}

// a well formed issue of a quantity to the agent
func issueOutputs(quantity int64) (*state.TrancheState, *state.TrancheBalanceState) {
	return fixture.Position("T-1", quantity, quantity, agent), fixture.BalanceRow("T-1", quantity, agent)
}

// a well formed move from the agent's issued position
type move struct {
	input       *state.TrancheState
	inAgentRow  *state.TrancheBalanceState
	inBuyerRow  *state.TrancheBalanceState
	remainder   *state.TrancheState
	transferred *state.TrancheState
	outAgentRow *state.TrancheBalanceState
	outBuyerRow *state.TrancheBalanceState
	moved       int64
}

func newMove(available int64, agentBalance int64, buyerBalance int64, buyerHasRow bool, moved int64) *move {
	m := &move{
		moved: moved,
	}
	m.input = fixture.Position("T-1", 1000, available, agent)
	m.remainder = m.input.WithOwner(agent, fixture.Amount(available-moved), m.input.Id)
	m.transferred = m.input.WithOwner(buyer, fixture.Amount(moved), state.NewUniqueId())

	m.inAgentRow = fixture.BalanceRow("T-1", agentBalance, agent)
	m.outAgentRow = m.inAgentRow.WithBalance(fixture.Amount(agentBalance - moved))
	if buyerHasRow {
		m.inBuyerRow = fixture.BalanceRow("T-1", buyerBalance, buyer)
		m.outBuyerRow = m.inBuyerRow.WithBalance(fixture.Amount(buyerBalance + moved))
	} else {
		m.outBuyerRow = fixture.BalanceRow("T-1", moved, buyer)
	}
	return m
}

func (m *move) consumed() []state.State {
	result := []state.State{m.input, m.inAgentRow}
	if nil != m.inBuyerRow {
		result = append(result, m.inBuyerRow)
	}
	return result
}

func (m *move) produced() []state.State {
	return []state.State{m.remainder, m.transferred, m.outAgentRow, m.outBuyerRow}
}

func (m *move) command() transactionrecord.Command {
	return moveCommand(m.moved, buyer, agent, buyer)
}

func (m *move) verify() error {
	return contract.Verify(m.consumed(), m.produced(), m.command())
}

// issuing 1000 units of T-1 to the agent
func TestIssue(t *testing.T) {
	position, row := issueOutputs(1000)
	err := contract.Verify(nil, []state.State{position, row}, issueCommand(agent))
	assert.Nil(t, err, "valid issue")
	assert.Equal(t, int64(1000), position.Available.Quantity, "available")
	assert.Equal(t, position.Available.Quantity, row.Balance.Quantity, "balance equals available")
}

func TestIssueRules(t *testing.T) {
	position, row := issueOutputs(1000)
	spent := fixture.Position("T-1", 1000, 1000, agent)

	// zero inputs and two positions
	err := contract.Verify(nil, []state.State{position, fixture.Position("T-1", 1000, 1000, agent)}, issueCommand(agent))
	assert.Equal(t, fault.ErrWrongOutputCount, err, "two positions")

	err = contract.Verify([]state.State{spent}, []state.State{position, row}, issueCommand(agent))
	assert.Equal(t, fault.ErrEmptyInputsExpected, err, "has inputs")

	err = contract.Verify(nil, []state.State{position}, issueCommand(agent))
	assert.Equal(t, fault.ErrWrongOutputCount, err, "no balance row")

	err = contract.Verify(nil, []state.State{position, row}, issueCommand(buyer))
	assert.Equal(t, fault.ErrMissingRequiredSigner, err, "agent must sign")

	zero, zeroRow := issueOutputs(0)
	err = contract.Verify(nil, []state.State{zero, zeroRow}, issueCommand(agent))
	assert.Equal(t, fault.ErrNegativeAmount, err, "nothing issued")

	mismatched := fixture.BalanceRow("T-1", 999, agent)
	err = contract.Verify(nil, []state.State{position, mismatched}, issueCommand(agent))
	assert.Equal(t, fault.ErrConservationViolated, err, "balance differs from available")

	eur := fixture.BalanceRow("T-1", 1000, agent)
	eur.Balance.Token.Currency = "EUR"
	err = contract.Verify(nil, []state.State{position, eur}, issueCommand(agent))
	assert.Equal(t, fault.ErrCurrencyMismatch, err, "token differs")

	over := fixture.Position("T-1", 1000, 1001, agent)
	err = contract.Verify(nil, []state.State{over, fixture.BalanceRow("T-1", 1001, agent)}, issueCommand(agent))
	assert.Equal(t, fault.ErrConservationViolated, err, "available above total")

	otherOwner := fixture.BalanceRow("T-1", 1000, other)
	err = contract.Verify(nil, []state.State{position, otherOwner}, issueCommand(agent))
	assert.Equal(t, fault.ErrConservationViolated, err, "row for another owner")
}

// from 1000 transfer 400 to the buyer
func TestMove(t *testing.T) {
	m := newMove(1000, 1000, 0, false, 400)
	assert.Nil(t, m.verify(), "first transfer to buyer")
	assert.Equal(t, int64(600), m.remainder.Available.Quantity, "remainder")
	assert.Equal(t, int64(400), m.transferred.Available.Quantity, "transferred")
	assert.Equal(t, int64(600), m.outAgentRow.Balance.Quantity, "agent balance")
	assert.Equal(t, int64(400), m.outBuyerRow.Balance.Quantity, "buyer balance")

	m = newMove(600, 600, 400, true, 100)
	assert.Nil(t, m.verify(), "buyer already has a row")
}

// remainder given to someone other than the input owner
func TestMoveRemainderOwnerChanged(t *testing.T) {
	m := newMove(1000, 1000, 0, false, 400)
	m.remainder = m.input.WithOwner(buyer, fixture.Amount(600), m.input.Id)
	assert.Equal(t, fault.ErrOwnerUnchanged, m.verify(), "remainder owner")
}

func TestMoveOwnerMustChange(t *testing.T) {
	m := newMove(1000, 1000, 0, false, 400)
	m.transferred = m.input.WithOwner(agent, fixture.Amount(400), state.NewUniqueId())
	assert.Equal(t, fault.ErrOwnerMustChange, m.verify(), "to self")

	m = newMove(1000, 1000, 0, false, 400)
	m.transferred = m.input.WithOwner(other, fixture.Amount(400), state.NewUniqueId())
	assert.Equal(t, fault.ErrOwnerMustChange, m.verify(), "not the named recipient")
}

func TestMoveCounts(t *testing.T) {
	m := newMove(1000, 1000, 0, false, 400)
	err := contract.Verify(m.consumed(), []state.State{m.remainder, m.outAgentRow, m.outBuyerRow}, m.command())
	assert.Equal(t, fault.ErrWrongOutputCount, err, "one position output")

	extra := fixture.Position("T-1", 1000, 1000, agent)
	err = contract.Verify(append(m.consumed(), extra), m.produced(), m.command())
	assert.Equal(t, fault.ErrWrongOutputCount, err, "two position inputs")

	err = contract.Verify(m.consumed(), []state.State{m.remainder, m.transferred}, m.command())
	assert.Equal(t, fault.ErrWrongOutputCount, err, "no balance rows")

	dup := m.outBuyerRow.WithBalance(fixture.Amount(400))
	dup.Id = state.NewUniqueId()
	err = contract.Verify(m.consumed(), append(m.produced(), dup), m.command())
	assert.Equal(t, fault.ErrWrongOutputCount, err, "three balance rows")
}

func TestMoveConservation(t *testing.T) {
	m := newMove(1000, 1000, 0, false, 400)
	m.remainder = m.input.WithOwner(agent, fixture.Amount(700), m.input.Id)
	assert.Equal(t, fault.ErrConservationViolated, m.verify(), "value created")

	m = newMove(1000, 1000, 0, false, 400)
	m.transferred = m.input.WithOwner(buyer, fixture.Amount(300), state.NewUniqueId())
	assert.Equal(t, fault.ErrConservationViolated, m.verify(), "value destroyed")

	m = newMove(1000, 1000, 0, false, 400)
	changed := *m.transferred
	changed.Terms.InterestRate = "0.99"
	m.transferred = &changed
	assert.Equal(t, fault.ErrConservationViolated, m.verify(), "terms changed")

	m = newMove(1000, 1000, 0, false, 400)
	m.outBuyerRow = m.outBuyerRow.WithBalance(fixture.Amount(500))
	assert.Equal(t, fault.ErrConservationViolated, m.verify(), "recipient row inflated")

	m = newMove(1000, 1000, 0, false, 400)
	m.outAgentRow = m.outAgentRow.WithBalance(fixture.Amount(700))
	assert.Equal(t, fault.ErrConservationViolated, m.verify(), "sender row not reduced")

	m = newMove(1000, 1000, 0, false, 400)
	m.transferred.Id = m.remainder.Id
	assert.Equal(t, fault.ErrConservationViolated, m.verify(), "duplicated identity")
}

func TestMoveOverdraft(t *testing.T) {
	m := newMove(1000, 300, 0, false, 400)
	assert.Equal(t, fault.ErrNegativeAmount, m.verify(), "sender balance too small")
}

func TestMoveBalanceRowOwner(t *testing.T) {
	m := newMove(600, 600, 400, true, 100)
	stolen := *m.outBuyerRow
	stolen.Owner = agent
	stolen.Balance = fixture.Amount(500)
	m.outBuyerRow = &stolen
	err := m.verify()
	assert.True(t, fault.IsErrValidation(err), "row changed hands: %v", err)
}

// moving a position the buyer holds debits the agent's row, only the
// agent and the recipient sign
func TestMoveHeldPosition(t *testing.T) {
	input := fixture.Position("T-1", 1000, 400, buyer)
	remainder := input.WithOwner(buyer, fixture.Amount(300), input.Id)
	transferred := input.WithOwner(other, fixture.Amount(100), state.NewUniqueId())
	agentRow := fixture.BalanceRow("T-1", 600, agent)
	buyerRow := fixture.BalanceRow("T-1", 400, buyer)
	otherRow := fixture.BalanceRow("T-1", 100, other)

	consumed := []state.State{input, agentRow}
	produced := []state.State{remainder, transferred, agentRow.WithBalance(fixture.Amount(500)), otherRow}
	err := contract.Verify(consumed, produced, moveCommand(100, other, agent, other))
	assert.Nil(t, err, "agent row debited")

	consumed = []state.State{input, buyerRow}
	produced = []state.State{remainder, transferred, buyerRow.WithBalance(fixture.Amount(300)), otherRow}
	err = contract.Verify(consumed, produced, moveCommand(100, other, agent, buyer, other))
	assert.Equal(t, fault.ErrConservationViolated, err, "holder row debited")

	back := input.WithOwner(agent, fixture.Amount(100), state.NewUniqueId())
	consumed = []state.State{input, agentRow}
	produced = []state.State{remainder, back, agentRow.WithBalance(fixture.Amount(500))}
	err = contract.Verify(consumed, produced, moveCommand(100, agent, agent))
	assert.Equal(t, fault.ErrOwnerMustChange, err, "back to the agent")
}

func TestMoveSigners(t *testing.T) {
	m := newMove(1000, 1000, 0, false, 400)
	err := contract.Verify(m.consumed(), m.produced(), moveCommand(400, buyer, agent))
	assert.Equal(t, fault.ErrMissingRequiredSigner, err, "buyer must sign")

	err = contract.Verify(m.consumed(), m.produced(), moveCommand(400, buyer, buyer))
	assert.Equal(t, fault.ErrMissingRequiredSigner, err, "agent must sign")
}

func TestMoveCurrency(t *testing.T) {
	m := newMove(1000, 1000, 0, false, 400)
	command := m.command()
	command.Amount.Token.Currency = "EUR"
	err := contract.Verify(m.consumed(), m.produced(), command)
	assert.Equal(t, fault.ErrCurrencyMismatch, err, "amount currency")
}

// property: any split of the available quantity is accepted and
// conserves the total
func TestConservationProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i += 1 {
		available := 1 + r.Int63n(1000000)
		moved := r.Int63n(available + 1)
		if 0 == moved {
			moved = 1
		}
		m := newMove(available, available, 0, false, moved)
		if !assert.Nil(t, m.verify(), "%d: available: %d moved: %d", i, available, moved) {
			continue
		}
		assert.Equal(t, available, m.remainder.Available.Quantity+m.transferred.Available.Quantity, "%d: conserved", i)
	}
}

// property: negative and overflowing quantities are always rejected
func TestNonNegativeProperty(t *testing.T) {
	for i, moved := range []int64{-1, -400, math.MinInt64} {
		m := newMove(1000, 1000, 0, false, 400)
		m.transferred = m.input.WithOwner(buyer, fixture.Amount(moved), state.NewUniqueId())
		m.remainder = m.input.WithOwner(agent, fixture.Amount(1000-moved), m.input.Id)
		err := contract.Verify(m.consumed(), m.produced(), moveCommand(moved, buyer, agent, buyer))
		assert.Equal(t, fault.ErrNegativeAmount, err, "%d: moved: %d", i, moved)
	}

	m := newMove(math.MaxInt64, math.MaxInt64, 0, false, 1)
	m.remainder = m.input.WithOwner(agent, fixture.Amount(math.MaxInt64), m.input.Id)
	assert.Equal(t, fault.ErrNegativeAmount, m.verify(), "overflow")
}

func TestVerifyTransaction(t *testing.T) {
	m := newMove(1000, 1000, 0, false, 400)
	tx := &transactionrecord.Transaction{
		Inputs: []state.Ref{
			{TxId: merkle.NewDigest([]byte("a")), Index: 0},
			{TxId: merkle.NewDigest([]byte("a")), Index: 1},
		},
		Outputs: m.produced(),
		Command: m.command(),
		Notary:  fixture.Notary,
	}
	assert.Nil(t, contract.VerifyTransaction(tx, m.consumed()), "resolved")
	assert.Equal(t, fault.ErrDependencyNotFound, contract.VerifyTransaction(tx, m.consumed()[:1]), "unresolved input")

	tx.Notary = nil
	assert.Equal(t, fault.ErrInvalidNotary, contract.VerifyTransaction(tx, m.consumed()), "no notary")
}

func TestUnknownIntent(t *testing.T) {
	position, row := issueOutputs(10)
	err := contract.Verify(nil, []state.State{position, row}, transactionrecord.Command{Signers: []*account.Account{agent}})
	assert.Equal(t, fault.ErrInvalidCommand, err, "null intent")
}
