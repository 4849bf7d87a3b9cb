// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package state

import (
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/tranche"
	"github.com/bitmark-inc/tranched/util"
)

// Kind - enumeration of state record types
type Kind uint64

// record types, the values appear in packed records
const (
	NullKind    = Kind(iota)
	TrancheKind = Kind(iota)
	BalanceKind = Kind(iota)
)

// State - a ledger record
//
// states are immutable: a change is made by consuming a committed
// state and producing its successor
type State interface {
	Kind() Kind
	LinearId() UniqueId
	Participants() []*account.Account
	Pack() ([]byte, error)
}

// StateAndRef - an unconsumed state together with its spend key
type StateAndRef struct {
	State State
	Ref   Ref
}

// TrancheState - the circulating slice of a tranche held by one owner
type TrancheState struct {
	Terms       tranche.Terms    `json:"terms"`
	TotalIssued tranche.Money    `json:"totalIssued"`
	Agent       *account.Account `json:"agent"`
	Available   tranche.Money    `json:"available"`
	Owner       *account.Account `json:"owner"`
	Id          UniqueId         `json:"id"`
}

// TrancheBalanceState - running balance of one owner for a tranche
type TrancheBalanceState struct {
	Terms   tranche.Terms    `json:"terms"`
	Balance tranche.Money    `json:"balance"`
	Agent   *account.Account `json:"agent"`
	Owner   *account.Account `json:"owner"`
	Id      UniqueId         `json:"id"`
}

// Kind - record type
func (s *TrancheState) Kind() Kind { return TrancheKind }

// Kind - record type
func (s *TrancheBalanceState) Kind() Kind { return BalanceKind }

// LinearId - identity across replacement
func (s *TrancheState) LinearId() UniqueId { return s.Id }

// LinearId - identity across replacement
func (s *TrancheBalanceState) LinearId() UniqueId { return s.Id }

// Participants - parties that store this state
func (s *TrancheState) Participants() []*account.Account {
	return participants(s.Owner, s.Agent)
}

// Participants - parties that store this state
func (s *TrancheBalanceState) Participants() []*account.Account {
	return participants(s.Owner, s.Agent)
}

func participants(owner *account.Account, agent *account.Account) []*account.Account {
	return []*account.Account{owner, agent}
}

// WithOwner - a successor position for a new owner
func (s *TrancheState) WithOwner(owner *account.Account, available tranche.Money, id UniqueId) *TrancheState {
	return &TrancheState{
		Terms:       s.Terms,
		TotalIssued: s.TotalIssued,
		Agent:       s.Agent,
		Available:   available,
		Owner:       owner,
		Id:          id,
	}
}

// WithBalance - a successor row with a new balance
func (s *TrancheBalanceState) WithBalance(balance tranche.Money) *TrancheBalanceState {
	return &TrancheBalanceState{
		Terms:   s.Terms,
		Balance: balance,
		Agent:   s.Agent,
		Owner:   s.Owner,
		Id:      s.Id,
	}
}

// IsRelevant - true if the party should store the state
func IsRelevant(s State, party *account.Account) bool {
	for _, p := range s.Participants() {
		if p.Equal(party) {
			return true
		}
	}
	return false
}

// Pack - Varint64(kind) followed by fields in declaration order
func (s *TrancheState) Pack() ([]byte, error) {
	if nil == s.Agent || nil == s.Owner {
		return nil, fault.ErrInvalidStateRecord
	}
	buffer := util.ToVarint64(uint64(TrancheKind))
	buffer = s.Terms.Pack(buffer)
	buffer, err := s.TotalIssued.Pack(buffer)
	if nil != err {
		return nil, err
	}
	buffer = util.AppendBytes(buffer, s.Agent.Bytes())
	buffer, err = s.Available.Pack(buffer)
	if nil != err {
		return nil, err
	}
	buffer = util.AppendBytes(buffer, s.Owner.Bytes())
	return util.AppendBytes(buffer, s.Id.Bytes()), nil
}

// Pack - Varint64(kind) followed by fields in declaration order
func (s *TrancheBalanceState) Pack() ([]byte, error) {
	if nil == s.Agent || nil == s.Owner {
		return nil, fault.ErrInvalidStateRecord
	}
	buffer := util.ToVarint64(uint64(BalanceKind))
	buffer = s.Terms.Pack(buffer)
	buffer, err := s.Balance.Pack(buffer)
	if nil != err {
		return nil, err
	}
	buffer = util.AppendBytes(buffer, s.Agent.Bytes())
	buffer = util.AppendBytes(buffer, s.Owner.Bytes())
	return util.AppendBytes(buffer, s.Id.Bytes()), nil
}

// Unpack - turn a packed record into a state
//
// must cast result to correct type
//
// e.g.
//   switch s := result.(type) {
//   case *state.TrancheState:
func Unpack(record []byte) (State, error) {
	c := util.NewCursor(record)
	s, err := UnpackFrom(c)
	if nil != err {
		return nil, err
	}
	if !c.Done() {
		return nil, fault.ErrInvalidStateRecord
	}
	return s, nil
}

// UnpackFrom - read one packed state from a cursor
func UnpackFrom(c *util.Cursor) (State, error) {
	kind, err := c.Uint64()
	if nil != err {
		return nil, err
	}

	switch Kind(kind) {
	case TrancheKind:
		s := &TrancheState{}
		if s.Terms, err = tranche.UnpackTerms(c); nil != err {
			return nil, err
		}
		if s.TotalIssued, err = tranche.UnpackMoney(c); nil != err {
			return nil, err
		}
		if s.Agent, err = unpackAccount(c); nil != err {
			return nil, err
		}
		if s.Available, err = tranche.UnpackMoney(c); nil != err {
			return nil, err
		}
		if s.Owner, err = unpackAccount(c); nil != err {
			return nil, err
		}
		if s.Id, err = unpackId(c); nil != err {
			return nil, err
		}
		return s, nil

	case BalanceKind:
		s := &TrancheBalanceState{}
		if s.Terms, err = tranche.UnpackTerms(c); nil != err {
			return nil, err
		}
		if s.Balance, err = tranche.UnpackMoney(c); nil != err {
			return nil, err
		}
		if s.Agent, err = unpackAccount(c); nil != err {
			return nil, err
		}
		if s.Owner, err = unpackAccount(c); nil != err {
			return nil, err
		}
		if s.Id, err = unpackId(c); nil != err {
			return nil, err
		}
		return s, nil

	default:
		return nil, fault.ErrInvalidStateRecord
	}
}

func unpackAccount(c *util.Cursor) (*account.Account, error) {
	b, err := c.Bytes()
	if nil != err {
		return nil, err
	}
	return account.AccountFromBytes(b)
}

func unpackId(c *util.Cursor) (UniqueId, error) {
	b, err := c.Bytes()
	if nil != err {
		return UniqueId{}, err
	}
	id := UniqueId{}
	if len(id) != len(b) {
		return UniqueId{}, fault.ErrInvalidStateRecord
	}
	copy(id[:], b)
	return id, nil
}
