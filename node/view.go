// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/tranche"
)

// TrancheView - client form of a position, parties by display name
type TrancheView struct {
	Id          state.UniqueId `json:"id"`
	Ref         state.Ref      `json:"ref"`
	Terms       tranche.Terms  `json:"terms"`
	TotalIssued string         `json:"totalIssued"`
	Available   string         `json:"available"`
	Agent       string         `json:"agent"`
	Owner       string         `json:"owner"`
}

// BalanceView - client form of a balance row
type BalanceView struct {
	Id      state.UniqueId `json:"id"`
	Ref     state.Ref      `json:"ref"`
	Terms   tranche.Terms  `json:"terms"`
	Balance string         `json:"balance"`
	Agent   string         `json:"agent"`
	Owner   string         `json:"owner"`
}

// Tranches - ListTranches for display
func (n *Node) Tranches() ([]TrancheView, error) {
	found, err := n.ListTranches()
	if nil != err {
		return nil, err
	}
	views := make([]TrancheView, 0, len(found))
	for _, sr := range found {
		s, ok := sr.State.(*state.TrancheState)
		if !ok {
			continue
		}
		views = append(views, TrancheView{
			Id:          s.Id,
			Ref:         sr.Ref,
			Terms:       s.Terms,
			TotalIssued: amount(s.TotalIssued),
			Available:   amount(s.Available),
			Agent:       n.displayName(s.Agent),
			Owner:       n.displayName(s.Owner),
		})
	}
	return views, nil
}

// Balances - ListBalances for display
func (n *Node) Balances() ([]BalanceView, error) {
	found, err := n.ListBalances()
	if nil != err {
		return nil, err
	}
	views := make([]BalanceView, 0, len(found))
	for _, sr := range found {
		s, ok := sr.State.(*state.TrancheBalanceState)
		if !ok {
			continue
		}
		views = append(views, BalanceView{
			Id:      s.Id,
			Ref:     sr.Ref,
			Terms:   s.Terms,
			Balance: amount(s.Balance),
			Agent:   n.displayName(s.Agent),
			Owner:   n.displayName(s.Owner),
		})
	}
	return views, nil
}

// unknown parties show as their account
func (n *Node) displayName(a *account.Account) string {
	if name, ok := n.directory.Name(a); ok {
		return name
	}
	return a.String()
}

func amount(m tranche.Money) string {
	return m.Decimal().StringFixed(m.DisplayScale)
}
