// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package policy - local acceptance rules a counter-party applies
// before signing, written in Rego
//
// a policy defines the set data.tranched.acceptance.deny; any member
// refuses the transaction and is returned as the reason
package policy

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage/inmem"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

const query = "data.tranched.acceptance.deny"

//go:embed default.rego
var defaultPolicy string

// Engine - a prepared acceptance policy
type Engine struct {
	log   *logger.L
	self  *account.Account
	query rego.PreparedEvalQuery
}

// the document a policy sees as input
type input struct {
	Self      string `json:"self"`
	From      string `json:"from"`
	Intent    string `json:"intent"`
	Agent     string `json:"agent"`
	Owner     string `json:"owner"`
	Recipient string `json:"recipient"`
	Reference string `json:"reference"`
	Currency  string `json:"currency"`
	Amount    int64  `json:"amount"`
}

// New - load a policy file, the built-in policy if fileName is empty
//
// data, if not nil, is visible to the policy as data
func New(ctx context.Context, log *logger.L, self *account.Account, fileName string, data map[string]interface{}) (*Engine, error) {
	module := defaultPolicy
	name := "default.rego"
	if "" != fileName {
		b, err := os.ReadFile(fileName)
		if nil != err {
			return nil, err
		}
		module = string(b)
		name = fileName
	}

	options := []func(*rego.Rego){
		rego.Query(query),
		rego.Module(name, module),
		rego.StrictBuiltinErrors(true),
	}
	if nil != data {
		options = append(options, rego.Store(inmem.NewFromObject(data)))
	}

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if nil != err {
		return nil, err
	}

	log.Infof("policy: %s", name)
	return &Engine{
		log:   log,
		self:  self,
		query: prepared,
	}, nil
}

// Accept - nil if no rule denies the transaction
func (e *Engine) Accept(ctx context.Context, from *account.Account, tx *transactionrecord.Transaction, consumed []state.State) error {
	results, err := e.query.Eval(ctx, rego.EvalInput(e.input(from, tx, consumed)))
	if nil != err {
		return err
	}

	reasons := make([]string, 0, 4)
	for _, result := range results {
		for _, expression := range result.Expressions {
			set, ok := expression.Value.([]interface{})
			if !ok {
				continue
			}
			for _, item := range set {
				reasons = append(reasons, fmt.Sprint(item))
			}
		}
	}
	if 0 == len(reasons) {
		return nil
	}

	sort.Strings(reasons)
	e.log.Infof("from: %s  denied: %v", from, reasons)
	return fmt.Errorf("%w: %s", fault.ErrPolicyRejected, reasons[0])
}

func (e *Engine) input(from *account.Account, tx *transactionrecord.Transaction, consumed []state.State) input {
	in := input{
		Self:   e.self.String(),
		From:   from.String(),
		Intent: tx.Command.Intent.String(),
		Amount: tx.Command.Amount.Quantity,
	}
	if nil != tx.Command.Recipient {
		in.Recipient = tx.Command.Recipient.String()
	}

	// the position being split, or the one being issued
	var position *state.TrancheState
	for _, s := range consumed {
		if p, ok := s.(*state.TrancheState); ok {
			position = p
			break
		}
	}
	if nil == position {
		for _, s := range tx.Outputs {
			if p, ok := s.(*state.TrancheState); ok {
				position = p
				break
			}
		}
	}
	if nil != position {
		in.Agent = position.Agent.String()
		in.Owner = position.Owner.String()
		in.Reference = position.Terms.ReferenceNumber
		in.Currency = position.Terms.Currency
		if transactionrecord.IssueIntent == tx.Command.Intent {
			in.Amount = position.TotalIssued.Quantity
		}
	}
	return in
}
