// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the tranche operations offered over JSON-RPC
//
// registered under the service name "Node"
package ledger

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/counter"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/node"
	"github.com/bitmark-inc/tranched/rpc/ratelimit"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/tranche"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// ServiceName - the name methods are called by
const ServiceName = "Node"

const (
	rateLimitLedger = 200
	rateBurstLedger = 100

	// flows hold a connection for a whole signing round
	rateLimitFlow = 10
	rateBurstFlow = 5

	maximumTransactions = 100
)

// Node - the operations of the local party
type Node interface {
	Issue(ctx context.Context, request node.IssueRequest) node.Outcome
	Transfer(ctx context.Context, request node.TransferRequest) node.Outcome
	Tranches() ([]node.TrancheView, error)
	Balances() ([]node.BalanceView, error)
	Me() (*account.Account, string)
	Peers() []string
	Transactions(start uint64, count int) ([]*transactionrecord.NotarisedTransaction, uint64, error)
}

// Ledger - type for RPC calls
type Ledger struct {
	Log         *logger.L
	Limiter     *rate.Limiter
	FlowLimiter *rate.Limiter
	Start       time.Time
	Version     string
	node        Node
	counter     *counter.Counter
}

// New - RPC wrapper for a node
func New(log *logger.L, n Node, start time.Time, version string, counter *counter.Counter) *Ledger {
	return &Ledger{
		Log:         log,
		Limiter:     rate.NewLimiter(rateLimitLedger, rateBurstLedger),
		FlowLimiter: rate.NewLimiter(rateLimitFlow, rateBurstFlow),
		Start:       start,
		Version:     version,
		node:        n,
		counter:     counter,
	}
}

// ---

// IssueArguments - terms and the total to issue
type IssueArguments struct {
	Terms  tranche.Terms `json:"terms"`
	Amount string        `json:"amount"`
}

// TransferArguments - position, recipient name and amount to move
type TransferArguments struct {
	StateId  string `json:"stateId"`
	NewOwner string `json:"newOwner"`
	Amount   string `json:"amount"`
}

// OutcomeReply - committed transaction id or the rejection reason
type OutcomeReply struct {
	Committed bool          `json:"committed"`
	TxId      merkle.Digest `json:"txId"`
	Message   string        `json:"message"`
}

// Issue - create a tranche with this node as agent
func (l *Ledger) Issue(arguments *IssueArguments, reply *OutcomeReply) error {
	if err := ratelimit.Limit(l.FlowLimiter); nil != err {
		return err
	}

	l.Log.Infof("issue: %q  amount: %s", arguments.Terms.ReferenceNumber, arguments.Amount)

	outcome := l.node.Issue(context.Background(), node.IssueRequest{
		Terms:  arguments.Terms,
		Amount: arguments.Amount,
	})
	fill(reply, outcome)
	return nil
}

// Transfer - move part of a position
func (l *Ledger) Transfer(arguments *TransferArguments, reply *OutcomeReply) error {
	if err := ratelimit.Limit(l.FlowLimiter); nil != err {
		return err
	}

	l.Log.Infof("transfer: %s  to: %q  amount: %s", arguments.StateId, arguments.NewOwner, arguments.Amount)

	outcome := l.node.Transfer(context.Background(), node.TransferRequest{
		StateId:  arguments.StateId,
		NewOwner: arguments.NewOwner,
		Amount:   arguments.Amount,
	})
	fill(reply, outcome)
	return nil
}

func fill(reply *OutcomeReply, outcome node.Outcome) {
	reply.Committed = outcome.Committed
	reply.TxId = outcome.TxId
	reply.Message = outcome.Message()
}

// ---

// ListArguments - empty arguments for list requests
type ListArguments struct{}

// TranchesReply - positions visible to this node
type TranchesReply struct {
	Tranches []node.TrancheView `json:"tranches"`
}

// BalancesReply - balance rows visible to this node
type BalancesReply struct {
	Balances []node.BalanceView `json:"balances"`
}

// Tranches - list unconsumed positions
func (l *Ledger) Tranches(_ *ListArguments, reply *TranchesReply) error {
	if err := ratelimit.Limit(l.Limiter); nil != err {
		return err
	}
	tranches, err := l.node.Tranches()
	if nil != err {
		return err
	}
	reply.Tranches = tranches
	return nil
}

// Balances - list unconsumed balance rows
func (l *Ledger) Balances(_ *ListArguments, reply *BalancesReply) error {
	if err := ratelimit.Limit(l.Limiter); nil != err {
		return err
	}
	balances, err := l.node.Balances()
	if nil != err {
		return err
	}
	reply.Balances = balances
	return nil
}

// ---

// InfoReply - identity and status of this node
type InfoReply struct {
	Name    string           `json:"name"`
	Account *account.Account `json:"account"`
	Peers   []string         `json:"peers"`
	RPCs    uint64           `json:"rpcs"`
	Version string           `json:"version"`
	Uptime  string           `json:"uptime"`
}

// Info - who this node is and who it can trade with
func (l *Ledger) Info(_ *ListArguments, reply *InfoReply) error {
	if err := ratelimit.Limit(l.Limiter); nil != err {
		return err
	}

	reply.Account, reply.Name = l.node.Me()
	reply.Peers = l.node.Peers()
	if nil != l.counter {
		reply.RPCs = l.counter.Uint64()
	}
	reply.Version = l.Version
	reply.Uptime = time.Since(l.Start).String()
	return nil
}

// ---

// TransactionsArguments - page through the committed feed
type TransactionsArguments struct {
	Start uint64 `json:"start,string"`
	Count int    `json:"count"`
}

// TransactionEntry - summary of one committed transaction
type TransactionEntry struct {
	TxId      merkle.Digest    `json:"txId"`
	Intent    string           `json:"intent"`
	Amount    string           `json:"amount"`
	Recipient *account.Account `json:"recipient,omitempty"`
	Inputs    []state.Ref      `json:"inputs"`
	Outputs   []state.UniqueId `json:"outputs"`
	Notary    *account.Account `json:"notary"`
}

// TransactionsReply - a page of the feed
type TransactionsReply struct {
	Transactions []TransactionEntry `json:"transactions"`
	NextStart    uint64             `json:"nextStart,string"`
}

// Transactions - committed transactions in the order applied
func (l *Ledger) Transactions(arguments *TransactionsArguments, reply *TransactionsReply) error {
	if err := ratelimit.LimitN(l.Limiter, arguments.Count, maximumTransactions); nil != err {
		return err
	}

	found, nextStart, err := l.node.Transactions(arguments.Start, arguments.Count)
	if nil != err {
		return err
	}

	reply.Transactions = make([]TransactionEntry, len(found))
	for i, nt := range found {
		tx := nt.Signed.Tx
		outputs := make([]state.UniqueId, len(tx.Outputs))
		for j, s := range tx.Outputs {
			outputs[j] = s.LinearId()
		}
		reply.Transactions[i] = TransactionEntry{
			TxId:      nt.Id(),
			Intent:    tx.Command.Intent.String(),
			Amount:    tx.Command.Amount.String(),
			Recipient: tx.Command.Recipient,
			Inputs:    tx.Inputs,
			Outputs:   outputs,
			Notary:    tx.Notary,
		}
	}
	reply.NextStart = nextStart
	return nil
}
