// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"context"
	"time"

	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// DefaultReconcileInterval - how often pending submissions are retried
const DefaultReconcileInterval = time.Minute

// Reconcile - drive every pending submission to applied or dropped
//
// the notary answers a repeated commit of the same transaction with a
// fresh receipt, so resubmitting is safe
func (n *Node) Reconcile(ctx context.Context) error {
	records, err := n.vault.Pending()
	if nil != err {
		return err
	}

	for _, r := range records {
		txId := r.Signed.Id
		receipt := r.Receipt
		if nil == receipt {
			receipt, err = n.oracle.Commit(ctx, r.Signed)
			if fault.IsErrTransport(err) || context.Canceled == err {
				n.log.Warnf("tx: %s  notary still unavailable: %s", txId, err)
				continue
			} else if nil != err {
				n.log.Warnf("tx: %s  notary refused: %s", txId, err)
				if e := n.vault.DropPending(txId); nil != e {
					n.log.Errorf("tx: %s  drop pending error: %s", txId, e)
				}
				continue
			}
		}

		nt := &transactionrecord.NotarisedTransaction{
			Signed:  r.Signed,
			Receipt: receipt,
		}
		if err := nt.Verify(); nil != err {
			n.log.Errorf("tx: %s  bad receipt: %s", txId, err)
			continue
		}
		if err := n.vault.RecordReceipt(nt); nil != err {
			n.log.Errorf("tx: %s  record receipt error: %s", txId, err)
			continue
		}
		if _, err := n.vault.ApplyCommit(nt); nil != err {
			n.log.Errorf("tx: %s  apply error: %s", txId, err)
			continue
		}
		n.log.Infof("tx: %s  recovered", txId)

		n.initiator.Distribute(ctx, nt, n.dependencies(nt.Signed.Tx))
	}
	return nil
}

// the stored transactions that produced the inputs, any not held are
// left out
func (n *Node) dependencies(tx *transactionrecord.Transaction) []*transactionrecord.NotarisedTransaction {
	seen := make(map[string]struct{})
	result := make([]*transactionrecord.NotarisedTransaction, 0, len(tx.Inputs))
	for _, ref := range tx.Inputs {
		key := ref.TxId.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if d, err := n.vault.Transaction(ref.TxId); nil == err {
			result = append(result, d)
		}
	}
	return result
}

// Reconciler - background process running Reconcile at start, on a
// timer and whenever a flow ends with the notary unreachable
type Reconciler struct {
	node     *Node
	interval time.Duration
}

// Reconciler - the recovery process for this node
func (n *Node) Reconciler(interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &Reconciler{
		node:     n,
		interval: interval,
	}
}

// Run - background process loop
func (r *Reconciler) Run(args interface{}, shutdown <-chan struct{}) {
	log := r.node.log
	log.Info("recovery starting…")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-shutdown
		cancel()
	}()

	timer := time.NewTicker(r.interval)
	defer timer.Stop()

	r.reconcile(ctx)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-timer.C:
			r.reconcile(ctx)
		case item := <-r.node.resubmit.Chan():
			log.Infof("resubmit: %v", item.Item)
			r.reconcile(ctx)
		}
	}
	log.Info("recovery shutting down…")
}

func (r *Reconciler) reconcile(ctx context.Context) {
	if err := r.node.Reconcile(ctx); nil != err {
		r.node.log.Errorf("reconcile error: %s", err)
	}
}
