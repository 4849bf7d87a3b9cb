// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/background"
	"github.com/bitmark-inc/tranched/builder"
	"github.com/bitmark-inc/tranched/testing/fixture"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// a fully signed issue left pending as if the node stopped while the
// notary was answering
func submitted(t *testing.T, n *network, notary *account.Account) *transactionrecord.SignedTransaction {
	p, err := builder.BuildIssue(fixture.Terms("T-9"), fixture.Amount(500), fixture.Agent, notary)
	assert.Nil(t, err, "wrong build error")
	st, err := transactionrecord.NewSignedTransaction(p.Tx)
	assert.Nil(t, err, "wrong signed error")
	assert.Nil(t, st.Sign(fixture.AgentKey), "wrong sign error")
	assert.Nil(t, n.vault(fixture.Agent).RecordSubmitted(st), "wrong record error")
	return st
}

func TestReconcileCompletes(t *testing.T) {
	n := newNetwork(t, fixture.AgentKey)
	defer n.close()

	st := submitted(t, n, fixture.Notary)

	// the notary already spent it once
	_, err := n.oracle.Commit(context.Background(), st)
	assert.Nil(t, err, "wrong commit error")

	assert.Nil(t, n.node(fixture.Agent).Reconcile(context.Background()), "wrong reconcile error")

	v := n.vault(fixture.Agent)
	assert.True(t, v.HasTransaction(st.Id), "not applied")
	pending, err := v.Pending()
	assert.Nil(t, err, "wrong pending error")
	assert.Equal(t, 0, len(pending), "pending not cleared")
}

func TestReconcileAppliesRecordedReceipt(t *testing.T) {
	n := newNetwork(t, fixture.AgentKey)
	defer n.close()

	st := submitted(t, n, fixture.Notary)
	nt := &transactionrecord.NotarisedTransaction{
		Signed:  st,
		Receipt: transactionrecord.NewReceipt(st.Id, fixture.NotaryKey),
	}
	v := n.vault(fixture.Agent)
	assert.Nil(t, v.RecordReceipt(nt), "wrong record error")

	assert.Nil(t, n.node(fixture.Agent).Reconcile(context.Background()), "wrong reconcile error")
	assert.True(t, v.HasTransaction(st.Id), "not applied")
}

func TestReconcileDropsRefused(t *testing.T) {
	n := newNetwork(t, fixture.AgentKey)
	defer n.close()

	st := submitted(t, n, fixture.Other)

	assert.Nil(t, n.node(fixture.Agent).Reconcile(context.Background()), "wrong reconcile error")

	v := n.vault(fixture.Agent)
	assert.False(t, v.HasTransaction(st.Id), "refused transaction applied")
	pending, err := v.Pending()
	assert.Nil(t, err, "wrong pending error")
	assert.Equal(t, 0, len(pending), "refused transaction left pending")
}

func TestReconcilerRunsAtStart(t *testing.T) {
	n := newNetwork(t, fixture.AgentKey)
	defer n.close()

	st := submitted(t, n, fixture.Notary)

	b := background.Start(background.Processes{n.node(fixture.Agent).Reconciler(time.Hour)}, nil)
	defer b.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n.vault(fixture.Agent).HasTransaction(st.Id) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("pending transaction not recovered")
}
