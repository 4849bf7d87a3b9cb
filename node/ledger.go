// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"github.com/bitmark-inc/tranched/messagebus"
	"github.com/bitmark-inc/tranched/storage"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// the vault, announcing each newly applied commit
type ledger struct {
	*storage.Vault
	bus *messagebus.BroadcastQueue
}

func (l *ledger) ApplyCommit(nt *transactionrecord.NotarisedTransaction) (bool, error) {
	applied, err := l.Vault.ApplyCommit(nt)
	if applied && nil != l.bus {
		l.bus.Send(messagebus.Committed, nt)
	}
	return applied, err
}
