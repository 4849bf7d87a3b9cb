// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package projection

import (
	"context"
	"time"

	"github.com/bitmark-inc/tranched/messagebus"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

const applyTimeout = 10 * time.Second

// Follower - background process applying broadcast commits
type Follower struct {
	projection *Projection
	queue      <-chan messagebus.Message
	relevant   func(state.State) bool
}

// Follow - track commits arriving on queue
func (p *Projection) Follow(queue <-chan messagebus.Message, relevant func(state.State) bool) *Follower {
	return &Follower{
		projection: p,
		queue:      queue,
		relevant:   relevant,
	}
}

// Run - background process loop
func (f *Follower) Run(args interface{}, shutdown <-chan struct{}) {
	log := f.projection.log
	log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case item, ok := <-f.queue:
			if !ok {
				break loop
			}
			if messagebus.Committed != item.Command {
				continue loop
			}
			nt, ok := item.Item.(*transactionrecord.NotarisedTransaction)
			if !ok {
				log.Warnf("unexpected item: %T", item.Item)
				continue loop
			}
			ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
			if err := f.projection.Apply(ctx, nt, f.relevant); nil != err {
				log.Errorf("tx: %s  projection error: %s", nt.Id(), err)
			}
			cancel()
		}
	}
	log.Info("shutting down…")
}
