// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transport - point to point sessions between parties
//
// a session carries an ordered exchange of opaque messages for one
// flow; the topic chosen when it is opened selects the handler on the
// receiving side
package transport

import (
	"context"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
)

// Session - an ordered exchange with one counter-party
type Session interface {
	Peer() *account.Account
	Send(ctx context.Context, message []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Handler - serve one inbound session
//
// the handler owns the session and must close it
type Handler func(session Session)

// Transport - opens sessions to parties and dispatches inbound ones
type Transport interface {
	OpenSession(ctx context.Context, party *account.Account, topic string) (Session, error)
	Handle(topic string, handler Handler)
	Close() error
}

// map a finished context to a transport error
func contextError(ctx context.Context) error {
	if context.DeadlineExceeded == ctx.Err() {
		return fault.ErrTimeout
	}
	return ctx.Err()
}
