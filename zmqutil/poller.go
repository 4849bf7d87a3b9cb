// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"context"
	"sync"
	"time"

	zmq "github.com/pebbe/zmq4"
)

// Poller - a zmq poller that ignores a socket added twice
type Poller struct {
	sync.Mutex
	added  map[*zmq.Socket]struct{}
	poller *zmq.Poller
}

// NewPoller - create an empty poller
func NewPoller() *Poller {
	return &Poller{
		added:  make(map[*zmq.Socket]struct{}),
		poller: zmq.NewPoller(),
	}
}

// Add - watch a socket for events
func (poller *Poller) Add(socket *zmq.Socket, events zmq.State) {
	poller.Lock()
	defer poller.Unlock()

	if _, ok := poller.added[socket]; ok {
		return
	}
	poller.added[socket] = struct{}{}
	poller.poller.Add(socket, events)
}

// Poll - one poll, an empty result means the timeout expired
func (poller *Poller) Poll(timeout time.Duration) ([]zmq.Polled, error) {
	poller.Lock()
	defer poller.Unlock()
	return poller.poller.Poll(timeout)
}

// Wait - poll every interval until a socket is ready or the context
// ends, returning the context's error in that case
func (poller *Poller) Wait(ctx context.Context, interval time.Duration) ([]zmq.Polled, error) {
	for {
		if err := ctx.Err(); nil != err {
			return nil, err
		}
		polled, err := poller.Poll(interval)
		if nil != err || 0 != len(polled) {
			return polled, err
		}
	}
}
