// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil_test

import (
	"context"
	"testing"
	"time"

	zmq "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/tranched/zmqutil"
)

func TestPollerWait(t *testing.T) {
	push, pull, err := zmqutil.NewSignalPair("inproc://poller-wait")
	if !assert.Nil(t, err, "signal pair") {
		return
	}
	defer push.Close()
	defer pull.Close()

	poller := zmqutil.NewPoller()
	poller.Add(pull, zmq.POLLIN)
	poller.Add(pull, zmq.POLLIN)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	polled, err := poller.Wait(ctx, 10*time.Millisecond)
	assert.Equal(t, context.DeadlineExceeded, err, "nothing sent")
	assert.Equal(t, 0, len(polled), "polled without a message")

	_, err = push.SendMessage("wake")
	assert.Nil(t, err, "send")

	polled, err = poller.Wait(context.Background(), 10*time.Millisecond)
	assert.Nil(t, err, "wait")
	if assert.Equal(t, 1, len(polled), "one socket ready") {
		assert.Equal(t, pull, polled[0].Socket, "wrong socket")
	}
}
