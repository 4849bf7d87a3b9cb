// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"sync"
)

// internal constants
const (
	queueSize = 1000
)

// commands
const (
	Committed = "committed" // Item is *transactionrecord.NotarisedTransaction
	Resubmit  = "resubmit"  // Item is merkle.Digest of a pending transaction
)

// Message - a command and its argument
type Message struct {
	Command string
	Item    interface{}
}

// Queue - single reader queue
type Queue struct {
	c chan Message
}

// NewQueue - create an empty queue
func NewQueue() *Queue {
	return &Queue{
		c: make(chan Message, queueSize),
	}
}

// Send - queue a message, false if the queue is full
func (q *Queue) Send(command string, item interface{}) bool {
	select {
	case q.c <- Message{Command: command, Item: item}:
		return true
	default:
		return false
	}
}

// Chan - channel to read from
func (q *Queue) Chan() <-chan Message {
	return q.c
}

// BroadcastQueue - fan out to any number of listeners
type BroadcastQueue struct {
	sync.Mutex
	listeners []chan Message
	closed    bool
}

// NewBroadcastQueue - create a broadcaster with no listeners
func NewBroadcastQueue() *BroadcastQueue {
	return &BroadcastQueue{}
}

// Send - deliver to every listener with room
//
// messages sent while nothing is listening are lost
func (b *BroadcastQueue) Send(command string, item interface{}) {
	m := Message{Command: command, Item: item}

	b.Lock()
	defer b.Unlock()

	if b.closed {
		return
	}
	for _, l := range b.listeners {
		select {
		case l <- m:
		default:
		}
	}
}

// Chan - add a listener, size of zero uses the default
func (b *BroadcastQueue) Chan(size int) <-chan Message {
	if size <= 0 {
		size = queueSize
	}
	l := make(chan Message, size)

	b.Lock()
	defer b.Unlock()

	if b.closed {
		close(l)
		return l
	}
	b.listeners = append(b.listeners, l)
	return l
}

// Release - remove a listener and close its channel
func (b *BroadcastQueue) Release(listener <-chan Message) {
	b.Lock()
	defer b.Unlock()

	for i, l := range b.listeners {
		if (<-chan Message)(l) == listener {
			close(l)
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Close - close every listener, later sends are dropped
func (b *BroadcastQueue) Close() {
	b.Lock()
	defer b.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, l := range b.listeners {
		close(l)
	}
	b.listeners = nil
}
