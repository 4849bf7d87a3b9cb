// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package counter - concurrent counts of open connections
package counter

import (
	"sync/atomic"
)

// Counter - a count that may be changed from many goroutines
type Counter struct {
	n atomic.Uint64
}

// Increment - add 1, returns new value
func (c *Counter) Increment() uint64 {
	return c.n.Add(1)
}

// Decrement - subtract 1, returns new value
func (c *Counter) Decrement() uint64 {
	return c.n.Add(^uint64(0))
}

// Acquire - increment unless that would pass the limit
func (c *Counter) Acquire(limit uint64) bool {
	for {
		n := c.n.Load()
		if n >= limit {
			return false
		}
		if c.n.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Uint64 - current value
func (c *Counter) Uint64() uint64 {
	return c.n.Load()
}

// IsZero - check if zero
func (c *Counter) IsZero() bool {
	return 0 == c.n.Load()
}
