// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"time"

	cache "github.com/patrickmn/go-cache"
)

// writeCache - the writes of the open batch, visible to reads before
// the batch reaches the database
type writeCache interface {
	Put(key []byte, value []byte)
	Delete(key []byte)
	Lookup(key []byte) (value []byte, deleted bool, found bool)
	Clear()
}

// entries outlive any batch; Commit and Abort clear them
const (
	cacheExpiration = 2 * time.Minute
	cacheCleanup    = 1 * time.Minute
)

type pendingWrite struct {
	deleted bool
	value   []byte
}

type batchCache struct {
	writes *cache.Cache
}

func newCache() writeCache {
	return &batchCache{
		writes: cache.New(cacheExpiration, cacheCleanup),
	}
}

func (c *batchCache) Put(key []byte, value []byte) {
	c.writes.Set(string(key), pendingWrite{value: value}, cache.DefaultExpiration)
}

// Delete - a tombstone, the key reads as absent until the batch ends
func (c *batchCache) Delete(key []byte) {
	c.writes.Set(string(key), pendingWrite{deleted: true}, cache.DefaultExpiration)
}

func (c *batchCache) Lookup(key []byte) ([]byte, bool, bool) {
	item, found := c.writes.Get(string(key))
	if !found {
		return nil, false, false
	}
	w := item.(pendingWrite)
	return w.value, w.deleted, true
}

func (c *batchCache) Clear() {
	c.writes.Flush()
}
