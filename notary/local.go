// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary

import (
	"context"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/state"
)

// spent pool key prefix
const spentPrefix = 'X'

// Local - spent set in a LevelDB database
type Local struct {
	sync.Mutex
	db *leveldb.DB
}

// OpenLocal - open or create the spent set database
func OpenLocal(name string) (*Local, error) {
	db, err := leveldb.OpenFile(name, &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	})
	if nil != err {
		return nil, err
	}
	return NewLocal(db), nil
}

// NewLocal - a spent set over an open database
func NewLocal(db *leveldb.DB) *Local {
	return &Local{
		db: db,
	}
}

func spentKey(ref state.Ref) []byte {
	return append([]byte{spentPrefix}, ref.Bytes()...)
}

// Spend - check then write all inputs in one batch
func (l *Local) Spend(ctx context.Context, txId merkle.Digest, refs []state.Ref) (*merkle.Digest, error) {
	if nil != ctx.Err() {
		return nil, ctx.Err()
	}

	l.Lock()
	defer l.Unlock()

	batch := new(leveldb.Batch)
	for _, ref := range refs {
		key := spentKey(ref)
		value, err := l.db.Get(key, nil)
		if leveldb.ErrNotFound == err {
			batch.Put(key, txId[:])
			continue
		} else if nil != err {
			return nil, err
		}
		var consumer merkle.Digest
		if err := merkle.DigestFromBytes(&consumer, value); nil != err {
			return nil, err
		}
		if consumer != txId {
			return &consumer, nil
		}
	}
	if 0 == batch.Len() {
		return nil, nil
	}
	return nil, l.db.Write(batch, nil)
}

// Close - close the database
func (l *Local) Close() error {
	return l.db.Close()
}
