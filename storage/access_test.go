// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"
)

func setupTestDataAccess(t *testing.T) (Access, *leveldb.DB) {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		t.Fatalf("leveldb open error: %s", err)
	}
	return newDA(db, new(leveldb.Batch), newCache()), db
}

func TestBeginShouldErrorWhenAlreadyInTransaction(t *testing.T) {
	da, db := setupTestDataAccess(t)
	defer db.Close()

	err := da.Begin()
	assert.Nil(t, err, "first time Begin should not error")

	err = da.Begin()
	assert.NotNil(t, err, "second time Begin should return error")
}

func TestCommitReleasesBatch(t *testing.T) {
	da, db := setupTestDataAccess(t)
	defer db.Close()

	_ = da.Begin()
	da.Put([]byte("key"), []byte("value"))
	assert.True(t, da.InUse(), "in use before commit")

	err := da.Commit()
	assert.Nil(t, err, "commit")
	assert.False(t, da.InUse(), "released after commit")

	value, err := db.Get([]byte("key"), nil)
	assert.Nil(t, err, "written to database")
	assert.Equal(t, []byte("value"), value, "database value")
}

func TestGetReadsUncommittedFromCache(t *testing.T) {
	da, db := setupTestDataAccess(t)
	defer db.Close()

	_ = da.Begin()
	da.Put([]byte("key"), []byte("value"))

	value, err := da.Get([]byte("key"))
	assert.Nil(t, err, "cached get")
	assert.Equal(t, []byte("value"), value, "cached value")

	da.Abort()
	assert.False(t, da.InUse(), "released after abort")

	_, err = da.Get([]byte("key"))
	assert.Equal(t, leveldb.ErrNotFound, err, "discarded by abort")
}

func TestDeletedKeyReadsFromDatabase(t *testing.T) {
	da, db := setupTestDataAccess(t)
	defer db.Close()

	_ = da.Begin()
	da.Put([]byte("key"), []byte("value"))
	_ = da.Commit()

	_ = da.Begin()
	da.Delete([]byte("key"))
	_ = da.Commit()

	found, err := da.Has([]byte("key"))
	assert.Nil(t, err, "has")
	assert.False(t, found, "deleted")
}

func TestDeletedKeyHiddenBeforeCommit(t *testing.T) {
	da, db := setupTestDataAccess(t)
	defer db.Close()

	_ = da.Begin()
	da.Put([]byte("key"), []byte("value"))
	_ = da.Commit()

	_ = da.Begin()
	da.Delete([]byte("key"))

	found, err := da.Has([]byte("key"))
	assert.Nil(t, err, "has")
	assert.False(t, found, "deleted key visible in open batch")
	_, err = da.Get([]byte("key"))
	assert.Equal(t, leveldb.ErrNotFound, err, "deleted key readable in open batch")

	da.Put([]byte("key"), []byte("again"))
	value, err := da.Get([]byte("key"))
	assert.Nil(t, err, "get after put")
	assert.Equal(t, []byte("again"), value, "put replaces delete")

	da.Abort()
	value, err = da.Get([]byte("key"))
	assert.Nil(t, err, "get after abort")
	assert.Equal(t, []byte("value"), value, "committed value restored")
}

func TestFetchCursorPages(t *testing.T) {
	da, db := setupTestDataAccess(t)
	defer db.Close()

	p := &PoolHandle{prefix: 'X', limit: []byte{'Y'}, dataAccess: da}
	_ = da.Begin()
	for i := uint64(0); i < 5; i += 1 {
		p.putN(sequenceBytes(i), i*10)
	}
	_ = da.Commit()

	cursor := p.NewFetchCursor()
	first, err := cursor.Fetch(3)
	assert.Nil(t, err, "first page")
	assert.Equal(t, 3, len(first), "first page size")

	second, err := cursor.Fetch(3)
	assert.Nil(t, err, "second page")
	assert.Equal(t, 2, len(second), "second page size")
	assert.Equal(t, sequenceBytes(3), second[0].Key, "continues after first page")

	_, err = cursor.Fetch(0)
	assert.NotNil(t, err, "count must be positive")

	n, ok := p.GetN(sequenceBytes(4))
	assert.True(t, ok, "present")
	assert.Equal(t, uint64(40), n, "value")
}
