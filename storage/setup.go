// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/account"
)

// storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	States       *PoolHandle `prefix:"S"`
	Linear       *PoolHandle `prefix:"L"`
	Consumed     *PoolHandle `prefix:"C"`
	Transactions *PoolHandle `prefix:"T"`
	Sequence     *PoolHandle `prefix:"Q"`
	Counters     *PoolHandle `prefix:"N"`
	Pending      *PoolHandle `prefix:"P"`
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentVaultDBVersion = 0x100
)

// Vault - the states and transactions of one party
type Vault struct {
	sync.RWMutex
	log    *logger.L
	owner  *account.Account
	db     *leveldb.DB
	access Access
	pools  pools
}

// Open - open or create the vault database in a directory
func Open(name string, owner *account.Account, log *logger.L) (*Vault, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, err
	}
	v, err := New(db, owner, log)
	if nil != err {
		db.Close()
		return nil, err
	}
	return v, nil
}

// New - a vault over an already open database
//
// the vault takes ownership of the database and closes it on Close
func New(db *leveldb.DB, owner *account.Account, log *logger.L) (*Vault, error) {
	version, err := getVersion(db)
	if nil != err {
		return nil, err
	}

	// ensure no database downgrade
	if version > currentVaultDBVersion {
		log.Criticalf("vault database version: %d > current version: %d", version, currentVaultDBVersion)
		return nil, fmt.Errorf("vault database version: %d > current version: %d", version, currentVaultDBVersion)
	}
	if 0 == version {
		// database was empty so tag as current version
		err = putVersion(db, currentVaultDBVersion)
		if nil != err {
			return nil, err
		}
	}

	v := &Vault{
		log:    log,
		owner:  owner,
		db:     db,
		access: newDA(db, new(leveldb.Batch), newCache()),
	}

	// this will be a struct type
	poolType := reflect.TypeOf(v.pools)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&v.pools).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return nil, fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix:     prefix,
			limit:      limit,
			dataAccess: v.access,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	log.Infof("vault version: 0x%x  owner: %s", currentVaultDBVersion, owner)
	return v, nil
}

// Close - close the database
func (v *Vault) Close() {
	v.Lock()
	defer v.Unlock()
	if nil != v.db {
		v.db.Close()
		v.db = nil
	}
}

// Owner - the party whose states this vault holds
func (v *Vault) Owner() *account.Account {
	return v.owner
}

func getVersion(db *leveldb.DB) (int, error) {
	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return 0, nil
	} else if nil != err {
		return 0, err
	}

	if 4 != len(versionValue) {
		return 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	return int(binary.BigEndian.Uint32(versionValue)), nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
