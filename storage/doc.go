// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - the vault: the on-disk store of one party's states
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the avaiable tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. txId         = transaction digest as 32 byte SHA3-256(data)
// 4. ref          = txId ++ output index as big endian uint32 (36 bytes)
// 5. id           = state linear id (16 byte UUID)
// 6. sequence     = successive index value as big endian uint64 (8 bytes)
//
// States:
//
//   S ++ ref                   - unconsumed states relevant to this party
//                                data: packed state
//   L ++ id                    - current spend key of a linear state
//                                data: ref
//   C ++ ref                   - consumed states
//                                data: txId of the consuming transaction
//
// Transactions:
//
//   T ++ txId                  - applied notarised transactions
//                                data: packed notarised transaction
//   Q ++ sequence              - order of application
//                                data: txId
//   N ++ "sequence"            - next sequence value to use
//                                data: sequence
//
// Recovery:
//
//   P ++ txId                  - transactions submitted but not yet applied
//                                data: packed signed transaction
//                                   or packed notarised transaction
package storage
