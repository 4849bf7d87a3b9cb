// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package state

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/util"
)

// UniqueId - identity of a linear state, stable across replacement
type UniqueId uuid.UUID

// NewUniqueId - a fresh random identity
func NewUniqueId() UniqueId {
	return UniqueId(uuid.New())
}

// ParseUniqueId - from the canonical text form
func ParseUniqueId(s string) (UniqueId, error) {
	u, err := uuid.Parse(s)
	if nil != err {
		return UniqueId{}, fault.ErrStateNotFound
	}
	return UniqueId(u), nil
}

// String - canonical text form
func (id UniqueId) String() string {
	return uuid.UUID(id).String()
}

// Bytes - the raw sixteen bytes
func (id UniqueId) Bytes() []byte {
	return id[:]
}

// MarshalText - for JSON
func (id UniqueId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText - for JSON
func (id *UniqueId) UnmarshalText(s []byte) error {
	u, err := uuid.ParseBytes(s)
	if nil != err {
		return err
	}
	*id = UniqueId(u)
	return nil
}

// Ref - spend key of one output of a committed transaction
type Ref struct {
	TxId  merkle.Digest `json:"txId"`
	Index uint32        `json:"index"`
}

// String - txid:index
func (ref Ref) String() string {
	return fmt.Sprintf("%s:%d", ref.TxId, ref.Index)
}

// ParseRef - from the String form
func ParseRef(s string) (Ref, error) {
	parts := strings.Split(s, ":")
	if 2 != len(parts) {
		return Ref{}, fault.ErrInvalidStateRecord
	}
	txId, err := merkle.DigestFromString(parts[0])
	if nil != err {
		return Ref{}, err
	}
	index, err := strconv.ParseUint(parts[1], 10, 32)
	if nil != err {
		return Ref{}, fault.ErrInvalidStateRecord
	}
	return Ref{TxId: txId, Index: uint32(index)}, nil
}

// Bytes - fixed width binary key: digest followed by big endian index
func (ref Ref) Bytes() []byte {
	b := make([]byte, merkle.DigestLength+4)
	copy(b, ref.TxId[:])
	b[merkle.DigestLength] = byte(ref.Index >> 24)
	b[merkle.DigestLength+1] = byte(ref.Index >> 16)
	b[merkle.DigestLength+2] = byte(ref.Index >> 8)
	b[merkle.DigestLength+3] = byte(ref.Index)
	return b
}

// RefFromBytes - inverse of Bytes
func RefFromBytes(b []byte) (Ref, error) {
	if merkle.DigestLength+4 != len(b) {
		return Ref{}, fault.ErrInvalidStateRecord
	}
	ref := Ref{}
	copy(ref.TxId[:], b[:merkle.DigestLength])
	ref.Index = uint32(b[merkle.DigestLength])<<24 |
		uint32(b[merkle.DigestLength+1])<<16 |
		uint32(b[merkle.DigestLength+2])<<8 |
		uint32(b[merkle.DigestLength+3])
	return ref, nil
}

// Pack - append to a buffer
func (ref Ref) Pack(buffer []byte) []byte {
	buffer = util.AppendBytes(buffer, ref.TxId[:])
	return util.AppendUint64(buffer, uint64(ref.Index))
}

// UnpackRef - read from a cursor
func UnpackRef(c *util.Cursor) (Ref, error) {
	b, err := c.Bytes()
	if nil != err {
		return Ref{}, err
	}
	ref := Ref{}
	if err := merkle.DigestFromBytes(&ref.TxId, b); nil != err {
		return Ref{}, err
	}
	index, err := c.Uint64()
	if nil != err {
		return Ref{}, err
	}
	if index > 0xffffffff {
		return Ref{}, fault.ErrInvalidStateRecord
	}
	ref.Index = uint32(index)
	return ref, nil
}
