// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"github.com/bitmark-inc/tranched/fault"
)

// maximum length of any length-prefixed field
const maxFieldLength = 65535

// AppendBytes - append bytes to a buffer
//
// the field is prefixed by Varint64(length)
func AppendBytes(buffer []byte, data []byte) []byte {
	buffer = AppendUint64(buffer, uint64(len(data)))
	return append(buffer, data...)
}

// AppendString - append a string to a buffer
//
// the field is prefixed by Varint64(length)
func AppendString(buffer []byte, s string) []byte {
	buffer = AppendUint64(buffer, uint64(len(s)))
	return append(buffer, s...)
}

// Cursor - sequential reader over a packed buffer
//
// every read fails with ErrInvalidMessage once the buffer is exhausted
// or a field would overrun it
type Cursor struct {
	buffer []byte
	n      int
}

// NewCursor - start reading at the beginning of a buffer
func NewCursor(buffer []byte) *Cursor {
	return &Cursor{buffer: buffer}
}

// Uint64 - read a Varint64
func (c *Cursor) Uint64() (uint64, error) {
	value, count := FromVarint64(c.buffer[c.n:])
	if 0 == count {
		return 0, fault.ErrInvalidMessage
	}
	c.n += count
	return value, nil
}

// Bytes - read a length-prefixed field, the result is a copy
func (c *Cursor) Bytes() ([]byte, error) {
	length, count := ClippedVarint64(c.buffer[c.n:], 0, maxFieldLength)
	if 0 == count {
		return nil, fault.ErrInvalidMessage
	}
	start := c.n + count
	end := start + length
	if end > len(c.buffer) {
		return nil, fault.ErrInvalidMessage
	}
	c.n = end
	result := make([]byte, length)
	copy(result, c.buffer[start:end])
	return result, nil
}

// String - read a length-prefixed string
func (c *Cursor) String() (string, error) {
	b, err := c.Bytes()
	if nil != err {
		return "", err
	}
	return string(b), nil
}

// Offset - number of bytes consumed so far
func (c *Cursor) Offset() int {
	return c.n
}

// Done - true if every byte has been consumed
func (c *Cursor) Done() bool {
	return c.n == len(c.buffer)
}
