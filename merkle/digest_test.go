// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
)

func TestDigest(t *testing.T) {
	// SHA3-256 of the empty string
	expected := "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"

	d := merkle.NewDigest([]byte{})
	assert.Equal(t, expected, d.String(), "string")
	assert.Equal(t, "<SHA3-256:"+expected+">", fmt.Sprintf("%#v", d), "go string")
	assert.False(t, d.IsZero(), "not zero")
	assert.True(t, merkle.Digest{}.IsZero(), "zero")

	p, err := merkle.DigestFromString(expected)
	assert.Nil(t, err, "parse")
	assert.Equal(t, d, p, "parsed")
}

func TestDigestJSON(t *testing.T) {
	d := merkle.NewDigest([]byte("tx"))
	buffer, err := json.Marshal(d)
	assert.Nil(t, err, "marshal")
	assert.Equal(t, `"`+d.String()+`"`, string(buffer), "json text")

	var r merkle.Digest
	assert.Nil(t, json.Unmarshal(buffer, &r), "unmarshal")
	assert.Equal(t, d, r, "round trip")
}

func TestDigestInvalid(t *testing.T) {
	_, err := merkle.DigestFromString("abcd")
	assert.Equal(t, fault.ErrInvalidTransaction, err, "short")

	_, err = merkle.DigestFromString("zz" + merkle.Digest{}.String()[2:])
	assert.Equal(t, fault.ErrInvalidTransaction, err, "not hex")

	var d merkle.Digest
	assert.Equal(t, fault.ErrInvalidTransaction, merkle.DigestFromBytes(&d, []byte{1}), "bytes length")
}
