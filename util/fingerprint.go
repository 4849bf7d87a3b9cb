// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintBytes - SHA256 of a certificate
type FingerprintBytes [sha256.Size]byte

// Fingerprint - fingerprint a DER certificate
//
// matches: openssl x509 -noout -in tranched.crt -fingerprint -sha256
func Fingerprint(certificate []byte) FingerprintBytes {
	return sha256.Sum256(certificate)
}

// String - colon separated upper case hex as printed by openssl
func (f FingerprintBytes) String() string {
	h := []byte(hex.EncodeToString(f[:]))
	result := make([]byte, 0, len(h)*3/2)
	for i := 0; i < len(h); i += 2 {
		if 0 != i {
			result = append(result, ':')
		}
		result = append(result, toUpper(h[i]), toUpper(h[i+1]))
	}
	return string(result)
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'f' {
		return c - 'a' + 'A'
	}
	return c
}
