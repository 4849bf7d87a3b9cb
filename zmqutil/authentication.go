// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"sync"

	zmq "github.com/pebbe/zmq4"
)

// the ZAP handler is process wide
var (
	authOnce  sync.Once
	authError error
)

// StartAuthentication - start the ZAP handler, later calls return the
// result of the first
func StartAuthentication() error {
	authOnce.Do(func() {
		zmq.AuthSetVerbose(false)
		authError = zmq.AuthStart()
	})
	return authError
}

// AllowClients - replace the curve public keys a ZAP domain accepts
//
// an empty list accepts any client
func AllowClients(zapDomain string, publicKeys [][]byte) {
	zmq.AuthCurveRemoveAll(zapDomain)
	if 0 == len(publicKeys) {
		zmq.AuthCurveAdd(zapDomain, zmq.CURVE_ALLOW_ANY)
		return
	}

	encoded := make([]string, 0, len(publicKeys))
	for _, key := range publicKeys {
		if publicLength != len(key) {
			continue
		}
		encoded = append(encoded, zmq.Z85encode(string(key)))
	}
	zmq.AuthCurveAdd(zapDomain, encoded...)
}
