// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/tranched/counter"
	"github.com/bitmark-inc/tranched/rpc/ledger"
)

// Create - an RPC server with every service registered
func Create(log *logger.L, version string, rpcCount *counter.Counter, n ledger.Node) *rpc.Server {
	start := time.Now().UTC()

	server := rpc.NewServer()

	_ = server.RegisterName(ledger.ServiceName, ledger.New(log, n, start, version, rpcCount))

	return server
}
