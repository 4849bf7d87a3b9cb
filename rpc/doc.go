// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - the JSON RPC listener of a node
//
// clients dial TLS and speak net/rpc/jsonrpc to the "Node" service:
// Issue, Transfer, Tranches, Balances, Info and Transactions.  A
// rejected flow is a normal reply with committed set to false
package rpc
