// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - in-process queues carrying ledger events
// between the node and its background tasks
//
// a Queue has a single reader; a BroadcastQueue copies each message
// to every listener and drops it for any listener that is full
package messagebus
