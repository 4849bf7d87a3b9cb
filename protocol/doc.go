// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package protocol - multi-party signing and finality
//
// The initiator verifies and signs a proposal, gathers the signatures
// of the other required signers in parallel, has the notary commit the
// fully signed transaction, applies it to its own vault and sends it
// to every other participant.
//
// A responder re-verifies the proposal against the notarised
// transactions that produced its inputs, consults its acceptance
// policy and either signs or rejects.
//
//   BUILT -> LOCALLY_VERIFIED -> LOCALLY_SIGNED -> AWAITING_COUNTERSIGNATURES
//         -> FULLY_SIGNED -> FINALIZING -> COMMITTED
//
// with REJECTED reachable from every stage before COMMITTED. There are
// no retries: the first failure ends the run.
package protocol
