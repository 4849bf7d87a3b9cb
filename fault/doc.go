// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error classes and the sentinel errors of each class
//
// callers test the class with the IsErrXxx functions and a particular
// error with errors.Is; the class decides whether a rejection reason is
// shown to a client and whether a flow may be retried
package fault
