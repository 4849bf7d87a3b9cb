// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package contract - the rules deciding whether a proposed transition
// of tranche states is legal
//
// verification is pure: it reads only its arguments and the result
// depends on nothing else, so every party re-running it on the same
// transaction reaches the same decision
package contract
