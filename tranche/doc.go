// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tranche - immutable terms of a loan tranche and the token
// tagged amounts that positions and balances are measured in
package tranche
