// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/tranched/fault"
)

// common errors - keep in alphabetic order
const (
	ErrRequiredAmount    = fault.InvalidError("amount is required")
	ErrRequiredConnect   = fault.InvalidError("connect is required")
	ErrRequiredCurrency  = fault.InvalidError("currency is required")
	ErrRequiredReceiver  = fault.InvalidError("receiver is required")
	ErrRequiredReference = fault.InvalidError("reference is required")
	ErrRequiredState     = fault.InvalidError("state is required")
)
