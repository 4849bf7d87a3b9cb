// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/bitmark-inc/tranched/rpc/ledger"
)

// GetInfo - name, account and peers of the node
func (client *Client) GetInfo() (*ledger.InfoReply, error) {
	var reply ledger.InfoReply
	if err := client.client.Call(ledger.ServiceName+".Info", ledger.ListArguments{}, &reply); err != nil {
		return nil, err
	}

	return &reply, nil
}
