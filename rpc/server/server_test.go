// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server_test

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/counter"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/node"
	"github.com/bitmark-inc/tranched/rpc/fixtures"
	"github.com/bitmark-inc/tranched/rpc/ledger"
	"github.com/bitmark-inc/tranched/rpc/mocks"
	"github.com/bitmark-inc/tranched/rpc/server"
	"github.com/bitmark-inc/tranched/testing/fixture"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	result := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(result)
}

// serve one in-memory connection with the json codec
func dial(t *testing.T, n ledger.Node) *rpc.Client {
	var c counter.Counter
	s := server.Create(logger.New(fixtures.LogCategory), "1.0", &c, n)

	serverConn, clientConn := net.Pipe()
	go s.ServeCodec(jsonrpc.NewServerCodec(serverConn))

	return jsonrpc.NewClient(clientConn)
}

// following tests make sure proper methods are registered to server
func TestNodeIssue(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	n := mocks.NewMockNode(ctl)
	n.EXPECT().Issue(gomock.Any(), gomock.Any()).Return(node.Outcome{Reason: fault.ErrAmountTooSmall.Error()}).Times(1)

	client := dial(t, n)
	defer client.Close()

	arg := ledger.IssueArguments{
		Terms:  fixture.Terms("T-9"),
		Amount: "0",
	}
	var reply ledger.OutcomeReply
	err := client.Call("Node.Issue", &arg, &reply)
	assert.Nil(t, err, "wrong Node.Issue")
	assert.False(t, reply.Committed, "committed")
	assert.Equal(t, fault.ErrAmountTooSmall.Error(), reply.Message, "wrong reply")
}

func TestNodeInfo(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	n := mocks.NewMockNode(ctl)
	n.EXPECT().Me().Return(fixture.Buyer, "Buyer").Times(1)
	n.EXPECT().Peers().Return([]string{"Agent"}).Times(1)

	client := dial(t, n)
	defer client.Close()

	var reply ledger.InfoReply
	err := client.Call("Node.Info", &ledger.ListArguments{}, &reply)
	assert.Nil(t, err, "wrong Node.Info")
	assert.Equal(t, "Buyer", reply.Name, "wrong name")
	assert.True(t, fixture.Buyer.Equal(reply.Account), "wrong account")
	assert.Equal(t, []string{"Agent"}, reply.Peers, "wrong peers")
}

func TestNodeTransactions(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	client := dial(t, mocks.NewMockNode(ctl))
	defer client.Close()

	arg := ledger.TransactionsArguments{
		Count: 1000,
	}
	var reply ledger.TransactionsReply
	err := client.Call("Node.Transactions", &arg, &reply)
	assert.NotNil(t, err, "wrong Node.Transactions")
	assert.Equal(t, fault.ErrInvalidCount.Error(), err.Error(), "wrong reply")
}
