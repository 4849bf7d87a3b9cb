// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package node - the inbound operations of a party: issue and
// transfer tranches, list what it holds
//
// a node owns the initiator and responder for its key and keeps
// unfinished notarisations moving through a background reconciler
package node

import (
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/identity"
	"github.com/bitmark-inc/tranched/messagebus"
	"github.com/bitmark-inc/tranched/notary"
	"github.com/bitmark-inc/tranched/protocol"
	"github.com/bitmark-inc/tranched/storage"
	"github.com/bitmark-inc/tranched/transport"
)

// DefaultFlowTimeout - limit on one issue or transfer
const DefaultFlowTimeout = 60 * time.Second

// Directory - name lookups
type Directory interface {
	Resolve(name string) (*account.Account, bool)
	Name(a *account.Account) (string, bool)
	Peers() []identity.Party
}

// Configuration - everything a node is assembled from
type Configuration struct {
	Key         account.Signer
	Vault       *storage.Vault
	Oracle      notary.Oracle
	Transport   transport.Transport
	Directory   Directory
	Acceptor    protocol.Acceptor // nil accepts anything the contract allows
	Bus         *messagebus.BroadcastQueue
	FlowTimeout time.Duration
}

// Node - one party's view of the ledger
type Node struct {
	log       *logger.L
	key       account.Signer
	vault     *ledger
	oracle    notary.Oracle
	transport transport.Transport
	directory Directory
	initiator *protocol.Initiator
	resubmit  *messagebus.Queue
	timeout   time.Duration
}

// New - assemble a node and register its responder on the transport
func New(log *logger.L, conf Configuration) (*Node, error) {
	if nil == conf.Key || nil == conf.Vault || nil == conf.Oracle || nil == conf.Transport || nil == conf.Directory {
		return nil, fault.ErrMissingParameters
	}
	if !conf.Key.Account().Equal(conf.Vault.Owner()) {
		return nil, fault.ErrInvalidPrivateKey
	}

	timeout := conf.FlowTimeout
	if timeout <= 0 {
		timeout = DefaultFlowTimeout
	}

	v := &ledger{
		Vault: conf.Vault,
		bus:   conf.Bus,
	}

	n := &Node{
		log:       log,
		key:       conf.Key,
		vault:     v,
		oracle:    conf.Oracle,
		transport: conf.Transport,
		directory: conf.Directory,
		resubmit:  messagebus.NewQueue(),
		timeout:   timeout,
	}
	n.initiator = protocol.NewInitiator(log, conf.Key, v, conf.Oracle, conf.Transport, n.observe)

	responder := protocol.NewResponder(log, conf.Key, v, conf.Oracle.Identity(), conf.Acceptor)
	responder.Register(conf.Transport)

	log.Infof("node: %s  notary: %s", conf.Key.Account(), conf.Oracle.Identity())
	return n, nil
}

// progress is only logged
func (n *Node) observe(t protocol.Transition) {
	if nil != t.Err {
		n.log.Debugf("tx: %s  %s  error: %s", t.TxId, t.To, t.Err)
		return
	}
	n.log.Debugf("tx: %s  >> %s", t.TxId, t.To.Label())
}

// Me - this node's account and display name
func (n *Node) Me() (*account.Account, string) {
	self := n.key.Account()
	name, _ := n.directory.Name(self)
	return self, name
}

// Peers - display names of every other party except the notary
func (n *Node) Peers() []string {
	peers := n.directory.Peers()
	names := make([]string, len(peers))
	for i, p := range peers {
		names[i] = p.Name
	}
	return names
}
