// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"sync"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
)

const memoryQueueSize = 16

// Network - an in-process exchange connecting memory endpoints
type Network struct {
	sync.Mutex
	endpoints map[string]*Memory
}

// NewNetwork - an empty network
func NewNetwork() *Network {
	return &Network{
		endpoints: make(map[string]*Memory),
	}
}

// Endpoint - attach a party to the network
func (n *Network) Endpoint(self *account.Account) *Memory {
	n.Lock()
	defer n.Unlock()

	m := &Memory{
		network:  n,
		self:     self,
		handlers: make(map[string]Handler),
		sessions: make(map[*memorySession]struct{}),
	}
	n.endpoints[self.String()] = m
	return m
}

func (n *Network) lookup(party *account.Account) (*Memory, bool) {
	n.Lock()
	defer n.Unlock()
	m, ok := n.endpoints[party.String()]
	return m, ok
}

// Memory - one party's attachment to a Network
type Memory struct {
	sync.Mutex
	network  *Network
	self     *account.Account
	offline  bool
	handlers map[string]Handler
	sessions map[*memorySession]struct{}
}

// Handle - register the handler for a topic
func (m *Memory) Handle(topic string, handler Handler) {
	m.Lock()
	defer m.Unlock()
	m.handlers[topic] = handler
}

// SetOffline - simulate the party becoming unreachable, dropping
// every open session
func (m *Memory) SetOffline(offline bool) {
	m.Lock()
	defer m.Unlock()

	m.offline = offline
	if offline {
		for s := range m.sessions {
			s.shutdown()
		}
		m.sessions = make(map[*memorySession]struct{})
	}
}

func (m *Memory) handler(topic string) (Handler, error) {
	m.Lock()
	defer m.Unlock()
	if m.offline {
		return nil, fault.ErrDisconnected
	}
	h, ok := m.handlers[topic]
	if !ok {
		return nil, fault.ErrNoHandler
	}
	return h, nil
}

func (m *Memory) track(s *memorySession) {
	m.Lock()
	m.sessions[s] = struct{}{}
	m.Unlock()
}

func (m *Memory) untrack(s *memorySession) {
	m.Lock()
	delete(m.sessions, s)
	m.Unlock()
}

// OpenSession - start a session with a party on the same network
func (m *Memory) OpenSession(ctx context.Context, party *account.Account, topic string) (Session, error) {
	if nil != ctx.Err() {
		return nil, contextError(ctx)
	}
	m.Lock()
	offline := m.offline
	m.Unlock()
	if offline {
		return nil, fault.ErrDisconnected
	}

	target, ok := m.network.lookup(party)
	if !ok {
		return nil, fault.ErrDisconnected
	}
	h, err := target.handler(topic)
	if nil != err {
		return nil, err
	}

	there := make(chan []byte, memoryQueueSize)
	back := make(chan []byte, memoryQueueSize)
	link := &memoryLink{done: make(chan struct{})}

	local := &memorySession{owner: m, peer: party, in: back, out: there, link: link}
	remote := &memorySession{owner: target, peer: m.self, in: there, out: back, link: link}
	m.track(local)
	target.track(remote)

	go h(remote)
	return local, nil
}

// Close - drop all sessions and detach from the network
func (m *Memory) Close() error {
	m.SetOffline(true)
	m.network.Lock()
	delete(m.network.endpoints, m.self.String())
	m.network.Unlock()
	return nil
}

// both ends of a session share a link, closing either end closes it
type memoryLink struct {
	once sync.Once
	done chan struct{}
}

type memorySession struct {
	owner *Memory
	peer  *account.Account
	in    <-chan []byte
	out   chan<- []byte
	link  *memoryLink
}

func (s *memorySession) Peer() *account.Account {
	return s.peer
}

func (s *memorySession) Send(ctx context.Context, message []byte) error {
	select {
	case <-s.link.done:
		return fault.ErrDisconnected
	default:
	}

	buffer := make([]byte, len(message))
	copy(buffer, message)

	select {
	case <-s.link.done:
		return fault.ErrDisconnected
	case s.out <- buffer:
		return nil
	case <-ctx.Done():
		return contextError(ctx)
	}
}

func (s *memorySession) Receive(ctx context.Context) ([]byte, error) {
	select {
	case message := <-s.in:
		return message, nil
	case <-s.link.done:
		// deliver anything sent before the close
		select {
		case message := <-s.in:
			return message, nil
		default:
			return nil, fault.ErrDisconnected
		}
	case <-ctx.Done():
		return nil, contextError(ctx)
	}
}

func (s *memorySession) Close() error {
	s.shutdown()
	s.owner.untrack(s)
	return nil
}

func (s *memorySession) shutdown() {
	s.link.once.Do(func() {
		close(s.link.done)
	})
}
