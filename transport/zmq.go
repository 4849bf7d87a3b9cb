// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/zmqutil"
)

// frame kinds
const (
	helloFrame = "H"
	dataFrame  = "D"
	closeFrame = "C"
)

const (
	pollInterval      = 10 * time.Millisecond
	outboundQueueSize = 64
	inboundQueueSize  = 16
	zapDomain         = "tranched"
)

// Directory - where a party listens and its peering key
type Directory interface {
	Endpoint(party *account.Account) (address string, publicKey []byte, err error)
}

// ZMQConfiguration - peering settings
//
// Clients lists the curve keys allowed to connect, empty allows any
type ZMQConfiguration struct {
	Self       *account.Account
	PrivateKey []byte
	PublicKey  []byte
	Listen     []string
	Clients    [][]byte
	Directory  Directory
}

// ZMQ - sessions carried over CURVE encrypted ROUTER/DEALER sockets
//
// the router socket is owned by a single goroutine; inbound sessions
// queue their replies to it
type ZMQ struct {
	sync.Mutex
	log       *logger.L
	self      *account.Account
	private   []byte
	public    []byte
	directory Directory

	router   *zmq.Socket
	push     *zmq.Socket
	pull     *zmq.Socket
	outbound chan zmqFrame
	handlers map[string]Handler
	sessions map[string]*inboundSession
	done     chan struct{}
}

type zmqFrame struct {
	identity  []byte
	sessionId []byte
	kind      string
	payload   []byte
}

// NewZMQ - bind the listen addresses and start serving
func NewZMQ(log *logger.L, conf ZMQConfiguration) (*ZMQ, error) {
	if nil == conf.Self || nil == conf.Directory {
		return nil, fault.ErrMissingParameters
	}

	err := zmqutil.StartAuthentication()
	if nil != err {
		return nil, err
	}
	zmqutil.AllowClients(zapDomain, conf.Clients)
	log.Infof("allowed clients: %d", len(conf.Clients))

	router, err := zmqutil.NewBind(log, zmq.ROUTER, zapDomain, conf.PrivateKey, conf.PublicKey, conf.Listen)
	if nil != err {
		return nil, err
	}

	signal := fmt.Sprintf("inproc://transport-%s", uuid.New())
	push, pull, err := zmqutil.NewSignalPair(signal)
	if nil != err {
		router.Close()
		return nil, err
	}

	z := &ZMQ{
		log:       log,
		self:      conf.Self,
		private:   conf.PrivateKey,
		public:    conf.PublicKey,
		directory: conf.Directory,
		router:    router,
		push:      push,
		pull:      pull,
		outbound:  make(chan zmqFrame, outboundQueueSize),
		handlers:  make(map[string]Handler),
		sessions:  make(map[string]*inboundSession),
		done:      make(chan struct{}),
	}
	go z.serve()
	return z, nil
}

// Handle - register the handler for a topic
func (z *ZMQ) Handle(topic string, handler Handler) {
	z.Lock()
	defer z.Unlock()
	z.handlers[topic] = handler
}

// Allow - replace the curve keys allowed to connect
func (z *ZMQ) Allow(publicKeys [][]byte) {
	zmqutil.AllowClients(zapDomain, publicKeys)
	z.log.Infof("allowed clients: %d", len(publicKeys))
}

// Close - stop serving and close the sockets
func (z *ZMQ) Close() error {
	_, err := z.push.SendMessage("stop")
	if nil != err {
		return err
	}
	<-z.done
	z.push.Close()
	return nil
}

func (z *ZMQ) serve() {
	defer close(z.done)
	defer z.router.Close()
	defer z.pull.Close()

	poller := zmqutil.NewPoller()
	poller.Add(z.router, zmq.POLLIN)
	poller.Add(z.pull, zmq.POLLIN)

	z.log.Info("serving")
loop:
	for {
		polled, err := poller.Poll(pollInterval)
		if nil != err {
			z.log.Errorf("poll error: %s", err)
			continue loop
		}
		for _, p := range polled {
			switch p.Socket {
			case z.pull:
				_, _ = z.pull.RecvMessageBytes(0)
				break loop
			case z.router:
				frames, err := z.router.RecvMessageBytes(0)
				if nil != err {
					z.log.Errorf("receive error: %s", err)
					continue
				}
				z.inbound(frames)
			}
		}
	drain:
		for {
			select {
			case f := <-z.outbound:
				_, err := z.router.SendMessage(f.identity, f.sessionId, f.kind, f.payload)
				if nil != err {
					z.log.Errorf("send to: %x  error: %s", f.identity, err)
				}
			default:
				break drain
			}
		}
	}

	z.Lock()
	for _, s := range z.sessions {
		s.shutdown()
	}
	z.Unlock()
	z.log.Info("stopped")
}

// frames: identity, session id, kind, payload...
func (z *ZMQ) inbound(frames [][]byte) {
	if len(frames) < 3 {
		z.log.Warnf("short message: %d frames", len(frames))
		return
	}
	identity := frames[0]
	sessionId := frames[1]
	kind := string(frames[2])
	key := string(identity) + string(sessionId)

	switch kind {
	case helloFrame:
		if 5 != len(frames) {
			z.log.Warn("malformed hello")
			return
		}
		topic := string(frames[3])
		peer, err := account.AccountFromBytes(frames[4])
		if nil != err {
			z.log.Warnf("hello with invalid account: %s", err)
			return
		}
		z.Lock()
		h, ok := z.handlers[topic]
		if !ok {
			z.Unlock()
			z.log.Warnf("no handler for topic: %q", topic)
			z.enqueue(zmqFrame{identity: identity, sessionId: sessionId, kind: closeFrame})
			return
		}
		s := &inboundSession{
			owner:     z,
			key:       key,
			identity:  identity,
			sessionId: sessionId,
			peer:      peer,
			in:        make(chan []byte, inboundQueueSize),
			done:      make(chan struct{}),
		}
		z.sessions[key] = s
		z.Unlock()

		z.log.Debugf("session from: %s  topic: %q", peer, topic)
		go h(s)

	case dataFrame:
		if 4 != len(frames) {
			z.log.Warn("malformed data")
			return
		}
		z.Lock()
		s, ok := z.sessions[key]
		z.Unlock()
		if !ok {
			z.enqueue(zmqFrame{identity: identity, sessionId: sessionId, kind: closeFrame})
			return
		}
		select {
		case s.in <- frames[3]:
		default:
			z.log.Warnf("session from: %s  queue full", s.peer)
		}

	case closeFrame:
		z.Lock()
		s, ok := z.sessions[key]
		delete(z.sessions, key)
		z.Unlock()
		if ok {
			s.shutdown()
		}

	default:
		z.log.Warnf("unknown frame kind: %q", kind)
	}
}

func (z *ZMQ) enqueue(f zmqFrame) {
	select {
	case z.outbound <- f:
	case <-z.done:
	}
}

// OpenSession - connect to a party and announce the topic
func (z *ZMQ) OpenSession(ctx context.Context, party *account.Account, topic string) (Session, error) {
	if nil != ctx.Err() {
		return nil, contextError(ctx)
	}
	address, serverKey, err := z.directory.Endpoint(party)
	if nil != err {
		return nil, err
	}

	client, err := zmqutil.NewClient(zmq.DEALER, z.private, z.public, 0)
	if nil != err {
		return nil, err
	}
	err = client.Connect(address, serverKey)
	if nil != err {
		z.log.Errorf("connect to: %s  error: %s", address, err)
		return nil, fault.ErrDisconnected
	}

	id := uuid.New()
	s := &outboundSession{
		log:       z.log,
		peer:      party,
		client:    client,
		poller:    zmqutil.NewPoller(),
		sessionId: id[:],
	}
	client.BeginPolling(s.poller, zmq.POLLIN)

	err = client.Send(s.sessionId, helloFrame, topic, z.self.Bytes())
	if nil != err {
		client.Close()
		return nil, fault.ErrDisconnected
	}
	return s, nil
}

// session accepted by the router
type inboundSession struct {
	owner     *ZMQ
	key       string
	identity  []byte
	sessionId []byte
	peer      *account.Account
	in        chan []byte
	once      sync.Once
	done      chan struct{}
}

func (s *inboundSession) Peer() *account.Account {
	return s.peer
}

func (s *inboundSession) Send(ctx context.Context, message []byte) error {
	f := zmqFrame{
		identity:  s.identity,
		sessionId: s.sessionId,
		kind:      dataFrame,
		payload:   message,
	}
	select {
	case <-s.done:
		return fault.ErrDisconnected
	default:
	}
	select {
	case <-s.done:
		return fault.ErrDisconnected
	case s.owner.outbound <- f:
		return nil
	case <-ctx.Done():
		return contextError(ctx)
	}
}

func (s *inboundSession) Receive(ctx context.Context) ([]byte, error) {
	select {
	case message := <-s.in:
		return message, nil
	case <-s.done:
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

func (s *inboundSession) Close() error {
	s.owner.Lock()
	_, open := s.owner.sessions[s.key]
	delete(s.owner.sessions, s.key)
	s.owner.Unlock()

	if open {
		s.owner.enqueue(zmqFrame{identity: s.identity, sessionId: s.sessionId, kind: closeFrame})
	}
	s.shutdown()
	return nil
}

func (s *inboundSession) shutdown() {
	s.once.Do(func() {
		close(s.done)
	})
}

// session opened by this party, one dealer socket each
//
// only the goroutine that owns the session may use it
type outboundSession struct {
	log       *logger.L
	peer      *account.Account
	client    *zmqutil.Client
	poller    *zmqutil.Poller
	sessionId []byte
	closed    bool
}

func (s *outboundSession) Peer() *account.Account {
	return s.peer
}

func (s *outboundSession) Send(ctx context.Context, message []byte) error {
	if s.closed {
		return fault.ErrDisconnected
	}
	if nil != ctx.Err() {
		return contextError(ctx)
	}
	err := s.client.Send(s.sessionId, dataFrame, message)
	if nil != err {
		s.log.Errorf("send to: %s  error: %s", s.client, err)
		return fault.ErrDisconnected
	}
	return nil
}

// frames: session id, kind, payload...
func (s *outboundSession) Receive(ctx context.Context) ([]byte, error) {
	for {
		if s.closed {
			return nil, fault.ErrDisconnected
		}
		_, err := s.poller.Wait(ctx, pollInterval)
		if nil != ctx.Err() {
			return nil, contextError(ctx)
		}
		if nil != err {
			return nil, fault.ErrDisconnected
		}
		frames, err := s.client.Receive(0)
		if nil != err {
			return nil, fault.ErrDisconnected
		}
		if len(frames) < 2 {
			continue
		}
		switch string(frames[1]) {
		case dataFrame:
			if 3 == len(frames) {
				return frames[2], nil
			}
		case closeFrame:
			s.closed = true
			return nil, fault.ErrDisconnected
		}
	}
}

func (s *outboundSession) Close() error {
	if !s.closed {
		_ = s.client.Send(s.sessionId, closeFrame)
		s.closed = true
	}
	return s.client.Close()
}
