// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"crypto/rand"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/tranched/fault"
)

const (
	identifierSize = 32
)

// Client - one outbound connection
type Client struct {
	publicKey       []byte
	privateKey      []byte
	serverPublicKey []byte
	address         string
	socketType      zmq.Type
	socket          *zmq.Socket
	timeout         time.Duration
}

// NewClient - create a client, usually of type zmq.DEALER
func NewClient(socketType zmq.Type, privateKey []byte, publicKey []byte, timeout time.Duration) (*Client, error) {

	if len(publicKey) != publicLength {
		return nil, fault.ErrInvalidPublicKey
	}
	if len(privateKey) != privateLength {
		return nil, fault.ErrInvalidPrivateKey
	}

	client := &Client{
		publicKey:       make([]byte, publicLength),
		privateKey:      make([]byte, privateLength),
		serverPublicKey: make([]byte, publicLength),
		address:         "",
		socketType:      socketType,
		socket:          nil,
		timeout:         timeout,
	}
	copy(client.privateKey, privateKey)
	copy(client.publicKey, publicKey)
	return client, nil
}

// create a socket and connect to specific server with specifed key
func (client *Client) openSocket() error {

	socket, err := zmq.NewSocket(client.socketType)
	if nil != err {
		return err
	}

	// create a secure random identifier
	randomIdBytes := make([]byte, identifierSize)
	_, err = rand.Read(randomIdBytes)
	if nil != err {
		socket.Close()
		return err
	}

	// set up as client
	err = socket.SetCurveServer(0)
	if nil != err {
		goto failure
	}
	err = socket.SetCurvePublickey(string(client.publicKey))
	if nil != err {
		goto failure
	}
	err = socket.SetCurveSecretkey(string(client.privateKey))
	if nil != err {
		goto failure
	}

	// local identitity is a random value
	err = socket.SetIdentity(string(randomIdBytes))
	if nil != err {
		goto failure
	}

	// destination identity is its public key
	err = socket.SetCurveServerkey(string(client.serverPublicKey))
	if nil != err {
		goto failure
	}

	// zero => do not set timeout
	if 0 != client.timeout {
		err = socket.SetSndtimeo(client.timeout)
		if nil != err {
			goto failure
		}
		err = socket.SetRcvtimeo(client.timeout)
		if nil != err {
			goto failure
		}
	}
	err = socket.SetLinger(0)
	if nil != err {
		goto failure
	}

	// this need zmq 4.2
	err = socket.SetHeartbeatIvl(heartbeatInterval)
	if nil != err && zmq.ErrorNotImplemented42 != err {
		goto failure
	}
	err = socket.SetHeartbeatTimeout(heartbeatTimeout)
	if nil != err && zmq.ErrorNotImplemented42 != err {
		goto failure
	}

	err = socket.Connect(client.address)
	if nil != err {
		goto failure
	}

	client.socket = socket
	return nil

failure:
	socket.Close()
	return err
}

// destroy the socket
func (client *Client) closeSocket() error {
	if nil == client.socket {
		return nil
	}

	if "" != client.address {
		client.socket.Disconnect(client.address)
	}

	err := client.socket.Close()
	client.socket = nil
	return err
}

// Connect - disconnect old address and connect to new
func (client *Client) Connect(address string, serverPublicKey []byte) error {
	if len(serverPublicKey) != publicLength {
		return fault.ErrInvalidPublicKey
	}

	// if already connected, disconnect first
	err := client.closeSocket()
	if nil != err {
		return err
	}

	copy(client.serverPublicKey, serverPublicKey)
	client.address = address

	err = client.openSocket()
	if nil != err {
		client.address = ""
	}
	return err
}

// IsConnected - check if connected to a node
func (client *Client) IsConnected() bool {
	return "" != client.address
}

// Close - disconnect and close
func (client *Client) Close() error {
	err := client.closeSocket()
	client.address = ""
	return err
}

// Send - send a multipart message
func (client *Client) Send(items ...interface{}) error {
	if "" == client.address {
		return fault.ErrNotConnected
	}
	_, err := client.socket.SendMessage(items...)
	return err
}

// Receive - receive a multipart message
func (client *Client) Receive(flags zmq.Flag) ([][]byte, error) {
	if "" == client.address {
		return nil, fault.ErrNotConnected
	}
	return client.socket.RecvMessageBytes(flags)
}

// BeginPolling - add the client socket to a poller
func (client *Client) BeginPolling(poller *Poller, events zmq.State) *zmq.Socket {
	if nil != client.socket {
		poller.Add(client.socket, events)
	}
	return client.socket
}

// String - the connected address
func (client *Client) String() string {
	return client.address
}
