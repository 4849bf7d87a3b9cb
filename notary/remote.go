// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary

import (
	"context"
	"errors"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/transactionrecord"
	"github.com/bitmark-inc/tranched/transport"
	"github.com/bitmark-inc/tranched/util"
)

// Topic - transport topic of commit requests
const Topic = "notary"

// response status codes
const (
	statusCommitted = iota
	statusConflict
	statusRejected
	statusUnavailable
)

// errors a client can see, anything else reads as unavailable
var rejections = []error{
	fault.ErrInvalidNotary,
	fault.ErrInvalidTransaction,
	fault.ErrSignatureInvalid,
}

// Serve - answer commit requests arriving on a transport
func Serve(log *logger.L, t transport.Transport, oracle Oracle) {
	t.Handle(Topic, func(session transport.Session) {
		defer session.Close()

		ctx := context.Background()
		request, err := session.Receive(ctx)
		if nil != err {
			log.Warnf("from: %s  receive error: %s", session.Peer(), err)
			return
		}

		response := respond(ctx, oracle, request)
		if err := session.Send(ctx, response); nil != err {
			log.Warnf("from: %s  send error: %s", session.Peer(), err)
		}
	})
}

func respond(ctx context.Context, oracle Oracle, request []byte) []byte {
	st, err := transactionrecord.UnpackSignedTransaction(request)
	if nil != err {
		return rejection(fault.ErrInvalidTransaction)
	}

	receipt, err := oracle.Commit(ctx, st)
	if nil == err {
		response := util.AppendUint64(nil, statusCommitted)
		return util.AppendBytes(response, receipt.Pack())
	}

	var conflict *fault.Conflict
	if errors.As(err, &conflict) {
		response := util.AppendUint64(nil, statusConflict)
		return util.AppendString(response, conflict.TxId)
	}
	return rejection(err)
}

func rejection(err error) []byte {
	for _, r := range rejections {
		if r == err {
			response := util.AppendUint64(nil, statusRejected)
			return util.AppendString(response, err.Error())
		}
	}
	response := util.AppendUint64(nil, statusUnavailable)
	return util.AppendString(response, err.Error())
}

// Remote - a notary reached over the transport
type Remote struct {
	log       *logger.L
	transport transport.Transport
	notary    *account.Account
}

// NewRemote - client for the notary with the given identity
func NewRemote(log *logger.L, t transport.Transport, notary *account.Account) *Remote {
	return &Remote{
		log:       log,
		transport: t,
		notary:    notary,
	}
}

// Identity - the notary's public key
func (r *Remote) Identity() *account.Account {
	return r.notary
}

// Commit - submit over a fresh session and check the receipt
func (r *Remote) Commit(ctx context.Context, st *transactionrecord.SignedTransaction) (*transactionrecord.Receipt, error) {
	request, err := st.Pack()
	if nil != err {
		return nil, err
	}

	session, err := r.transport.OpenSession(ctx, r.notary, Topic)
	if nil != err {
		return nil, err
	}
	defer session.Close()

	if err := session.Send(ctx, request); nil != err {
		return nil, err
	}
	response, err := session.Receive(ctx)
	if nil != err {
		return nil, err
	}

	c := util.NewCursor(response)
	status, err := c.Uint64()
	if nil != err {
		return nil, err
	}
	switch status {
	case statusCommitted:
		b, err := c.Bytes()
		if nil != err {
			return nil, err
		}
		receipt, err := transactionrecord.UnpackReceipt(b)
		if nil != err {
			return nil, err
		}
		if err := receipt.Verify(r.notary, st.Id); nil != err {
			r.log.Errorf("tx: %s  bad receipt from notary", st.Id)
			return nil, err
		}
		return receipt, nil

	case statusConflict:
		txId, err := c.String()
		if nil != err {
			return nil, err
		}
		return nil, &fault.Conflict{TxId: txId}

	case statusRejected:
		reason, err := c.String()
		if nil != err {
			return nil, err
		}
		for _, e := range rejections {
			if e.Error() == reason {
				return nil, e
			}
		}
		return nil, fault.ErrInvalidTransaction

	default:
		reason, _ := c.String()
		r.log.Warnf("tx: %s  notary unavailable: %s", st.Id, reason)
		return nil, fault.ErrNotaryUnavailable
	}
}
