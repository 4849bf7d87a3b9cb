// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"context"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/contract"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/transactionrecord"
	"github.com/bitmark-inc/tranched/transport"
)

// DefaultResponseTimeout - limit on serving one inbound session
const DefaultResponseTimeout = 30 * time.Second

// Responder - the counter-party side of signing and finalisation
type Responder struct {
	log      *logger.L
	key      account.Signer
	vault    Vault
	notary   *account.Account
	acceptor Acceptor
	timeout  time.Duration
}

// NewResponder - serve requests for the party holding key
//
// only transactions anchored to notary are signed or applied
func NewResponder(log *logger.L, key account.Signer, vault Vault, notary *account.Account, acceptor Acceptor) *Responder {
	if nil == acceptor {
		acceptor = AcceptAll{}
	}
	return &Responder{
		log:      log,
		key:      key,
		vault:    vault,
		notary:   notary,
		acceptor: acceptor,
		timeout:  DefaultResponseTimeout,
	}
}

// Register - install the sign and finalise handlers
func (r *Responder) Register(t transport.Transport) {
	t.Handle(SignTopic, r.HandleSign)
	t.Handle(FinaliseTopic, r.HandleFinalise)
}

// HandleSign - check a proposal and either sign it or say why not
func (r *Responder) HandleSign(session transport.Session) {
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	request, err := session.Receive(ctx)
	if nil != err {
		r.log.Warnf("from: %s  receive error: %s", session.Peer(), err)
		return
	}

	var response []byte
	sig, err := r.sign(ctx, session.Peer(), request)
	if nil != err {
		r.log.Infof("from: %s  refuse to sign: %s", session.Peer(), err)
		response = packReject(err)
	} else {
		response = packSignature(sig)
	}

	if err := session.Send(ctx, response); nil != err {
		r.log.Warnf("from: %s  send error: %s", session.Peer(), err)
	}
}

func (r *Responder) sign(ctx context.Context, from *account.Account, request []byte) (transactionrecord.Signature, error) {
	e, err := unpackMessage(request)
	if nil != err {
		return transactionrecord.Signature{}, err
	}
	if proposeMessage != e.tag {
		return transactionrecord.Signature{}, fault.ErrInvalidMessage
	}

	st := e.signed
	tx := st.Tx
	if !r.notary.Equal(tx.Notary) {
		return transactionrecord.Signature{}, fault.ErrInvalidNotary
	}
	if id, err := tx.Id(); nil != err || id != st.Id {
		return transactionrecord.Signature{}, fault.ErrInvalidTransaction
	}

	self := r.key.Account()
	if !tx.Command.HasSigner(self) {
		return transactionrecord.Signature{}, fault.ErrInvalidTransaction
	}

	// the proposer must have signed already
	proposer, ok := st.SignatureOf(from)
	if !ok || !tx.Command.HasSigner(from) {
		return transactionrecord.Signature{}, fault.ErrSignatureInvalid
	}
	if err := from.CheckSignature(st.Id[:], proposer.Signature); nil != err {
		return transactionrecord.Signature{}, fault.ErrSignatureInvalid
	}

	consumed, err := r.verify(tx, e.dependencies)
	if nil != err {
		return transactionrecord.Signature{}, err
	}

	if err := r.acceptor.Accept(ctx, from, tx, consumed); nil != err {
		return transactionrecord.Signature{}, err
	}

	r.log.Infof("tx: %s  sign for: %s", st.Id, from)
	return transactionrecord.Signature{
		Signer:    self,
		Signature: r.key.Sign(st.Id[:]),
	}, nil
}

// resolve the inputs and run the contract, refusing anything already
// known to be spent
func (r *Responder) verify(tx *transactionrecord.Transaction, dependencies []*transactionrecord.NotarisedTransaction) ([]state.State, error) {
	consumed, err := resolveInputs(tx, dependencies)
	if nil != err {
		return nil, err
	}
	for _, ref := range tx.Inputs {
		if _, spent := r.vault.IsConsumed(ref); spent {
			return nil, fault.ErrDoubleSpend
		}
	}
	if err := contract.VerifyTransaction(tx, consumed); nil != err {
		return nil, err
	}
	return consumed, nil
}

// HandleFinalise - record a notarised transaction sent by its initiator
func (r *Responder) HandleFinalise(session transport.Session) {
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	request, err := session.Receive(ctx)
	if nil != err {
		r.log.Warnf("from: %s  receive error: %s", session.Peer(), err)
		return
	}

	response := packAcknowledge()
	if err := r.finalise(request); nil != err {
		r.log.Warnf("from: %s  finalise error: %s", session.Peer(), err)
		response = packReject(err)
	}

	if err := session.Send(ctx, response); nil != err {
		r.log.Warnf("from: %s  send error: %s", session.Peer(), err)
	}
}

func (r *Responder) finalise(request []byte) error {
	e, err := unpackMessage(request)
	if nil != err {
		return err
	}
	if finaliseMessage != e.tag {
		return fault.ErrInvalidMessage
	}

	nt := e.notarised
	if !r.notary.Equal(nt.Signed.Tx.Notary) {
		return fault.ErrInvalidNotary
	}
	if err := nt.Verify(); nil != err {
		return err
	}
	consumed, err := resolveInputs(nt.Signed.Tx, e.dependencies)
	if nil != err {
		return err
	}
	if err := contract.VerifyTransaction(nt.Signed.Tx, consumed); nil != err {
		return err
	}

	applied, err := r.vault.ApplyCommit(nt)
	if nil != err {
		return err
	}
	if applied {
		r.log.Infof("tx: %s  applied", nt.Id())
	}
	return nil
}
