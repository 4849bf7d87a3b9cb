// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/builder"
	"github.com/bitmark-inc/tranched/contract"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/notary"
	"github.com/bitmark-inc/tranched/transactionrecord"
	"github.com/bitmark-inc/tranched/transport"
)

// local application of a notarised transaction is retried this many
// times before it is left to the recovery reconciler
var (
	applyAttempts = 4
	applyBackoff  = 50 * time.Millisecond
)

// Initiator - drives a proposal built by this party to a commit
type Initiator struct {
	log       *logger.L
	key       account.Signer
	vault     Vault
	oracle    notary.Oracle
	transport transport.Transport
	observer  Observer
}

// NewInitiator - a flow driver for one party
//
// observer may be nil
func NewInitiator(log *logger.L, key account.Signer, vault Vault, oracle notary.Oracle, t transport.Transport, observer Observer) *Initiator {
	return &Initiator{
		log:       log,
		key:       key,
		vault:     vault,
		oracle:    oracle,
		transport: t,
		observer:  observer,
	}
}

// a single run of the state machine
type run struct {
	*Initiator
	txId  merkle.Digest
	stage Stage
}

func (r *run) advance(to Stage) {
	from := r.stage
	r.stage = to
	r.log.Infof("tx: %s  %s -> %s  %s", r.txId, from, to, to.Label())
	if nil != r.observer {
		r.observer(Transition{TxId: r.txId, From: from, To: to})
	}
}

func (r *run) reject(err error) error {
	from := r.stage
	r.stage = Rejected
	r.log.Warnf("tx: %s  %s -> %s  error: %s", r.txId, from, Rejected, err)
	if nil != r.observer {
		r.observer(Transition{TxId: r.txId, From: from, To: Rejected, Err: err})
	}
	return err
}

// Run - take a proposal through signing and notarisation
//
// once the notary has issued a receipt the run always ends committed:
// a local store failure leaves the transaction pending for recovery and
// delivery failures to other participants only log
func (i *Initiator) Run(ctx context.Context, proposal *builder.Proposal) (*transactionrecord.NotarisedTransaction, error) {
	tx := proposal.Tx
	txId, err := tx.Id()
	if nil != err {
		return nil, err
	}
	r := &run{Initiator: i, txId: txId, stage: Built}
	r.advance(Built)

	if !i.oracle.Identity().Equal(tx.Notary) {
		return nil, r.reject(fault.ErrInvalidNotary)
	}
	consumed := proposal.Consumed()
	if err := contract.VerifyTransaction(tx, consumed); nil != err {
		return nil, r.reject(err)
	}
	r.advance(LocallyVerified)

	st, err := transactionrecord.NewSignedTransaction(tx)
	if nil != err {
		return nil, r.reject(err)
	}
	self := i.key.Account()
	if !tx.Command.HasSigner(self) {
		return nil, r.reject(fault.ErrNotAuthorised)
	}
	if err := st.Sign(i.key); nil != err {
		return nil, r.reject(err)
	}
	r.advance(LocallySigned)

	r.advance(AwaitingCountersignatures)
	if err := i.collect(ctx, st, proposal.Dependencies); nil != err {
		return nil, r.reject(err)
	}

	if err := st.VerifySignatures(); nil != err {
		return nil, r.reject(err)
	}
	r.advance(FullySigned)

	r.advance(Finalizing)
	nt, err := i.notarise(ctx, st)
	if nil != err {
		return nil, r.reject(err)
	}

	i.apply(ctx, nt)
	i.distribute(ctx, nt, proposal.Dependencies, participants(tx, consumed))

	r.advance(Committed)
	return nt, nil
}

// gather every missing signature in parallel, the first failure
// cancels the rest
func (i *Initiator) collect(ctx context.Context, st *transactionrecord.SignedTransaction, dependencies []*transactionrecord.NotarisedTransaction) error {
	proposal, err := packProposal(st, dependencies)
	if nil != err {
		return err
	}

	var lock sync.Mutex
	signatures := make([]transactionrecord.Signature, 0, len(st.Tx.Command.Signers))

	g, gctx := errgroup.WithContext(ctx)
	for _, party := range st.MissingSigners() {
		party := party
		g.Go(func() error {
			sig, err := i.requestSignature(gctx, party, proposal)
			if nil != err {
				return err
			}
			lock.Lock()
			signatures = append(signatures, sig)
			lock.Unlock()
			return nil
		})
	}
	if err := g.Wait(); nil != err {
		return err
	}

	for _, sig := range signatures {
		if err := st.AddSignature(sig); nil != err {
			return err
		}
	}
	return nil
}

func (i *Initiator) requestSignature(ctx context.Context, party *account.Account, proposal []byte) (transactionrecord.Signature, error) {
	session, err := i.transport.OpenSession(ctx, party, SignTopic)
	if nil != err {
		return transactionrecord.Signature{}, err
	}
	defer session.Close()

	if err := session.Send(ctx, proposal); nil != err {
		return transactionrecord.Signature{}, err
	}
	response, err := session.Receive(ctx)
	if nil != err {
		return transactionrecord.Signature{}, err
	}
	e, err := unpackMessage(response)
	if nil != err {
		return transactionrecord.Signature{}, err
	}

	switch e.tag {
	case signatureMessage:
		if !party.Equal(e.signature.Signer) {
			return transactionrecord.Signature{}, fault.ErrSignatureInvalid
		}
		return e.signature, nil
	case rejectMessage:
		i.log.Infof("rejected by: %s  reason: %s", party, e.reason)
		return transactionrecord.Signature{}, fmt.Errorf("%w: %s", fault.ErrCounterpartyRejected, e.reason)
	default:
		return transactionrecord.Signature{}, fault.ErrInvalidMessage
	}
}

// commit with the notary
//
// the submission is recorded first so that an unanswered commit can be
// completed by the recovery reconciler
func (i *Initiator) notarise(ctx context.Context, st *transactionrecord.SignedTransaction) (*transactionrecord.NotarisedTransaction, error) {
	if err := i.vault.RecordSubmitted(st); nil != err {
		return nil, err
	}

	receipt, err := i.oracle.Commit(ctx, st)
	if nil != err {
		// a definite answer means nothing was spent
		if !fault.IsErrTransport(err) && !errors.Is(err, context.Canceled) {
			if e := i.vault.DropPending(st.Id); nil != e {
				i.log.Errorf("tx: %s  drop pending error: %s", st.Id, e)
			}
		}
		return nil, err
	}

	nt := &transactionrecord.NotarisedTransaction{
		Signed:  st,
		Receipt: receipt,
	}
	if err := nt.Verify(); nil != err {
		return nil, err
	}
	return nt, nil
}

// record the receipt and apply to the local vault
//
// the inputs are already spent so a failure here cannot reject the
// run; after the last attempt the pending record stays for recovery
func (i *Initiator) apply(ctx context.Context, nt *transactionrecord.NotarisedTransaction) bool {
	delay := applyBackoff

retry_loop:
	for attempt := 1; ; attempt += 1 {
		err := i.vault.RecordReceipt(nt)
		if nil == err {
			_, err = i.vault.ApplyCommit(nt)
		}
		if nil == err {
			return true
		}
		i.log.Errorf("tx: %s  apply attempt: %d  error: %s", nt.Id(), attempt, err)
		if attempt >= applyAttempts {
			break retry_loop
		}

		select {
		case <-ctx.Done():
			break retry_loop
		case <-time.After(delay):
		}
		delay *= 2
	}

	i.log.Criticalf("tx: %s  committed by notary but not applied, left pending", nt.Id())
	return false
}

// Distribute - deliver a notarised transaction to every participant
// of its consumed and produced states
//
// used to complete a commit found pending after a restart
func (i *Initiator) Distribute(ctx context.Context, nt *transactionrecord.NotarisedTransaction, dependencies []*transactionrecord.NotarisedTransaction) {
	tx := nt.Signed.Tx
	parties := tx.Participants()
	if consumed, err := resolveInputs(tx, dependencies); nil == err {
		parties = participants(tx, consumed)
	}
	i.distribute(ctx, nt, dependencies, parties)
}

// send the notarised transaction to every other participant
func (i *Initiator) distribute(ctx context.Context, nt *transactionrecord.NotarisedTransaction, dependencies []*transactionrecord.NotarisedTransaction, parties []*account.Account) {
	message, err := packFinalise(nt, dependencies)
	if nil != err {
		i.log.Errorf("tx: %s  pack finalise error: %s", nt.Id(), err)
		return
	}

	self := i.key.Account()
	var wg sync.WaitGroup
	for _, party := range parties {
		if party.Equal(self) {
			continue
		}
		wg.Add(1)
		go func(party *account.Account) {
			defer wg.Done()
			if err := i.deliver(ctx, party, message); nil != err {
				i.log.Warnf("tx: %s  deliver to: %s  error: %s", nt.Id(), party, err)
			}
		}(party)
	}
	wg.Wait()
}

func (i *Initiator) deliver(ctx context.Context, party *account.Account, message []byte) error {
	return Deliver(ctx, i.transport, party, message)
}

// Deliver - send a packed finalise message and wait for the
// acknowledgement
func Deliver(ctx context.Context, t transport.Transport, party *account.Account, message []byte) error {
	session, err := t.OpenSession(ctx, party, FinaliseTopic)
	if nil != err {
		return err
	}
	defer session.Close()

	if err := session.Send(ctx, message); nil != err {
		return err
	}
	response, err := session.Receive(ctx)
	if nil != err {
		return err
	}
	e, err := unpackMessage(response)
	if nil != err {
		return err
	}
	switch e.tag {
	case acknowledgeMessage:
		return nil
	case rejectMessage:
		return fmt.Errorf("%w: %s", fault.ErrCounterpartyRejected, e.reason)
	default:
		return fault.ErrInvalidMessage
	}
}
