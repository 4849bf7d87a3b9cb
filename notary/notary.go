// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package notary - the uniqueness oracle
//
// the notary checks that a fully signed transaction carries every
// required signature and that none of its inputs has been consumed by
// another transaction, then marks the inputs spent and signs a receipt
package notary

import (
	"context"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/transactionrecord"
)

// Oracle - what a party needs from a notary
type Oracle interface {
	Identity() *account.Account
	Commit(ctx context.Context, st *transactionrecord.SignedTransaction) (*transactionrecord.Receipt, error)
}

// Backend - the spent set
type Backend interface {
	// Spend - atomically mark every ref consumed by txId or mark none
	//
	// refs already consumed by txId itself do not conflict; on conflict
	// the id of the consuming transaction is returned
	Spend(ctx context.Context, txId merkle.Digest, refs []state.Ref) (*merkle.Digest, error)
	Close() error
}

// Service - a notary holding its own signing key
type Service struct {
	log     *logger.L
	key     account.Signer
	backend Backend
}

// New - a notary service over a spent set
func New(log *logger.L, key account.Signer, backend Backend) *Service {
	return &Service{
		log:     log,
		key:     key,
		backend: backend,
	}
}

// Identity - the notary's public key
func (s *Service) Identity() *account.Account {
	return s.key.Account()
}

// Commit - finalise a fully signed transaction
//
// resubmitting a committed transaction returns a fresh receipt for it
func (s *Service) Commit(ctx context.Context, st *transactionrecord.SignedTransaction) (*transactionrecord.Receipt, error) {
	if nil == st || nil == st.Tx {
		return nil, fault.ErrInvalidTransaction
	}
	if !s.Identity().Equal(st.Tx.Notary) {
		s.log.Warnf("tx: %s  names another notary: %s", st.Id, st.Tx.Notary)
		return nil, fault.ErrInvalidNotary
	}
	if err := st.VerifySignatures(); nil != err {
		s.log.Warnf("tx: %s  signature error: %s", st.Id, err)
		return nil, fault.ErrSignatureInvalid
	}

	conflict, err := s.backend.Spend(ctx, st.Id, st.Tx.Inputs)
	if nil != err {
		s.log.Errorf("tx: %s  spend error: %s", st.Id, err)
		return nil, err
	}
	if nil != conflict {
		s.log.Infof("tx: %s  double spend, consumed by: %s", st.Id, conflict)
		return nil, &fault.Conflict{TxId: conflict.String()}
	}

	s.log.Infof("tx: %s  committed  inputs: %d", st.Id, len(st.Tx.Inputs))
	return transactionrecord.NewReceipt(st.Id, s.key), nil
}

// Close - release the spent set
func (s *Service) Close() error {
	return s.backend.Close()
}
