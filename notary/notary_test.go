// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/notary"
	"github.com/bitmark-inc/tranched/testing/fixture"
	"github.com/bitmark-inc/tranched/transactionrecord"
	"github.com/bitmark-inc/tranched/transport"
)

func TestCommit(t *testing.T) {
	s := newLocalService(t)
	defer s.Close()

	issued, first, _ := conflicting(t)

	receipt, err := s.Commit(context.Background(), issued.Signed)
	assert.Nil(t, err, "issue has no inputs")
	assert.Nil(t, receipt.Verify(fixture.Notary, issued.Id()), "issue receipt")

	receipt, err = s.Commit(context.Background(), first)
	assert.Nil(t, err, "first transfer")
	assert.Nil(t, receipt.Verify(fixture.Notary, first.Id), "transfer receipt")

	// resubmission is answered again
	receipt, err = s.Commit(context.Background(), first)
	assert.Nil(t, err, "resubmitted")
	assert.Nil(t, receipt.Verify(fixture.Notary, first.Id), "same transaction")
}

func TestDoubleSpend(t *testing.T) {
	s := newLocalService(t)
	defer s.Close()

	_, first, second := conflicting(t)

	_, err := s.Commit(context.Background(), first)
	assert.Nil(t, err, "first wins")

	_, err = s.Commit(context.Background(), second)
	assert.True(t, fault.IsErrDoubleSpend(err), "second conflicts")
	var conflict *fault.Conflict
	if assert.True(t, errors.As(err, &conflict), "carries the consumer") {
		assert.Equal(t, first.Id.String(), conflict.TxId, "consumed by the first")
	}
}

func TestSingleSpendUnderConcurrency(t *testing.T) {
	s := newLocalService(t)
	defer s.Close()

	_, first, second := conflicting(t)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, st := range []*transactionrecord.SignedTransaction{first, second} {
		wg.Add(1)
		go func(i int, st *transactionrecord.SignedTransaction) {
			defer wg.Done()
			_, results[i] = s.Commit(context.Background(), st)
		}(i, st)
	}
	wg.Wait()

	committed := 0
	conflicts := 0
	for _, err := range results {
		if nil == err {
			committed += 1
		} else if fault.IsErrDoubleSpend(err) {
			conflicts += 1
		}
	}
	assert.Equal(t, 1, committed, "exactly one commits")
	assert.Equal(t, 1, conflicts, "the other conflicts")
}

func TestCommitRejections(t *testing.T) {
	s := newLocalService(t)
	defer s.Close()

	_, first, _ := conflicting(t)

	// drop the buyer's signature
	unsigned := &transactionrecord.SignedTransaction{
		Tx:         first.Tx,
		Id:         first.Id,
		Signatures: first.Signatures[:1],
	}
	_, err := s.Commit(context.Background(), unsigned)
	assert.Equal(t, fault.ErrSignatureInvalid, err, "missing signature")

	other := notary.New(logger.New("notary"), fixture.OtherKey, notary.NewLocal(memoryDB(t)))
	defer other.Close()
	_, err = other.Commit(context.Background(), first)
	assert.Equal(t, fault.ErrInvalidNotary, err, "not this notary")

	// the rejected transaction spent nothing
	_, err = s.Commit(context.Background(), first)
	assert.Nil(t, err, "still spendable")
}

func TestRemote(t *testing.T) {
	s := newLocalService(t)
	defer s.Close()

	network := transport.NewNetwork()
	notary.Serve(logger.New("notary"), network.Endpoint(fixture.Notary), s)
	remote := notary.NewRemote(logger.New("notary"), network.Endpoint(fixture.Agent), fixture.Notary)
	assert.True(t, fixture.Notary.Equal(remote.Identity()), "identity")

	_, first, second := conflicting(t)
	ctx := context.Background()

	receipt, err := remote.Commit(ctx, first)
	assert.Nil(t, err, "remote commit")
	assert.Nil(t, receipt.Verify(fixture.Notary, first.Id), "receipt")

	_, err = remote.Commit(ctx, second)
	var conflict *fault.Conflict
	if assert.True(t, errors.As(err, &conflict), "conflict crosses the wire") {
		assert.Equal(t, first.Id.String(), conflict.TxId, "consumer id")
	}

	unsigned := &transactionrecord.SignedTransaction{
		Tx:         second.Tx,
		Id:         second.Id,
		Signatures: second.Signatures[:1],
	}
	_, err = remote.Commit(ctx, unsigned)
	assert.Equal(t, fault.ErrSignatureInvalid, err, "rejection crosses the wire")
}

func TestRemoteUnreachable(t *testing.T) {
	network := transport.NewNetwork()
	remote := notary.NewRemote(logger.New("notary"), network.Endpoint(fixture.Agent), fixture.Notary)

	_, first, _ := conflicting(t)
	_, err := remote.Commit(context.Background(), first)
	assert.True(t, fault.Retryable(err), "transport failure")
}

func TestRedis(t *testing.T) {
	address := os.Getenv("TRANCHED_TEST_REDIS")
	if "" == address {
		t.Skip("TRANCHED_TEST_REDIS not set")
	}

	backend, err := notary.NewRedis(address, "", 0)
	if !assert.Nil(t, err, "redis") {
		return
	}
	assert.Nil(t, backend.Ping(context.Background()), "ping")

	s := notary.New(logger.New("notary"), fixture.NotaryKey, backend)
	defer s.Close()

	_, first, second := conflicting(t)

	_, err = s.Commit(context.Background(), first)
	assert.Nil(t, err, "first")
	_, err = s.Commit(context.Background(), first)
	assert.Nil(t, err, "resubmitted")
	_, err = s.Commit(context.Background(), second)
	assert.True(t, fault.IsErrDoubleSpend(err), "conflict")
}
