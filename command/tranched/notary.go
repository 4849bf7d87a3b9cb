// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/identity"
	"github.com/bitmark-inc/tranched/keystore"
	"github.com/bitmark-inc/tranched/notary"
	"github.com/bitmark-inc/tranched/transport"
)

const redisConnectTimeout = 5 * time.Second

type oracle interface {
	notary.Oracle
	io.Closer
}

// nothing held open
type remoteOracle struct {
	*notary.Remote
}

func (remoteOracle) Close() error {
	return nil
}

// the uniqueness oracle for the configured mode; local and redis
// also answer other parties' commits on the transport
func openNotary(conf *NotaryType, nodeKey account.Signer, resolver *identity.Resolver, t transport.Transport) (oracle, error) {
	log := logger.New("notary")

	if notaryRemote == conf.Mode {
		party, ok := resolver.Resolve(conf.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", fault.ErrPartyNotFound, conf.Name)
		}
		return remoteOracle{notary.NewRemote(log, t, party)}, nil
	}

	key := nodeKey
	if "" != conf.KeyFile {
		k, name, err := keystore.Load(conf.KeyFile, os.Getenv(conf.PasswordEnv))
		if nil != err {
			return nil, err
		}
		log.Infof("notary identity: %s  account: %s", name, k.Account())
		key = k
	}

	var backend notary.Backend
	switch conf.Mode {
	case notaryLocal:
		local, err := notary.OpenLocal(conf.Database)
		if nil != err {
			return nil, err
		}
		backend = local

	case notaryRedis:
		r, err := notary.NewRedis(conf.Redis.Address, conf.Redis.Password, conf.Redis.DB)
		if nil != err {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
		defer cancel()
		if err := r.Ping(ctx); nil != err {
			r.Close()
			return nil, err
		}
		backend = r

	default:
		return nil, fault.ErrInvalidNotaryMode
	}

	service := notary.New(log, key, backend)
	notary.Serve(log, t, service)
	return service, nil
}
