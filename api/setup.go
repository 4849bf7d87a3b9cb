// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/tranched/rpc/certificate"
	"github.com/bitmark-inc/tranched/rpc/listeners"
)

const tlsName = "https_api"

// Serve - start the HTTPS listeners, nil when none are configured
func Serve(log *logger.L, configuration *listeners.HTTPSConfiguration, n Node, reports Reports) (listeners.Listener, error) {
	if 0 == len(configuration.Listen) {
		log.Infof("disable: %s", tlsName)
		return nil, nil
	}

	tlsConfig, fingerprint, err := certificate.Load(log, tlsName, configuration.Certificate, configuration.PrivateKey)
	if nil != err {
		return nil, err
	}
	log.Infof("%s: SHA3-256 fingerprint: %x", tlsName, fingerprint)

	allow, err := listeners.ParseAllow(configuration.Allow)
	if nil != err {
		return nil, err
	}

	a := New(log, n, reports, allow)

	l, err := listeners.NewHTTPS(configuration, log, tlsConfig, a.Handler())
	if nil != err {
		return nil, err
	}
	err = l.Serve()
	if nil != err {
		_ = l.Close()
		return nil, err
	}
	return l, nil
}
