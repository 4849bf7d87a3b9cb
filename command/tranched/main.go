// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/tranched/api"
	"github.com/bitmark-inc/tranched/background"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/identity"
	"github.com/bitmark-inc/tranched/keystore"
	"github.com/bitmark-inc/tranched/messagebus"
	"github.com/bitmark-inc/tranched/node"
	"github.com/bitmark-inc/tranched/policy"
	"github.com/bitmark-inc/tranched/projection"
	"github.com/bitmark-inc/tranched/rpc"
	"github.com/bitmark-inc/tranched/state"
	"github.com/bitmark-inc/tranched/storage"
	"github.com/bitmark-inc/tranched/transport"
	"github.com/bitmark-inc/tranched/zmqutil"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

const projectionQueueSize = 100

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "memory-stats", HasArg: getoptions.NO_ARGUMENT, Short: 'm'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// signing key of this party
	key, name, err := keystore.Load(theConfiguration.Identity.KeyFile, os.Getenv(theConfiguration.Identity.PasswordEnv))
	if nil != err {
		log.Criticalf("identity: %q error: %s", theConfiguration.Identity.KeyFile, err)
		exitwithstatus.Message("identity: %q error: %s", theConfiguration.Identity.KeyFile, err)
	}
	if "" != theConfiguration.Identity.Name && name != theConfiguration.Identity.Name {
		log.Warnf("identity file name: %q  configured name: %q", name, theConfiguration.Identity.Name)
	}
	self := key.Account()
	log.Infof("identity: %s  account: %s", name, self)

	// the network map
	log.Info("initialise identity")
	resolver, err := identity.Load(logger.New("identity"), theConfiguration.NetworkMap, self)
	if nil != err {
		log.Criticalf("network map: %q error: %s", theConfiguration.NetworkMap, err)
		exitwithstatus.Message("network map: %q error: %s", theConfiguration.NetworkMap, err)
	}

	// start the data storage
	log.Info("initialise storage")
	vault, err := storage.Open(theConfiguration.Database.Name, self, logger.New("storage"))
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer vault.Close()

	// peering
	log.Info("initialise transport")
	privateKey, err := peeringKey(theConfiguration.Peering.PrivateKey, true)
	if nil != err {
		log.Criticalf("peer private key: %q error: %s", theConfiguration.Peering.PrivateKey, err)
		exitwithstatus.Message("peer private key: %q error: %s", theConfiguration.Peering.PrivateKey, err)
	}
	publicKey, err := peeringKey(theConfiguration.Peering.PublicKey, false)
	if nil != err {
		log.Criticalf("peer public key: %q error: %s", theConfiguration.Peering.PublicKey, err)
		exitwithstatus.Message("peer public key: %q error: %s", theConfiguration.Peering.PublicKey, err)
	}
	t, err := transport.NewZMQ(logger.New("transport"), transport.ZMQConfiguration{
		Self:       self,
		PrivateKey: privateKey,
		PublicKey:  publicKey,
		Listen:     theConfiguration.Peering.Listen,
		Clients:    resolver.PeeringKeys(),
		Directory:  resolver,
	})
	if nil != err {
		log.Criticalf("transport initialise error: %s", err)
		exitwithstatus.Message("transport initialise error: %s", err)
	}
	defer t.Close()

	// only parties in the network map may connect
	resolver.OnReload(func() {
		t.Allow(resolver.PeeringKeys())
	})

	// uniqueness oracle
	log.Infof("initialise notary: %s", theConfiguration.Notary.Mode)
	notaryOracle, err := openNotary(&theConfiguration.Notary, key, resolver, t)
	if nil != err {
		log.Criticalf("notary initialise error: %s", err)
		exitwithstatus.Message("notary initialise error: %s", err)
	}
	defer notaryOracle.Close()

	// counter-party acceptance
	log.Info("initialise policy")
	var data map[string]interface{}
	if 0 != len(theConfiguration.Policy.Currencies) {
		currencies := make([]interface{}, 0, len(theConfiguration.Policy.Currencies))
		for _, c := range theConfiguration.Policy.Currencies {
			currencies = append(currencies, c)
		}
		data = map[string]interface{}{
			"currencies": currencies,
		}
	}
	acceptor, err := policy.New(context.Background(), logger.New("policy"), self, theConfiguration.Policy.File, data)
	if nil != err {
		log.Criticalf("policy initialise error: %s", err)
		exitwithstatus.Message("policy initialise error: %s", err)
	}

	bus := messagebus.NewBroadcastQueue()
	defer bus.Close()

	log.Info("initialise node")
	n, err := node.New(logger.New("node"), node.Configuration{
		Key:         key,
		Vault:       vault,
		Oracle:      notaryOracle,
		Transport:   t,
		Directory:   resolver,
		Acceptor:    acceptor,
		Bus:         bus,
		FlowTimeout: time.Duration(theConfiguration.FlowTimeout) * time.Second,
	})
	if nil != err {
		log.Criticalf("node initialise error: %s", err)
		exitwithstatus.Message("node initialise error: %s", err)
	}

	processes := background.Processes{
		n.Reconciler(time.Duration(theConfiguration.RecoveryPeriod) * time.Second),
		resolver,
	}

	// optional query projection
	var reports api.Reports
	if "" != theConfiguration.ProjectionFile {
		log.Info("initialise projection")
		p, err := projection.Open(logger.New("projection"), theConfiguration.ProjectionFile)
		if nil != err {
			log.Criticalf("projection initialise error: %s", err)
			exitwithstatus.Message("projection initialise error: %s", err)
		}
		defer p.Close()

		queue := bus.Chan(projectionQueueSize)
		defer bus.Release(queue)

		relevant := func(s state.State) bool {
			return state.IsRelevant(s, self)
		}
		processes = append(processes, p.Follow(queue, relevant))
		reports = p
	}

	bg := background.Start(processes, nil)
	defer bg.Stop()

	// start up the rpc background processes
	err = rpc.Initialise(&theConfiguration.ClientRPC, n, version)
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("rpc initialise error: %s", err)
	}
	defer rpc.Finalise()

	// REST access, nil if not configured
	httpsAPI, err := api.Serve(logger.New("api"), &theConfiguration.HttpsAPI, n, reports)
	if nil != err {
		log.Criticalf("api initialise error: %s", err)
		exitwithstatus.Message("api initialise error: %s", err)
	}
	if nil != httpsAPI {
		defer httpsAPI.Close()
	}

	// if memory logging enabled
	if len(options["memory-stats"]) > 0 {
		go memstats()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}

// a CURVE key file of the expected kind
func peeringKey(fileName string, private bool) ([]byte, error) {
	key, isPrivate, err := zmqutil.ReadKeyFile(fileName)
	if nil != err {
		return nil, err
	}
	if private != isPrivate {
		return nil, fault.ErrInvalidKeyType
	}
	return key, nil
}
