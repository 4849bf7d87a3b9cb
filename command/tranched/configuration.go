// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/tranched/configuration"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/rpc/listeners"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultIdentityFile       = "tranched.identity"
	defaultPasswordVariable   = "TRANCHED_PASSWORD"
	defaultPeerPublicKeyFile  = "peer.public"
	defaultPeerPrivateKeyFile = "peer.private"
	defaultKeyFile            = "rpc.key"
	defaultCertificateFile    = "rpc.crt"
	defaultNetworkMapFile     = "network.json"

	defaultLevelDBDirectory = "data"
	defaultVaultDatabase    = "vault.leveldb"
	defaultNotaryDatabase   = "notary.leveldb"
	defaultProjectionFile   = "" // projection disabled

	defaultLogDirectory = "log"
	defaultLogFile      = "tranched.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients     = 10
	defaultFlowTimeout    = 60  // seconds
	defaultRecoveryPeriod = 120 // seconds
)

// notary modes
const (
	notaryLocal  = "local"
	notaryRedis  = "redis"
	notaryRemote = "remote"
)

// to hold log levels
type LoglevelMap map[string]string

// a new map each time as the configuration file's levels are merged in
func defaultLogLevels() LoglevelMap {
	return LoglevelMap{
		logger.DefaultTag: "critical",
	}
}

type IdentityType struct {
	Name        string `gluamapper:"name" json:"name"`
	KeyFile     string `gluamapper:"key_file" json:"key_file"`
	PasswordEnv string `gluamapper:"password_env" json:"password_env"`
}

type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

type RedisType struct {
	Address  string `gluamapper:"address" json:"address"`
	Password string `gluamapper:"password" json:"-"`
	DB       int    `gluamapper:"db" json:"db"`
}

// NotaryType - which uniqueness oracle the node commits through
//
// local and redis host the notary in this process, signing with
// key_file if given, else with the node identity
type NotaryType struct {
	Mode        string    `gluamapper:"mode" json:"mode"`
	Name        string    `gluamapper:"name" json:"name"`
	KeyFile     string    `gluamapper:"key_file" json:"key_file"`
	PasswordEnv string    `gluamapper:"password_env" json:"password_env"`
	Database    string    `gluamapper:"database" json:"database"`
	Redis       RedisType `gluamapper:"redis" json:"redis"`
}

// server identification in Z85 (ZeroMQ Base-85 Encoding) see: http://rfc.zeromq.org/spec:32
type PeerType struct {
	Listen     []string `gluamapper:"listen" json:"listen"`
	PublicKey  string   `gluamapper:"public_key" json:"public_key"`
	PrivateKey string   `gluamapper:"private_key" json:"private_key"`
}

type PolicyType struct {
	File       string   `gluamapper:"file" json:"file"`
	Currencies []string `gluamapper:"currencies" json:"currencies"`
}

type Configuration struct {
	DataDirectory  string `gluamapper:"data_directory" json:"data_directory"`
	PidFile        string `gluamapper:"pidfile" json:"pidfile"`
	NetworkMap     string `gluamapper:"network_map" json:"network_map"`
	ProjectionFile string `gluamapper:"projection_file" json:"projection_file"`
	FlowTimeout    int    `gluamapper:"flow_timeout" json:"flow_timeout"`
	RecoveryPeriod int    `gluamapper:"recovery_period" json:"recovery_period"`

	Identity  IdentityType                 `gluamapper:"identity" json:"identity"`
	Database  DatabaseType                 `gluamapper:"database" json:"database"`
	Notary    NotaryType                   `gluamapper:"notary" json:"notary"`
	Peering   PeerType                     `gluamapper:"peering" json:"peering"`
	Policy    PolicyType                   `gluamapper:"policy" json:"policy"`
	ClientRPC listeners.RPCConfiguration   `gluamapper:"client_rpc" json:"client_rpc"`
	HttpsAPI  listeners.HTTPSConfiguration `gluamapper:"https_api" json:"https_api"`
	Logging   logger.Configuration         `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	options := &Configuration{

		DataDirectory:  defaultDataDirectory,
		PidFile:        "", // no PidFile by default
		NetworkMap:     defaultNetworkMapFile,
		ProjectionFile: defaultProjectionFile,
		FlowTimeout:    defaultFlowTimeout,
		RecoveryPeriod: defaultRecoveryPeriod,

		Identity: IdentityType{
			KeyFile:     defaultIdentityFile,
			PasswordEnv: defaultPasswordVariable,
		},

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultVaultDatabase,
		},

		Notary: NotaryType{
			Mode:        notaryRemote,
			PasswordEnv: defaultPasswordVariable,
			Database:    defaultNotaryDatabase,
		},

		Peering: PeerType{
			PublicKey:  defaultPeerPublicKeyFile,
			PrivateKey: defaultPeerPrivateKeyFile,
		},

		ClientRPC: listeners.RPCConfiguration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		// default: share config with normal RPC
		HttpsAPI: listeners.HTTPSConfiguration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels(),
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	switch options.Notary.Mode {
	case notaryLocal, notaryRedis:
	case notaryRemote:
		if "" == options.Notary.Name {
			return nil, fmt.Errorf("%w: remote notary requires a name", fault.ErrInvalidNotaryMode)
		}
	default:
		return nil, fmt.Errorf("%w: %q", fault.ErrInvalidNotaryMode, options.Notary.Mode)
	}
	if notaryRedis == options.Notary.Mode && "" == options.Notary.Redis.Address {
		return nil, fmt.Errorf("%w: redis notary requires an address", fault.ErrInvalidConfiguration)
	}

	if options.FlowTimeout <= 0 || options.RecoveryPeriod <= 0 {
		return nil, fmt.Errorf("%w: timeouts must be positive", fault.ErrInvalidConfiguration)
	}

	options.DataDirectory, err = configuration.DataDirectory(configurationFileName, options.DataDirectory)
	if nil != err {
		return nil, err
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	configuration.MakeAbsolute(
		options.DataDirectory,
		&options.NetworkMap,
		&options.Identity.KeyFile,
		&options.Database.Directory,
		&options.Peering.PublicKey,
		&options.Peering.PrivateKey,
		&options.ClientRPC.Certificate,
		&options.ClientRPC.PrivateKey,
		&options.HttpsAPI.Certificate,
		&options.HttpsAPI.PrivateKey,
		&options.Logging.Directory,
	)

	// optional absolute paths i.e. blank or an absolute path
	configuration.MakeOptionalAbsolute(
		options.DataDirectory,
		&options.PidFile,
		&options.ProjectionFile,
		&options.Notary.KeyFile,
		&options.Policy.File,
	)

	// fail if any of these are not simple file names, the database
	// names then gain the database directory
	if options.Database.Name, err = configuration.PlainName(options.Database.Name, options.Database.Directory); nil != err {
		return nil, err
	}
	if options.Notary.Database, err = configuration.PlainName(options.Notary.Database, options.Database.Directory); nil != err {
		return nil, err
	}
	if _, err = configuration.PlainName(options.Logging.File, ""); nil != err {
		return nil, err
	}

	// create directories if they do not already exist
	for _, d := range []string{
		options.Database.Directory,
		options.Logging.Directory,
	} {
		if err := os.MkdirAll(d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}
