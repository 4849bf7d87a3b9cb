// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/background"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/identity"
	"github.com/bitmark-inc/tranched/testing/fixture"
)

const (
	testingDirName = "testing"
	curveKey       = "PUBLIC:0c9e13ac6b7e2d0a35f3d0f4e4a9b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f708"
)

func setupTestLogger() {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

func teardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(testingDirName)
}

func TestMain(m *testing.M) {
	setupTestLogger()
	result := m.Run()
	teardownTestLogger()
	os.Exit(result)
}

func writeMap(t *testing.T, fileName string, notary string, parties ...identity.Party) {
	data, err := json.Marshal(map[string]interface{}{
		"notary":  notary,
		"parties": parties,
	})
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}
	if err := os.WriteFile(fileName, data, 0600); nil != err {
		t.Fatalf("write error: %s", err)
	}
}

func standardMap(t *testing.T, name string) string {
	dir := filepath.Join(testingDirName, name)
	_ = os.MkdirAll(dir, 0700)
	fileName := filepath.Join(dir, "network.json")
	writeMap(t, fileName, "Notary",
		identity.Party{Name: "Agent", Account: fixture.Agent, Address: "tcp://127.0.0.1:2136", PublicKey: curveKey},
		identity.Party{Name: "Buyer", Account: fixture.Buyer, Address: "tcp://127.0.0.1:2137", PublicKey: curveKey},
		identity.Party{Name: "Other", Account: fixture.Other},
		identity.Party{Name: "Notary", Account: fixture.Notary, Address: "tcp://127.0.0.1:2138", PublicKey: curveKey},
	)
	return fileName
}

func TestResolve(t *testing.T) {
	r, err := identity.Load(logger.New("identity"), standardMap(t, "resolve"), fixture.Agent)
	assert.Nil(t, err, "wrong load error")

	a, ok := r.Resolve("Buyer")
	assert.True(t, ok, "buyer not found")
	assert.True(t, fixture.Buyer.Equal(a), "wrong buyer account")

	_, ok = r.Resolve("Nobody")
	assert.False(t, ok, "unknown name resolved")

	name, ok := r.Name(fixture.Other)
	assert.True(t, ok, "other not found")
	assert.Equal(t, "Other", name, "wrong name")

	self, ok := r.Self()
	assert.True(t, ok, "self not found")
	assert.Equal(t, "Agent", self.Name, "wrong self")

	notary, ok := r.Notary()
	assert.True(t, ok, "notary not found")
	assert.True(t, fixture.Notary.Equal(notary.Account), "wrong notary")
}

func TestPeers(t *testing.T) {
	r, err := identity.Load(logger.New("identity"), standardMap(t, "peers"), fixture.Agent)
	assert.Nil(t, err, "wrong load error")

	peers := r.Peers()
	assert.Equal(t, 2, len(peers), "wrong number of peers")
	assert.Equal(t, "Buyer", peers[0].Name, "wrong first peer")
	assert.Equal(t, "Other", peers[1].Name, "wrong second peer")
}

func TestEndpoint(t *testing.T) {
	r, err := identity.Load(logger.New("identity"), standardMap(t, "endpoint"), fixture.Agent)
	assert.Nil(t, err, "wrong load error")

	address, key, err := r.Endpoint(fixture.Buyer)
	assert.Nil(t, err, "wrong endpoint error")
	assert.Equal(t, "tcp://127.0.0.1:2137", address, "wrong address")
	assert.Equal(t, 32, len(key), "wrong key length")

	_, _, err = r.Endpoint(fixture.Other)
	assert.Equal(t, fault.ErrPartyNotFound, err, "party without address")
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	fileName := standardMap(t, "reload")
	r, err := identity.Load(logger.New("identity"), fileName, fixture.Agent)
	assert.Nil(t, err, "wrong load error")

	assert.Nil(t, os.WriteFile(fileName, []byte("{not json"), 0600), "wrong write error")
	assert.NotNil(t, r.Reload(), "bad map accepted")

	_, ok := r.Resolve("Buyer")
	assert.True(t, ok, "previous map lost")

	writeMap(t, fileName, "Missing", identity.Party{Name: "Agent", Account: fixture.Agent})
	assert.Equal(t, fault.ErrInvalidNotary, r.Reload(), "unknown notary accepted")
}

func TestPeeringKeys(t *testing.T) {
	fileName := standardMap(t, "keys")
	r, err := identity.Load(logger.New("identity"), fileName, fixture.Agent)
	assert.Nil(t, err, "wrong load error")

	keys := r.PeeringKeys()
	assert.Equal(t, 3, len(keys), "wrong number of keys")
	for _, k := range keys {
		assert.Equal(t, 32, len(k), "wrong key length")
	}

	calls := 0
	r.OnReload(func() {
		calls += 1
	})

	writeMap(t, fileName, "Notary",
		identity.Party{Name: "Agent", Account: fixture.Agent, Address: "tcp://127.0.0.1:2136", PublicKey: curveKey},
		identity.Party{Name: "Notary", Account: fixture.Notary},
	)
	assert.Nil(t, r.Reload(), "wrong reload error")
	assert.Equal(t, 1, calls, "hook not called")
	assert.Equal(t, 1, len(r.PeeringKeys()), "keys not replaced")

	assert.Nil(t, os.WriteFile(fileName, []byte("{not json"), 0600), "wrong write error")
	assert.NotNil(t, r.Reload(), "bad map accepted")
	assert.Equal(t, 1, calls, "hook called for a failed reload")
}

func TestLoadMissing(t *testing.T) {
	_, err := identity.Load(logger.New("identity"), filepath.Join(testingDirName, "missing.json"), fixture.Agent)
	assert.NotNil(t, err, "missing map accepted")
}

func TestWatcherReloads(t *testing.T) {
	fileName := standardMap(t, "watch")
	r, err := identity.Load(logger.New("identity"), fileName, fixture.Agent)
	assert.Nil(t, err, "wrong load error")

	b := background.Start(background.Processes{r}, nil)
	defer b.Stop()

	// allow the watcher to start
	time.Sleep(100 * time.Millisecond)

	writeMap(t, fileName, "Notary",
		identity.Party{Name: "Agent", Account: fixture.Agent},
		identity.Party{Name: "NewBuyer", Account: fixture.Buyer},
		identity.Party{Name: "Notary", Account: fixture.Notary},
	)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := r.Resolve("NewBuyer"); ok {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("network map not reloaded")
}
