// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity - the network map: display names, signing keys and
// peering endpoints of every known party
//
// the map is a JSON file:
//
//   {
//     "notary": "Notary",
//     "parties": [
//       {
//         "name": "PartyA",
//         "account": "<base58 account>",
//         "address": "tcp://127.0.0.1:2136",
//         "public_key": "PUBLIC:<hex curve key>"
//       }
//     ]
//   }
package identity

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/zmqutil"
)

// Party - one entry of the network map
type Party struct {
	Name      string           `json:"name"`
	Account   *account.Account `json:"account"`
	Address   string           `json:"address,omitempty"`
	PublicKey string           `json:"public_key,omitempty"`
}

type networkMap struct {
	Notary  string  `json:"notary"`
	Parties []Party `json:"parties"`
}

// Resolver - name and endpoint lookups over a reloadable network map
type Resolver struct {
	sync.RWMutex
	log       *logger.L
	fileName  string
	self      *account.Account
	notary    *Party
	byName    map[string]*Party
	byAccount map[string]*Party
	reloaded  []func()
}

// Load - read the network map for the party self
func Load(log *logger.L, fileName string, self *account.Account) (*Resolver, error) {
	r := &Resolver{
		log:      log,
		fileName: fileName,
		self:     self,
	}
	if err := r.Reload(); nil != err {
		return nil, err
	}
	return r, nil
}

// Reload - re-read the network map, on error the previous map remains
func (r *Resolver) Reload() error {
	data, err := os.ReadFile(r.fileName)
	if nil != err {
		return err
	}

	var m networkMap
	if err := json.Unmarshal(data, &m); nil != err {
		return err
	}

	byName := make(map[string]*Party, len(m.Parties))
	byAccount := make(map[string]*Party, len(m.Parties))
	for i := range m.Parties {
		p := &m.Parties[i]
		if "" == p.Name || nil == p.Account {
			return fault.ErrPartyNotFound
		}
		if "" != p.PublicKey {
			if _, err := zmqutil.ReadPublicKey(p.PublicKey); nil != err {
				return err
			}
		}
		byName[p.Name] = p
		byAccount[p.Account.String()] = p
	}

	var notary *Party
	if "" != m.Notary {
		n, ok := byName[m.Notary]
		if !ok {
			return fault.ErrInvalidNotary
		}
		notary = n
	}

	r.Lock()
	r.notary = notary
	r.byName = byName
	r.byAccount = byAccount
	hooks := r.reloaded
	r.Unlock()

	r.log.Infof("network map: %s  parties: %d", r.fileName, len(byName))
	for _, f := range hooks {
		f()
	}
	return nil
}

// OnReload - call f after each later successful reload
func (r *Resolver) OnReload(f func()) {
	r.Lock()
	r.reloaded = append(r.reloaded, f)
	r.Unlock()
}

// PeeringKeys - curve public keys of every party that has one, in name
// order
func (r *Resolver) PeeringKeys() [][]byte {
	r.RLock()
	defer r.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	keys := make([][]byte, 0, len(names))
	for _, name := range names {
		p := r.byName[name]
		if "" == p.PublicKey {
			continue
		}
		key, err := zmqutil.ReadPublicKey(p.PublicKey)
		if nil != err {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// FileName - the network map being served
func (r *Resolver) FileName() string {
	return r.fileName
}

// Resolve - account for a display name
func (r *Resolver) Resolve(name string) (*account.Account, bool) {
	r.RLock()
	defer r.RUnlock()

	p, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return p.Account, true
}

// Name - display name of an account
func (r *Resolver) Name(a *account.Account) (string, bool) {
	r.RLock()
	defer r.RUnlock()

	p, ok := r.byAccount[a.String()]
	if !ok {
		return "", false
	}
	return p.Name, true
}

// Self - this node's entry
func (r *Resolver) Self() (Party, bool) {
	r.RLock()
	defer r.RUnlock()

	p, ok := r.byAccount[r.self.String()]
	if !ok {
		return Party{Account: r.self}, false
	}
	return *p, true
}

// Notary - the notary named by the map
func (r *Resolver) Notary() (Party, bool) {
	r.RLock()
	defer r.RUnlock()

	if nil == r.notary {
		return Party{}, false
	}
	return *r.notary, true
}

// Peers - every party except this node and the notary, by name
func (r *Resolver) Peers() []Party {
	r.RLock()
	defer r.RUnlock()

	peers := make([]Party, 0, len(r.byName))
	for _, p := range r.byName {
		if p.Account.Equal(r.self) {
			continue
		}
		if nil != r.notary && p.Account.Equal(r.notary.Account) {
			continue
		}
		peers = append(peers, *p)
	}
	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Name < peers[j].Name
	})
	return peers
}

// Endpoint - peering address and curve public key of a party
func (r *Resolver) Endpoint(party *account.Account) (string, []byte, error) {
	r.RLock()
	defer r.RUnlock()

	p, ok := r.byAccount[party.String()]
	if !ok || "" == p.Address || "" == p.PublicKey {
		return "", nil, fault.ErrPartyNotFound
	}
	key, err := zmqutil.ReadPublicKey(p.PublicKey)
	if nil != err {
		return "", nil, err
	}
	return p.Address, key, nil
}
