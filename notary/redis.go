// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/state"
)

const redisKeyPrefix = "tranched:spent:"

// returns the first conflicting consumer, or an empty string after
// marking every key
var redisSpendScript = redis.NewScript(`
for _, key in ipairs(KEYS) do
  local consumer = redis.call("GET", key)
  if consumer and consumer ~= ARGV[1] then
    return consumer
  end
end
for _, key in ipairs(KEYS) do
  redis.call("SET", key, ARGV[1])
end
return ""
`)

// Redis - spent set shared by notary workers through a Redis server
type Redis struct {
	client *redis.Client
}

// NewRedis - connect to a Redis server
func NewRedis(address string, password string, db int) (*Redis, error) {
	if "" == address {
		return nil, fault.ErrMissingParameters
	}
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return &Redis{client: client}, nil
}

// Ping - check the server is reachable
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); nil != err {
		return fault.ErrNotaryUnavailable
	}
	return nil
}

// Spend - the check and the writes run as one script
func (r *Redis) Spend(ctx context.Context, txId merkle.Digest, refs []state.Ref) (*merkle.Digest, error) {
	if 0 == len(refs) {
		return nil, nil
	}
	keys := make([]string, len(refs))
	for i, ref := range refs {
		keys[i] = redisKeyPrefix + ref.String()
	}

	consumer, err := redisSpendScript.Run(ctx, r.client, keys, txId.String()).Text()
	if nil != err {
		return nil, fault.ErrNotaryUnavailable
	}
	if "" == consumer {
		return nil, nil
	}
	d, err := merkle.DigestFromString(consumer)
	if nil != err {
		return nil, err
	}
	return &d, nil
}

// Close - close the connection pool
func (r *Redis) Close() error {
	return r.client.Close()
}
