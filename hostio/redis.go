// Copyright 2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package hostio

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	ctx     context.Context
	client  redis.UniversalClient
	timeout time.Duration
}

// NewRedisStore keeps words as plain redis strings. Every operation is bounded by timeout
// and cancelled when ctx is.
func NewRedisStore(ctx context.Context, client redis.UniversalClient, timeout time.Duration) KeyValueStore {
	return &redisStore{
		ctx:     ctx,
		client:  client,
		timeout: timeout,
	}
}

func (s *redisStore) opContext() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(s.ctx)
	}
	return context.WithTimeout(s.ctx, s.timeout)
}

func (s *redisStore) Get(key []byte) ([]byte, error) {
	ctx, cancel := s.opContext()
	defer cancel()
	data, err := s.client.Get(ctx, string(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *redisStore) Put(key []byte, value []byte) error {
	ctx, cancel := s.opContext()
	defer cancel()
	return s.client.Set(ctx, string(key), value, 0).Err()
}

func (s *redisStore) Delete(key []byte) error {
	ctx, cancel := s.opContext()
	defer cancel()
	return s.client.Del(ctx, string(key)).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
