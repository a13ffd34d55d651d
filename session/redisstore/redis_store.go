// Package redisstore keeps session slots in Redis, one key per slot.
package redisstore

import (
	"context"
	"time"

	"github.com/jrsteele09/trekker-client/session"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "trekker:session"

// Store is a session.Store backed by Redis.
type Store struct {
	rdb    *redis.Client
	prefix string
}

var _ session.Store = (*Store)(nil)

// New wraps an existing client. Keys are named "<prefix>:<slot>".
func New(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Connect parses a redis:// URL, pings the server and returns a Store on it.
func Connect(ctx context.Context, url, prefix string, timeout time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "[redisstore.Connect] ParseURL")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "[redisstore.Connect] ping")
	}
	return New(rdb, prefix), nil
}

func (s *Store) key(slot session.Slot) string {
	return s.prefix + ":" + string(slot)
}

func (s *Store) Get(ctx context.Context, slot session.Slot) (string, bool, error) {
	value, err := s.rdb.Get(ctx, s.key(slot)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "[redisstore.Get]")
	}
	return value, true, nil
}

// Set writes every slot inside a MULTI/EXEC transaction.
func (s *Store) Set(ctx context.Context, values map[session.Slot]string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for slot, value := range values {
			pipe.Set(ctx, s.key(slot), value, 0)
		}
		return nil
	})
	return errors.Wrap(err, "[redisstore.Set]")
}

func (s *Store) Clear(ctx context.Context, slots ...session.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	keys := make([]string, 0, len(slots))
	for _, slot := range slots {
		keys = append(keys, s.key(slot))
	}
	return errors.Wrap(s.rdb.Del(ctx, keys...).Err(), "[redisstore.Clear]")
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
