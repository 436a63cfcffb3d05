// Package redis shares tier frames between processes through Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/fontcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

type Config struct {
	Client goredis.UniversalClient
	// Prefix is prepended to every tier key, e.g. "render-svc:" when
	// several services share one Redis.
	Prefix string
	// OwnsClient makes Close close Client. Leave false when the client is
	// shared, e.g. with genstore.RedisGenStore.
	OwnsClient bool
}

// Store keeps frames as plain Redis strings with per-entry expiry.
type Store struct {
	rdb    goredis.UniversalClient
	prefix string
	owns   bool
}

var (
	_ pr.Provider    = (*Store)(nil)
	_ pr.MultiGetter = (*Store)(nil)
)

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Store{rdb: cfg.Client, prefix: cfg.Prefix, owns: cfg.OwnsClient}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	frame, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return frame, true, nil
}

// GetMany reads a font collection with a single MGET.
func (s *Store) GetMany(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	vals, err := s.rdb.MGet(ctx, full...).Result()
	if err != nil {
		return nil, err
	}
	frames := make([][]byte, len(keys))
	for i, v := range vals {
		switch v := v.(type) {
		case nil:
		case string:
			frames[i] = []byte(v)
		default:
			return nil, fmt.Errorf("redis provider: unexpected MGET reply %T for %s", v, keys[i])
		}
	}
	return frames, nil
}

// Put ignores Cost; Redis memory policy is configured server-side.
func (s *Store) Put(ctx context.Context, e pr.Entry) (bool, error) {
	ttl := e.TTL
	if ttl < 0 {
		// go-redis reads -1 as KEEPTTL
		ttl = 0
	}
	if err := s.rdb.Set(ctx, s.prefix+e.Key, e.Frame, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

// Close closes the client only with Config.OwnsClient. Repeated calls are no-ops.
func (s *Store) Close(context.Context) error {
	if !s.owns {
		return nil
	}
	if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
		return err
	}
	return nil
}
