package genstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNilClient = errors.New("genstore: nil redis client")

// RedisOptions configure NewRedisGenStore.
type RedisOptions struct {
	Client redis.UniversalClient
	// Prefix is prepended to tier keys; "gen:" when empty. Generation
	// keys for "font:metrics:<digest>" become "gen:font:metrics:<digest>".
	Prefix string
	// TTL expires a generation this long after its last Bump; 0 keeps it
	// forever. An expired generation reads as 0, so keep TTL above the
	// tier's entry TTL.
	TTL time.Duration
	// OwnsClient makes Close close Client. Leave false when the client is
	// shared, e.g. with provider/redis.
	OwnsClient bool
}

// RedisGenStore shares generations between processes, so an Invalidate in
// one replica turns the frame every other replica wrote into a stale one.
type RedisGenStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	owns   bool
}

var _ GenStore = (*RedisGenStore)(nil)

func NewRedisGenStore(opts RedisOptions) (*RedisGenStore, error) {
	if opts.Client == nil {
		return nil, ErrNilClient
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "gen:"
	}
	return &RedisGenStore{rdb: opts.Client, prefix: prefix, ttl: opts.TTL, owns: opts.OwnsClient}, nil
}

func (s *RedisGenStore) Snapshot(ctx context.Context, storageKey string) (uint64, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+storageKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return parseGen(storageKey, raw)
}

// SnapshotMany reads the whole collection with one MGET.
func (s *RedisGenStore) SnapshotMany(ctx context.Context, storageKeys []string) (map[string]uint64, error) {
	gens := make(map[string]uint64, len(storageKeys))
	if len(storageKeys) == 0 {
		return gens, nil
	}
	keys := make([]string, len(storageKeys))
	for i, k := range storageKeys {
		keys[i] = s.prefix + k
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		k := storageKeys[i]
		raw, isString := v.(string)
		if v == nil {
			gens[k] = 0
			continue
		}
		if !isString {
			return nil, fmt.Errorf("genstore: unexpected MGET reply %T for %s", v, k)
		}
		g, err := parseGen(k, raw)
		if err != nil {
			return nil, err
		}
		gens[k] = g
	}
	return gens, nil
}

// Bump runs INCR, and with a TTL also EXPIRE, in one MULTI/EXEC so a
// generation never exists without its expiry.
func (s *RedisGenStore) Bump(ctx context.Context, storageKey string) (uint64, error) {
	k := s.prefix + storageKey
	if s.ttl <= 0 {
		return s.rdb.Incr(ctx, k).Uint64()
	}
	var incr *redis.IntCmd
	if _, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, s.ttl)
		return nil
	}); err != nil {
		return 0, err
	}
	return incr.Uint64()
}

// Close closes the client only with RedisOptions.OwnsClient.
func (s *RedisGenStore) Close(context.Context) error {
	if !s.owns {
		return nil
	}
	if err := s.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}

func parseGen(storageKey, raw string) (uint64, error) {
	g, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("genstore: generation of %s: %w", storageKey, err)
	}
	return g, nil
}
