// Package bigcache keeps tier frames in an allegro/bigcache instance, an
// in-process store sized in megabytes with a single life window for every
// entry.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"
	"go.uber.org/atomic"

	pr "github.com/unkn0wn-root/fontcache/provider"
)

type Config struct {
	// LifeWindow bounds every entry; per-entry TTLs shorter than it are
	// not honoured. Required.
	LifeWindow time.Duration
	// CapacityMB caps the store; 0 = unbounded.
	CapacityMB int
	// Fonts is the expected number of font/kind pairs; 0 = bigcache default.
	Fonts int
	// AvgFrameBytes sizes the initial shard buffers; 0 = bigcache default.
	AvgFrameBytes int
	// Shards must be a power of two; 0 = bigcache default.
	Shards int
}

// Removals counts entries that left the store, split by cause.
type Removals struct {
	Expired int64 // older than LifeWindow
	NoSpace int64 // dropped to make room under CapacityMB
	Deleted int64 // Del or tier self-heal
}

type Store struct {
	c        *bc.BigCache
	maxFrame int

	expired atomic.Int64
	noSpace atomic.Int64
	deleted atomic.Int64
}

var _ pr.Provider = (*Store)(nil)

var ErrNoLifeWindow = errors.New("bigcache provider: LifeWindow is required")

// bigcache entry header plus the queue's length prefix, rounded up
const entryOverhead = 32

func New(cfg Config) (*Store, error) {
	if cfg.LifeWindow <= 0 {
		return nil, ErrNoLifeWindow
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.CleanWindow = cfg.LifeWindow / 2
	conf.Verbose = false
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.Fonts > 0 {
		conf.MaxEntriesInWindow = cfg.Fonts
	}
	if cfg.AvgFrameBytes > 0 {
		conf.MaxEntrySize = cfg.AvgFrameBytes
	}
	s := &Store{}
	if cfg.CapacityMB > 0 {
		conf.HardMaxCacheSize = cfg.CapacityMB
		// bigcache fails Set for entries that do not fit one shard
		s.maxFrame = cfg.CapacityMB << 20 / conf.Shards
	}
	conf.OnRemoveWithReason = func(_ string, _ []byte, reason bc.RemoveReason) {
		switch reason {
		case bc.Expired:
			s.expired.Inc()
		case bc.NoSpace:
			s.noSpace.Inc()
		case bc.Deleted:
			s.deleted.Inc()
		}
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	s.c = c
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	frame, err := s.c.Get(key)
	switch {
	case errors.Is(err, bc.ErrEntryNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return frame, true, nil
}

// Put ignores Cost and TTL. Frames too large for a shard are declined
// with stored=false.
func (s *Store) Put(_ context.Context, e pr.Entry) (bool, error) {
	if s.maxFrame > 0 && len(e.Key)+len(e.Frame)+entryOverhead > s.maxFrame {
		return false, nil
	}
	if err := s.c.Set(e.Key, e.Frame); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Del(_ context.Context, key string) error {
	if err := s.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

// Len returns the number of stored frames.
func (s *Store) Len() int { return s.c.Len() }

func (s *Store) Removals() Removals {
	return Removals{Expired: s.expired.Load(), NoSpace: s.noSpace.Load(), Deleted: s.deleted.Load()}
}

func (s *Store) Close(context.Context) error { return s.c.Close() }
