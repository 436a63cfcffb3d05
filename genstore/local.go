package genstore

import (
	"context"
	"sync"
	"time"
)

// LocalOptions configure NewLocalGenStore.
type LocalOptions struct {
	// Retention is how long a generation survives without a Bump. A pruned
	// key reads as 0 again, so any frame it guarded must be gone by then:
	// keep Retention above the tier's TTL. 0 keeps generations forever.
	Retention time.Duration
	// SweepEvery is the pruning period; 0 => Retention/4.
	SweepEvery time.Duration
	// Now replaces time.Now in tests.
	Now func() time.Time
}

type localGen struct {
	gen    uint64
	bumped time.Time
}

// LocalGenStore keeps generations in process memory.
type LocalGenStore struct {
	mu   sync.RWMutex
	gens map[string]localGen
	now  func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

var _ GenStore = (*LocalGenStore)(nil)

func NewLocalGenStore(opts LocalOptions) *LocalGenStore {
	s := &LocalGenStore{gens: make(map[string]localGen), now: opts.Now}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.Retention <= 0 {
		return s
	}
	every := opts.SweepEvery
	if every <= 0 {
		every = opts.Retention / 4
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.sweep(every, opts.Retention)
	return s
}

func (s *LocalGenStore) sweep(every, retention time.Duration) {
	defer close(s.done)
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			s.Prune(retention)
		case <-s.stop:
			return
		}
	}
}

func (s *LocalGenStore) Snapshot(_ context.Context, storageKey string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gens[storageKey].gen, nil
}

func (s *LocalGenStore) SnapshotMany(_ context.Context, storageKeys []string) (map[string]uint64, error) {
	gens := make(map[string]uint64, len(storageKeys))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range storageKeys {
		gens[k] = s.gens[k].gen
	}
	return gens, nil
}

func (s *LocalGenStore) Bump(_ context.Context, storageKey string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := localGen{gen: s.gens[storageKey].gen + 1, bumped: s.now()}
	s.gens[storageKey] = g
	return g.gen, nil
}

// Prune forgets generations not bumped within retention and reports how
// many it dropped. The sweep loop calls it; it is exported for tests and
// for callers running their own schedule.
func (s *LocalGenStore) Prune(retention time.Duration) int {
	if retention <= 0 {
		return 0
	}
	cutoff := s.now().Add(-retention)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, g := range s.gens {
		if g.bumped.Before(cutoff) {
			delete(s.gens, k)
			n++
		}
	}
	return n
}

// Len returns the number of fonts with a non-zero generation.
func (s *LocalGenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gens)
}

// Close stops the sweep loop and waits for it. Safe to call more than once.
func (s *LocalGenStore) Close(context.Context) error {
	s.once.Do(func() {
		if s.stop != nil {
			close(s.stop)
			<-s.done
		}
	})
	return nil
}
