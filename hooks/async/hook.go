// Package asynchook moves fontcache.Hooks calls off the caller's goroutine.
//
// FontCache fires hooks inline from Get; wrap sinks that may block
// (network exporters, contended loggers):
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{EvictEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := fontcache.NewWithOptions[Metrics](fontcache.Options{
//	    MaxEntries: 32,
//	    Hooks:      hooks,
//	})
//
// Events are dropped when the queue is full; Dropped reports how many.
package asynchook

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/unkn0wn-root/fontcache"
)

type Hooks struct {
	inner   fontcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed against sends on a closed queue
	closed  bool
	dropped atomic.Uint64
}

var _ fontcache.Hooks = (*Hooks)(nil)

func New(inner fontcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close stops accepting events and waits for queued ones to run.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped returns the number of events discarded because the queue was full
// or the hooks were closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Inc()
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Inc()
	}
}

func (h *Hooks) Evicted(v, r fontcache.CacheKey)  { h.try(func() { h.inner.Evicted(v, r) }) }
func (h *Hooks) Bypassed(k fontcache.CacheKey)    { h.try(func() { h.inner.Bypassed(k) }) }
func (h *Hooks) TierSelfHeal(k, r string)         { h.try(func() { h.inner.TierSelfHeal(k, r) }) }
func (h *Hooks) TierSetRejected(k string)         { h.try(func() { h.inner.TierSetRejected(k) }) }
func (h *Hooks) GenBumpError(k string, err error) { h.try(func() { h.inner.GenBumpError(k, err) }) }
func (h *Hooks) GenSnapshotError(k string, err error) {
	h.try(func() { h.inner.GenSnapshotError(k, err) })
}
func (h *Hooks) InvalidateOutage(k string, be, de error) {
	h.try(func() { h.inner.InvalidateOutage(k, be, de) })
}
