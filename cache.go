package fontcache

import (
	"github.com/unkn0wn-root/fontcache/internal/util"
)

// Options tune a FontCache. The zero value is a zero-capacity cache
// with logging and hooks disabled.
type Options struct {
	MaxEntries int    // fixed capacity; 0 => compute on every call, retain nothing
	Logger     Logger // if nil, NopLogger is used
	Hooks      Hooks  // if nil, NopHooks is used
}

type entry[T any] struct {
	id    CacheKey
	epoch uint64 // cache epoch when last hit or installed
	data  T
}

// FontCache maps fonts to lazily computed data of type T, holding at most
// a fixed number of entries.
//
// Every miss advances the cache epoch by one; hits stamp the entry with the
// current epoch without advancing it. When full, a miss overwrites the first
// entry with the strictly lowest epoch, or the first entry when none is
// strictly older than the current epoch. This approximates LRU: entries
// touched within the same epoch are indistinguishable.
//
// FontCache is not safe for concurrent use. Give each goroutine its own
// cache or serialize calls externally.
type FontCache[T any] struct {
	entries    []entry[T]
	maxEntries int
	epoch      uint64

	// holds the last value computed by a zero-capacity cache
	scratch T

	stats Stats
	log   Logger
	hooks Hooks
}

// New returns an empty cache holding up to maxEntries entries.
// It panics if maxEntries is negative.
func New[T any](maxEntries int) *FontCache[T] {
	c, err := NewWithOptions[T](Options{MaxEntries: maxEntries})
	if err != nil {
		panic(err)
	}
	return c
}

// NewWithOptions is like New but takes the full option set and reports
// invalid capacities as ErrNegativeCapacity.
func NewWithOptions[T any](opts Options) (*FontCache[T], error) {
	if opts.MaxEntries < 0 {
		return nil, ErrNegativeCapacity
	}
	// entries grow on misses; capacity is a bound, not a reservation
	return &FontCache[T]{
		maxEntries: opts.MaxEntries,
		log:        util.Coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:      util.Coalesce[Hooks](opts.Hooks, NopHooks{}),
	}, nil
}

// Get returns the key of font and a pointer to its cached data, calling f
// to compute the data on a miss. f runs at most once per call.
//
// The returned pointer aliases cache storage and is only valid until the
// next call to Get.
func (c *FontCache[T]) Get(font FontRef, f func(FontRef) T) (CacheKey, *T) {
	id := font.Key()
	index, found := c.find(id)
	if found {
		e := &c.entries[index]
		e.epoch = c.epoch
		c.stats.Hits++
		return id, &e.data
	}

	c.epoch++
	c.stats.Misses++
	data := f(font)

	switch {
	case c.maxEntries == 0:
		// nothing to index into; hand out the scratch slot instead
		c.scratch = data
		c.stats.Bypassed++
		c.hooks.Bypassed(id)
		c.log.Debug("zero-capacity cache bypassed", Fields{"key": id.Value(), "epoch": c.epoch})
		return id, &c.scratch
	case index == len(c.entries):
		c.entries = append(c.entries, entry[T]{id: id, epoch: c.epoch, data: data})
		return id, &c.entries[index].data
	default:
		e := &c.entries[index]
		victim := e.id
		e.id = id
		e.epoch = c.epoch
		e.data = data
		c.stats.Evictions++
		c.hooks.Evicted(victim, id)
		c.log.Debug("evicted entry", Fields{"victim": victim.Value(), "key": id.Value(), "slot": index, "epoch": c.epoch})
		return id, &e.data
	}
}

// find scans for id. When absent it returns the slot a miss should fill:
// the next free slot, or the eviction candidate once the cache is full.
func (c *FontCache[T]) find(id CacheKey) (int, bool) {
	lowest := 0
	lowestEpoch := c.epoch
	for i := range c.entries {
		e := &c.entries[i]
		if e.id == id {
			return i, true
		}
		if e.epoch < lowestEpoch {
			lowestEpoch = e.epoch
			lowest = i
		}
	}
	if len(c.entries) < c.maxEntries {
		return len(c.entries), false
	}
	return lowest, false
}

// Contains reports whether key is cached. Unlike Get it never touches
// entry epochs.
func (c *FontCache[T]) Contains(key CacheKey) bool {
	for i := range c.entries {
		if c.entries[i].id == key {
			return true
		}
	}
	return false
}

// Len returns the number of entries currently held.
func (c *FontCache[T]) Len() int { return len(c.entries) }

// Cap returns the fixed capacity.
func (c *FontCache[T]) Cap() int { return c.maxEntries }

// Epoch returns the miss counter used to age entries.
func (c *FontCache[T]) Epoch() uint64 { return c.epoch }

// Stats returns a snapshot of the cache counters.
func (c *FontCache[T]) Stats() Stats { return c.stats }
