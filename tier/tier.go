// Package tier implements a shared store for data derived from fonts.
//
// A FontCache keeps a handful of artifacts per process; a Tier keeps them in
// a provider (bigcache, ristretto, Redis) keyed by font content, so a fresh
// process or another replica can skip the expensive computation. Plug it in
// as the compute function:
//
//	_, m := cache.Get(font, shared.Compute(ctx, parseMetrics))
//
// Writes are guarded by per-key generations: Compute snapshots the generation
// before running the computation and the write lands only if no Invalidate
// happened in between. Reads validate the frame and generation and delete
// anything corrupt or stale.
package tier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unkn0wn-root/fontcache"
	c "github.com/unkn0wn-root/fontcache/codec"
	gen "github.com/unkn0wn-root/fontcache/genstore"
	"github.com/unkn0wn-root/fontcache/internal/util"
	"github.com/unkn0wn-root/fontcache/internal/wire"
	pr "github.com/unkn0wn-root/fontcache/provider"
)

// Tier is safe for concurrent use.
type Tier[T any] struct {
	kind     string
	provider pr.Provider
	codec    c.Codec[T]
	log      fontcache.Logger
	hooks    fontcache.Hooks
	enabled  bool
	ttl      time.Duration
	ttlFor   TTLFunc
	cost     CostFunc
	gen      gen.GenStore
}

func New[T any](opts Options[T]) (*Tier[T], error) {
	switch {
	case opts.Provider == nil:
		return nil, errors.New("tier: provider is required")
	case opts.Codec == nil:
		return nil, errors.New("tier: codec is required")
	case opts.Kind == "" || strings.ContainsRune(opts.Kind, ':'):
		return nil, fmt.Errorf("tier: invalid artifact kind %q", opts.Kind)
	}

	t := &Tier[T]{
		kind:     opts.Kind,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
		ttlFor:   opts.TTLFor,
		cost:     opts.Cost,
		gen:      opts.GenStore,
	}
	t.log = util.Coalesce[fontcache.Logger](opts.Logger, fontcache.NopLogger{})
	t.hooks = util.Coalesce[fontcache.Hooks](opts.Hooks, fontcache.NopHooks{})
	t.ttl = util.Coalesce(opts.TTL, defaultTTL)
	if t.cost == nil {
		t.cost = func(fontcache.FontRef, []byte) int64 { return 1 }
	}
	if t.gen == nil {
		// a generation must outlive the frames it guards
		retention := max(util.Coalesce(opts.GenRetention, defaultGenRetention), t.ttl)
		t.gen = gen.NewLocalGenStore(gen.LocalOptions{Retention: retention})
	}
	return t, nil
}

func (t *Tier[T]) Enabled() bool { return t.enabled }

// Kind returns the artifact kind the tier stores.
func (t *Tier[T]) Kind() string { return t.kind }

// Close closes the GenStore and then the Provider, returning both errors.
func (t *Tier[T]) Close(ctx context.Context) error {
	genErr := t.gen.Close(ctx)
	if genErr != nil {
		t.log.Warn("gen store close failed", fontcache.Fields{"kind": t.kind, "err": genErr})
	}
	return errors.Join(genErr, t.provider.Close(ctx))
}

// StorageKey returns the provider key used for font.
func (t *Tier[T]) StorageKey(font fontcache.FontRef) string {
	return util.ContentKey("font:"+t.kind, font.Data(), font.Offset())
}

// Load returns the stored value for font. Provider errors are returned;
// corrupt, stale or undecodable entries are deleted and reported as a miss.
func (t *Tier[T]) Load(ctx context.Context, font fontcache.FontRef) (T, bool, error) {
	var zero T
	if !t.enabled {
		return zero, false, nil
	}
	k := t.StorageKey(font)
	frame, ok, err := t.provider.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}
	v, ok := t.open(ctx, k, frame, t.snapshotGen(ctx, k))
	return v, ok, nil
}

// LoadMany is Load for a font collection, e.g. every face of a TTC or a
// fallback chain, reading all generations in one GenStore call and all
// frames in one provider call when the provider is a MultiGetter. Only
// hits are returned. Fonts sharing content share a result.
func (t *Tier[T]) LoadMany(ctx context.Context, fonts []fontcache.FontRef) (map[fontcache.CacheKey]T, error) {
	hits := make(map[fontcache.CacheKey]T, len(fonts))
	if !t.enabled || len(fonts) == 0 {
		return hits, nil
	}
	keys := make([]string, len(fonts))
	for i, f := range fonts {
		keys[i] = t.StorageKey(f)
	}

	gens, err := t.gen.SnapshotMany(ctx, keys)
	if err != nil {
		// read everything as generation 0, like snapshotGen
		for _, k := range keys {
			t.hooks.GenSnapshotError(k, err)
		}
		t.log.Warn("gen snapshot error", fontcache.Fields{"kind": t.kind, "fonts": len(keys), "err": err})
		gens = nil
	}

	frames, err := t.getMany(ctx, keys)
	if err != nil {
		return nil, err
	}
	for i, frame := range frames {
		if frame == nil {
			continue
		}
		if v, ok := t.open(ctx, keys[i], frame, gens[keys[i]]); ok {
			hits[fonts[i].Key()] = v
		}
	}
	return hits, nil
}

func (t *Tier[T]) getMany(ctx context.Context, keys []string) ([][]byte, error) {
	if mg, ok := t.provider.(pr.MultiGetter); ok {
		return mg.GetMany(ctx, keys)
	}
	frames := make([][]byte, len(keys))
	for i, k := range keys {
		frame, ok, err := t.provider.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			frames[i] = frame
		}
	}
	return frames, nil
}

// open validates frame against the current generation and decodes it,
// self-healing anything unusable.
func (t *Tier[T]) open(ctx context.Context, k string, frame []byte, curGen uint64) (T, bool) {
	var zero T
	g, payload, err := wire.DecodeSingle(frame)
	if err != nil {
		t.selfHeal(ctx, k, "corrupt")
		return zero, false
	}
	if g != curGen {
		t.selfHeal(ctx, k, "gen_mismatch")
		return zero, false
	}
	v, err := t.codec.Decode(payload)
	if err != nil {
		t.selfHeal(ctx, k, "value_decode")
		return zero, false
	}
	return v, true
}

// Store writes v for font iff the generation still equals observedGen.
// A moved generation skips the write without error. ttl 0 uses TTLFor,
// then Options.TTL.
func (t *Tier[T]) Store(ctx context.Context, font fontcache.FontRef, v T, observedGen uint64, ttl time.Duration) error {
	if !t.enabled {
		return nil
	}
	if ttl == 0 {
		ttl = t.ttlOf(font)
	}
	k := t.StorageKey(font)
	if cur := t.snapshotGen(ctx, k); cur != observedGen {
		t.log.Debug("store skipped (gen mismatch)", fontcache.Fields{"key": k, "obs": observedGen, "cur": cur})
		return nil
	}
	payload, err := t.codec.Encode(v)
	if err != nil {
		return err
	}
	frame := wire.EncodeSingle(observedGen, payload)
	ok, err := t.provider.Put(ctx, pr.Entry{Key: k, Frame: frame, Cost: t.cost(font, frame), TTL: ttl})
	if err != nil {
		return err
	}
	if !ok {
		t.hooks.TierSetRejected(k)
		t.log.Debug("store rejected by provider (pressure)", fontcache.Fields{"key": k})
	}
	return nil
}

// SnapshotGen returns the generation to pass to Store. Read it before
// computing the value.
func (t *Tier[T]) SnapshotGen(ctx context.Context, font fontcache.FontRef) uint64 {
	return t.snapshotGen(ctx, t.StorageKey(font))
}

// Invalidate bumps the font's generation, so in-flight Stores are skipped,
// and deletes the stored entry. Only a failure of both steps is returned.
func (t *Tier[T]) Invalidate(ctx context.Context, font fontcache.FontRef) error {
	if !t.enabled {
		return nil
	}
	k := t.StorageKey(font)
	newGen, bumpErr := t.gen.Bump(ctx, k)
	if bumpErr != nil {
		t.hooks.GenBumpError(k, bumpErr)
	}
	delErr := t.provider.Del(ctx, k)

	switch {
	case bumpErr != nil && delErr != nil:
		t.hooks.InvalidateOutage(k, bumpErr, delErr)
		t.log.Error("invalidate failed", fontcache.Fields{"key": k, "bump_err": bumpErr, "del_err": delErr})
		return &InvalidateError{Key: k, BumpErr: bumpErr, DelErr: delErr}
	case bumpErr != nil:
		// entry is gone but a racing Store may still land under the old gen
		t.log.Warn("invalidate: gen bump failed", fontcache.Fields{"key": k, "err": bumpErr})
	case delErr != nil:
		// bumped gen makes the entry stale; Load will self-heal it
		t.log.Warn("invalidate: delete failed", fontcache.Fields{"key": k, "err": delErr})
	default:
		t.log.Debug("invalidated font (bumped gen + deleted)", fontcache.Fields{"key": k, "newGen": newGen})
	}
	return nil
}

// Compute wraps f into a read-through compute function for FontCache.Get.
// The returned function serves stored values when possible, otherwise runs
// f and stores the result. Tier failures are logged, never surfaced:
// f runs whenever the tier cannot answer.
func (t *Tier[T]) Compute(ctx context.Context, f func(fontcache.FontRef) T) func(fontcache.FontRef) T {
	return func(font fontcache.FontRef) T {
		if !t.enabled {
			return f(font)
		}
		v, ok, err := t.Load(ctx, font)
		if err != nil {
			t.log.Warn("tier load failed", fontcache.Fields{"font": font.Key().Value(), "err": err})
		} else if ok {
			return v
		}
		obs := t.SnapshotGen(ctx, font)
		v = f(font)
		if err := t.Store(ctx, font, v, obs, 0); err != nil {
			t.log.Warn("tier store failed", fontcache.Fields{"font": font.Key().Value(), "err": err})
		}
		return v
	}
}

func (t *Tier[T]) ttlOf(font fontcache.FontRef) time.Duration {
	if t.ttlFor != nil {
		if d := t.ttlFor(font); d != 0 {
			return d
		}
	}
	return t.ttl
}

func (t *Tier[T]) snapshotGen(ctx context.Context, storageKey string) uint64 {
	g, err := t.gen.Snapshot(ctx, storageKey)
	if err != nil {
		// fall back to 0; entries stored under later generations then read as stale
		t.hooks.GenSnapshotError(storageKey, err)
		t.log.Warn("gen snapshot error", fontcache.Fields{"key": storageKey, "err": err})
		return 0
	}
	return g
}

func (t *Tier[T]) selfHeal(ctx context.Context, storageKey, reason string) {
	t.hooks.TierSelfHeal(storageKey, reason)
	if err := t.provider.Del(ctx, storageKey); err != nil {
		t.log.Warn("self-heal delete failed", fontcache.Fields{"key": storageKey, "reason": reason, "err": err})
	}
}
