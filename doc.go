// Package fontcache implements a small fixed-capacity cache of data derived
// from fonts (metrics, character maps, shaping tables, ...), keyed by a
// process-unique CacheKey assigned when a FontRef is created.
//
// Components:
//   - CacheKey: unique, strictly increasing identifier. Safe for concurrent use.
//   - FontCache[T]: bounded, single-owner cache with compute-on-miss and
//     epoch based eviction.
//   - tier.Tier[T]: optional shared store (bigcache, ristretto, Redis) that
//     plugs in as the compute function so derived data survives restarts.
//
// Usage:
//
//	font := fontcache.NewFontRef(data, 0)
//	metrics := fontcache.New[Metrics](16)
//	_, m := metrics.Get(font, parseMetrics) // parseMetrics runs once
//	_, m = metrics.Get(font, parseMetrics)  // hit
//
// With a shared tier:
//
//	shared, _ := tier.New[Metrics](tier.Options[Metrics]{
//	    Kind:     "metrics",
//	    Provider: provider,
//	    Codec:    codec.Msgpack[Metrics]{},
//	})
//	_, m := metrics.Get(font, shared.Compute(ctx, parseMetrics))
//
// A font collection can be read from the tier in one round trip and used
// to warm a cache:
//
//	hits, _ := shared.LoadMany(ctx, faces)
//	for _, f := range faces {
//	    metrics.Get(f, func(f fontcache.FontRef) Metrics {
//	        if m, ok := hits[f.Key()]; ok {
//	            return m
//	        }
//	        return parseMetrics(f)
//	    })
//	}
package fontcache
