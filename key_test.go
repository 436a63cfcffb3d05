package fontcache

import (
	"sync"
	"testing"
)

func TestCacheKeyStrictlyIncreasing(t *testing.T) {
	prev := NewCacheKey()
	if prev.IsZero() {
		t.Fatalf("NewCacheKey returned the zero sentinel")
	}
	for i := 0; i < 1000; i++ {
		k := NewCacheKey()
		if k.Value() <= prev.Value() {
			t.Fatalf("key %d not greater than previous %d", k.Value(), prev.Value())
		}
		prev = k
	}
}

func TestCacheKeyZeroValue(t *testing.T) {
	var k CacheKey
	if !k.IsZero() || k.Value() != 0 {
		t.Fatalf("zero CacheKey should be the unset sentinel, got %v", k)
	}
	if got := NewCacheKey().String(); got == k.String() {
		t.Fatalf("fresh key formats like the sentinel: %q", got)
	}
}

func TestCacheKeyConcurrentUnique(t *testing.T) {
	const (
		workers = 8
		perG    = 2000
	)
	out := make([][]CacheKey, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			ks := make([]CacheKey, perG)
			for i := range ks {
				ks[i] = NewCacheKey()
			}
			out[w] = ks
		}(w)
	}
	wg.Wait()

	seen := make(map[CacheKey]struct{}, workers*perG)
	for w, ks := range out {
		for i, k := range ks {
			if k.IsZero() {
				t.Fatalf("worker %d issued zero key", w)
			}
			if i > 0 && k.Value() <= ks[i-1].Value() {
				t.Fatalf("worker %d: keys not increasing at %d: %d <= %d", w, i, k.Value(), ks[i-1].Value())
			}
			seen[k] = struct{}{}
		}
	}
	if len(seen) != workers*perG {
		t.Fatalf("collisions: got %d distinct keys, want %d", len(seen), workers*perG)
	}
}

func TestFontRefCopiesShareKey(t *testing.T) {
	data := []byte("font bytes")
	a := NewFontRef(data, 12)
	b := a
	if a.Key() != b.Key() {
		t.Fatalf("copy changed key: %v vs %v", a.Key(), b.Key())
	}
	if c := NewFontRef(data, 12); c.Key() == a.Key() {
		t.Fatalf("distinct refs over the same bytes must get distinct keys")
	}
	if a.Offset() != 12 || string(a.Data()) != "font bytes" {
		t.Fatalf("accessors: offset=%d data=%q", a.Offset(), a.Data())
	}
}
