package fontcache

import (
	"strconv"
	"sync/atomic"
)

// keySeq holds the last issued key value. The first key is 1; 0 is never handed out.
var keySeq atomic.Uint64

// CacheKey uniquely identifies a font for the lifetime of the process.
// Keys are strictly increasing in allocation order. The zero CacheKey is the
// reserved "unset" value and is never returned by NewCacheKey.
type CacheKey struct{ v uint64 }

// NewCacheKey returns a fresh key. Safe for concurrent use.
func NewCacheKey() CacheKey {
	// only uniqueness matters, the counter orders no other memory
	return CacheKey{v: keySeq.Add(1)}
}

// Value returns the underlying value of the key.
func (k CacheKey) Value() uint64 { return k.v }

// IsZero reports whether k is the unset sentinel.
func (k CacheKey) IsZero() bool { return k.v == 0 }

func (k CacheKey) String() string { return "font#" + strconv.FormatUint(k.v, 10) }
