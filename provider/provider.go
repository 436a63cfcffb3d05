// Package provider defines the byte stores a tier can sit on.
//
// Stores hold wire frames under "font:<kind>:<digest>" keys and must hand
// back exactly the bytes they were given. Anything else under that prefix
// fails frame validation in the tier and is deleted on read.
package provider

import (
	"context"
	"encoding/hex"
	"strings"
	"time"
)

// Entry is one framed artifact headed for a store.
type Entry struct {
	Key   string        // "font:<kind>:<digest>", see Digest
	Frame []byte        // wire frame, stored verbatim
	Cost  int64         // charged against cost-aware budgets
	TTL   time.Duration // <= 0 keeps the entry until the store evicts it
}

// Provider stores tier frames. Implementations must be safe for concurrent use.
type Provider interface {
	// Get returns (frame, true, nil) on a hit and (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores e. stored=false with a nil error means the store declined
	// the entry (budget, size) and the tier should treat it as uncached.
	Put(ctx context.Context, e Entry) (stored bool, err error)

	// Del removes key. A missing key is not an error.
	Del(ctx context.Context, key string) error

	Close(ctx context.Context) error
}

// MultiGetter is implemented by stores that can read a whole font
// collection in one round trip. frames[i] is nil when keys[i] missed.
type MultiGetter interface {
	GetMany(ctx context.Context, keys []string) (frames [][]byte, err error)
}

// Digest splits a tier key into its "font:<kind>" prefix and the 16-byte
// content digest. ok is false for keys the tier did not produce.
func Digest(key string) (prefix string, sum [16]byte, ok bool) {
	i := strings.LastIndexByte(key, ':')
	if i < 0 || !strings.HasPrefix(key, "font:") || len(key)-i-1 != 2*len(sum) {
		return "", sum, false
	}
	if _, err := hex.Decode(sum[:], []byte(key[i+1:])); err != nil {
		return "", sum, false
	}
	return key[:i], sum, true
}
