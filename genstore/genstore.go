// Package genstore keeps the per-font generations that guard tier writes.
//
// Every tier key ("font:<kind>:<digest>") has a generation, 0 until its
// first invalidation. A computed artifact is stored together with the
// generation read before computing; once Invalidate bumps it, readers treat
// the stored frame as stale and in-flight writers skip their write.
package genstore

import "context"

// GenStore is where generations live: LocalGenStore for a single process,
// RedisGenStore when several processes share one provider.
type GenStore interface {
	// Snapshot returns the key's generation; unknown keys are 0.
	Snapshot(ctx context.Context, storageKey string) (uint64, error)
	// SnapshotMany is Snapshot for a whole font collection. The result
	// has one entry per requested key.
	SnapshotMany(ctx context.Context, storageKeys []string) (map[string]uint64, error)
	// Bump increments the key's generation and returns the new value.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	Close(ctx context.Context) error
}
