package fontcache

// Hooks receives high-signal cache events.
// Implementations MUST be cheap and non-blocking: FontCache calls them
// inline from Get. Wrap slow sinks with hooks/async.
type Hooks interface {
	// A full cache overwrote victim's entry to store replacement.
	Evicted(victim, replacement CacheKey)

	// A zero-capacity cache computed a value without retaining it.
	Bypassed(key CacheKey)

	// The shared tier deleted an entry on read.
	// reason ∈ {"corrupt", "gen_mismatch", "value_decode"}
	TierSelfHeal(storageKey, reason string)

	// The tier's provider returned ok=false on Set (backpressure/eviction).
	TierSetRejected(storageKey string)

	// GenStore failures seen by the tier.
	GenSnapshotError(storageKey string, err error)
	GenBumpError(storageKey string, err error)

	// Both gen bump and delete failed during Invalidate (likely backend outage).
	InvalidateOutage(storageKey string, bumpErr, delErr error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Evicted(CacheKey, CacheKey)            {}
func (NopHooks) Bypassed(CacheKey)                     {}
func (NopHooks) TierSelfHeal(string, string)           {}
func (NopHooks) TierSetRejected(string)                {}
func (NopHooks) GenSnapshotError(string, error)        {}
func (NopHooks) GenBumpError(string, error)            {}
func (NopHooks) InvalidateOutage(string, error, error) {}
