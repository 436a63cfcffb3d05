package tier

import (
	"time"

	"github.com/unkn0wn-root/fontcache"
	c "github.com/unkn0wn-root/fontcache/codec"
	gen "github.com/unkn0wn-root/fontcache/genstore"
	pr "github.com/unkn0wn-root/fontcache/provider"
)

const (
	defaultTTL          = 24 * time.Hour
	defaultGenRetention = 30 * 24 * time.Hour
)

// CostFunc prices one stored frame for cost-aware providers.
type CostFunc func(font fontcache.FontRef, frame []byte) int64

// CostFrameBytes charges the frame size. Pair it with a ristretto provider
// whose MaxCost is a byte budget.
func CostFrameBytes(_ fontcache.FontRef, frame []byte) int64 { return int64(len(frame)) }

// CostSourceBytes charges the size of the font the artifact was derived
// from, so a budget favours keeping artifacts of large, expensive to parse
// fonts.
func CostSourceBytes(font fontcache.FontRef, _ []byte) int64 { return int64(len(font.Data())) }

// TTLFunc picks a per-font entry lifetime; 0 falls back to Options.TTL.
type TTLFunc func(font fontcache.FontRef) time.Duration

// Options configure a Tier.
// Only Kind, Provider and Codec are required.
type Options[T any] struct {
	// Required
	Kind     string // artifact kind, e.g. "metrics", "charmap"; isolates kinds sharing a provider
	Provider pr.Provider
	Codec    c.Codec[T]

	Logger       fontcache.Logger // if nil, NopLogger is used
	Hooks        fontcache.Hooks  // if nil, NopHooks is used
	TTL          time.Duration    // 0 => 24h
	TTLFor       TTLFunc          // optional per-font override of TTL
	Cost         CostFunc         // nil => every frame costs 1
	GenStore     gen.GenStore     // nil => LocalGenStore pruned after GenRetention
	GenRetention time.Duration    // local GenStore only; 0 => 30d, raised to TTL if shorter
	Disabled     bool             // default false (enabled)
}
