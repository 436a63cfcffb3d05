// Package sloghooks reports fontcache.Hooks events through log/slog.
//
// Tier keys are logged as their artifact kind plus a redacted digest, so
// logs can be grouped by kind without revealing which font file was used.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/unkn0wn-root/fontcache"
	pr "github.com/unkn0wn-root/fontcache/provider"
)

type Options struct {
	// Sampling for the chatty events; 0 and 1 log every event.
	EvictEvery    uint64
	SelfHealEvery uint64
	// Redact replaces a tier key in logs. Defaults to a SHA-256 prefix.
	Redact func(storageKey string) string
}

type Hooks struct {
	l      *slog.Logger
	redact func(string) string
	evict  sampler
	heal   sampler
}

var _ fontcache.Hooks = (*Hooks)(nil)

// New returns hooks writing to l. A nil l disables them.
func New(l *slog.Logger, opts Options) *Hooks {
	h := &Hooks{
		l:      l,
		redact: opts.Redact,
		evict:  sampler{every: opts.EvictEvery},
		heal:   sampler{every: opts.SelfHealEvery},
	}
	if h.redact == nil {
		h.redact = digestPrefix
	}
	return h
}

func digestPrefix(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

type sampler struct {
	every uint64
	n     atomic.Uint64
}

func (s *sampler) take() bool {
	return s.every <= 1 || s.n.Add(1)%s.every == 0
}

// font returns the attributes identifying a tier key.
func (h *Hooks) font(storageKey string) slog.Attr {
	if prefix, _, ok := pr.Digest(storageKey); ok {
		return slog.Group("font",
			"kind", strings.TrimPrefix(prefix, "font:"),
			"key", h.redact(storageKey))
	}
	return slog.Group("font", "key", h.redact(storageKey))
}

func (h *Hooks) Evicted(victim, replacement fontcache.CacheKey) {
	if h.l == nil || !h.evict.take() {
		return
	}
	h.l.Debug("fontcache.evicted", "victim", victim.String(), "replacement", replacement.String())
}

func (h *Hooks) Bypassed(key fontcache.CacheKey) {
	if h.l == nil {
		return
	}
	h.l.Debug("fontcache.bypassed", "key", key.String())
}

func (h *Hooks) TierSelfHeal(storageKey, reason string) {
	if h.l == nil || !h.heal.take() {
		return
	}
	h.l.Debug("fontcache.tier_self_heal", h.font(storageKey), slog.String("reason", reason))
}

func (h *Hooks) TierSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("fontcache.tier_set_rejected", h.font(storageKey))
}

func (h *Hooks) GenSnapshotError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("fontcache.gen_snapshot_error", h.font(storageKey), slog.Any("err", err))
}

func (h *Hooks) GenBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("fontcache.gen_bump_error", h.font(storageKey), slog.Any("err", err))
}

func (h *Hooks) InvalidateOutage(storageKey string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("fontcache.invalidate_outage", h.font(storageKey),
		slog.Any("bump_err", bumpErr), slog.Any("del_err", delErr))
}
