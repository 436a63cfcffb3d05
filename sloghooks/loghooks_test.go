package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/fontcache"
)

const tierKey = "font:metrics:000102030405060708090a0b0c0d0e0f"

func newBufLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestEvictedSampling(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{EvictEvery: 3})
	for i := 0; i < 9; i++ {
		h.Evicted(fontcache.NewCacheKey(), fontcache.NewCacheKey())
	}
	if n := strings.Count(buf.String(), "fontcache.evicted"); n != 3 {
		t.Fatalf("logged %d evictions, want 3", n)
	}
	if !strings.Contains(buf.String(), "victim=font#") {
		t.Fatalf("cache keys not rendered: %q", buf.String())
	}
}

func TestTierKeysShowKindAndHideDigest(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{})

	h.TierSelfHeal(tierKey, "corrupt")
	h.InvalidateOutage(tierKey, errors.New("bump"), errors.New("del"))

	out := buf.String()
	if strings.Contains(out, "0a0b0c0d0e0f") {
		t.Fatalf("raw digest leaked: %q", out)
	}
	for _, want := range []string{"font.kind=metrics", "reason=corrupt", "level=ERROR", "bump_err=bump"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestForeignKeyHasNoKind(t *testing.T) {
	l, buf := newBufLogger()
	New(l, Options{}).TierSetRejected("session:42")
	if out := buf.String(); strings.Contains(out, "font.kind") || !strings.Contains(out, "font.key=") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCustomRedactAndNilLogger(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{Redact: func(string) string { return "<hidden>" }})
	h.TierSetRejected(tierKey)
	if !strings.Contains(buf.String(), "font.key=<hidden>") {
		t.Fatalf("custom redactor not used: %q", buf.String())
	}

	// nil logger must be a silent no-op
	New(nil, Options{}).GenBumpError(tierKey, errors.New("x"))
}
