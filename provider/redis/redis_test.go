package redis

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/fontcache/provider"
)

func newTestStore(t *testing.T, cfg Config) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	if cfg.Client == nil {
		rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		cfg.Client = rdb
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, mr
}

const key = "font:metrics:000102030405060708090a0b0c0d0e0f"

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("err = %v, want ErrNilClient", err)
	}
}

func TestMissThenRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, Config{Prefix: "svc:"})

	if frame, ok, err := s.Get(ctx, key); ok || err != nil || frame != nil {
		t.Fatalf("miss expected, got %q ok=%v err=%v", frame, ok, err)
	}

	frame := []byte{'F', 'N', 'T', 'C', 1, 1, 0, 0xff}
	if ok, err := s.Put(ctx, pr.Entry{Key: key, Frame: frame, TTL: time.Hour}); !ok || err != nil {
		t.Fatalf("Put ok=%v err=%v", ok, err)
	}
	got, ok, err := s.Get(ctx, key)
	if !ok || err != nil || !bytes.Equal(got, frame) {
		t.Fatalf("Get = %x ok=%v err=%v", got, ok, err)
	}
	if !mr.Exists("svc:" + key) {
		t.Fatalf("prefix not applied")
	}

	if err := s.Del(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, key); ok {
		t.Fatalf("entry survived Del")
	}
	if err := s.Del(ctx, key); err != nil {
		t.Fatalf("Del missing: %v", err)
	}
}

func TestPutSetsExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, Config{})

	if _, err := s.Put(ctx, pr.Entry{Key: key, Frame: []byte("x"), TTL: 90 * time.Second}); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL(key); ttl != 90*time.Second {
		t.Fatalf("TTL = %v, want 90s", ttl)
	}
	mr.FastForward(91 * time.Second)
	if _, ok, _ := s.Get(ctx, key); ok {
		t.Fatalf("entry outlived its TTL")
	}
}

func TestNegativeTTLStoresWithoutExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, Config{})

	for _, ttl := range []time.Duration{-1, -time.Minute} {
		if ok, err := s.Put(ctx, pr.Entry{Key: key, Frame: []byte("x"), TTL: ttl}); !ok || err != nil {
			t.Fatalf("Put(ttl=%v) ok=%v err=%v", ttl, ok, err)
		}
		if !mr.Exists(key) || mr.TTL(key) != 0 {
			t.Fatalf("ttl=%v: exists=%v TTL=%v, want persistent key", ttl, mr.Exists(key), mr.TTL(key))
		}
	}
}

func TestGetManyMarksMisses(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, Config{Prefix: "svc:"})
	other := "font:metrics:ffffffffffffffffffffffffffffffff"

	if _, err := s.Put(ctx, pr.Entry{Key: other, Frame: []byte("b")}); err != nil {
		t.Fatal(err)
	}
	frames, err := s.GetMany(ctx, []string{key, other})
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 || frames[0] != nil || string(frames[1]) != "b" {
		t.Fatalf("GetMany = %q", frames)
	}
	if frames, err := s.GetMany(ctx, nil); err != nil || frames != nil {
		t.Fatalf("empty GetMany = %q, %v", frames, err)
	}
}

func TestServerErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, Config{})
	mr.SetError("ERR server unavailable")

	if _, ok, err := s.Get(ctx, key); ok || err == nil {
		t.Fatalf("Get ok=%v err=%v, want error", ok, err)
	}
	if ok, err := s.Put(ctx, pr.Entry{Key: key, Frame: []byte("x")}); ok || err == nil {
		t.Fatalf("Put ok=%v err=%v, want error", ok, err)
	}
}

func TestCloseRespectsOwnership(t *testing.T) {
	ctx := context.Background()
	shared, mr := newTestStore(t, Config{})
	if err := shared.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := shared.rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("shared client closed by provider: %v", err)
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	owned, err := New(Config{Client: rdb, OwnsClient: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := owned.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := owned.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := rdb.Ping(ctx).Err(); !errors.Is(err, goredis.ErrClosed) {
		t.Fatalf("owned client still open: %v", err)
	}
}
