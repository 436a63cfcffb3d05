package genstore

import (
	"context"
	"sync"
	"testing"
	"time"
)

// clock is a manual time source for LocalOptions.Now.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestLocalSnapshotManyIncludesAllAndZeroForMissing(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore(LocalOptions{})
	t.Cleanup(func() { _ = s.Close(ctx) })

	for i := 0; i < 2; i++ {
		if _, err := s.Bump(ctx, "font:metrics:b"); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.SnapshotMany(ctx, []string{"font:metrics:a", "font:metrics:b", "font:metrics:c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got["font:metrics:a"] != 0 || got["font:metrics:b"] != 2 || got["font:metrics:c"] != 0 {
		t.Fatalf("got=%v want a=0,b=2,c=0", got)
	}
}

func TestLocalBumpReturnsNewGen(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore(LocalOptions{})
	t.Cleanup(func() { _ = s.Close(ctx) })

	for want := uint64(1); want <= 3; want++ {
		g, err := s.Bump(ctx, "font:metrics:x")
		if err != nil || g != want {
			t.Fatalf("Bump = %d, %v; want %d", g, err, want)
		}
	}
	if g, _ := s.Snapshot(ctx, "font:metrics:x"); g != 3 {
		t.Fatalf("Snapshot = %d, want 3", g)
	}
}

func TestLocalPruneDropsOnlyStale(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(1700000000, 0)}
	s := NewLocalGenStore(LocalOptions{Now: clk.now})
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Bump(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	clk.advance(2 * time.Hour)
	if _, err := s.Bump(ctx, "fresh"); err != nil {
		t.Fatal(err)
	}

	if n := s.Prune(0); n != 0 {
		t.Fatalf("Prune(0) dropped %d keys", n)
	}
	if n := s.Prune(time.Hour); n != 1 {
		t.Fatalf("Prune dropped %d keys, want 1", n)
	}
	if g, _ := s.Snapshot(ctx, "old"); g != 0 {
		t.Fatalf("expected pruned -> 0, got %d", g)
	}
	if g, _ := s.Snapshot(ctx, "fresh"); g != 1 {
		t.Fatalf("fresh entry pruned, got %d", g)
	}
}

func TestLocalSweepLoopAndDoubleClose(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(1700000000, 0)}
	s := NewLocalGenStore(LocalOptions{Retention: time.Minute, SweepEvery: 5 * time.Millisecond, Now: clk.now})

	if _, err := s.Bump(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	clk.advance(2 * time.Minute)
	deadline := time.Now().Add(2 * time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sweep loop never pruned the key")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
