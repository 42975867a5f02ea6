package blink_test

import (
	"testing"
	"time"

	"queuedisplay/internal/blink"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestEntryExpiresFiveSecondsAfterInsertion(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	set := blink.New(0, blink.WithClock(clock.Now))
	if set.TTL() != 5*time.Second {
		t.Fatalf("expected default ttl, got %s", set.TTL())
	}

	set.Add("T1")
	clock.Advance(4999 * time.Millisecond)
	if !set.Contains("T1") {
		t.Fatal("expected T1 highlighted before 5s")
	}
	clock.Advance(time.Millisecond)
	if set.Contains("T1") {
		t.Fatal("expected T1 expired at 5000ms")
	}
}

func TestEntriesExpireIndependently(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	set := blink.New(5*time.Second, blink.WithClock(clock.Now))

	set.Add("A")
	clock.Advance(3 * time.Second)
	set.Add("B", "A")
	clock.Advance(2 * time.Second)

	active := set.Active()
	if len(active) != 1 || active[0] != "B" {
		t.Fatalf("expected only B active, got %v", active)
	}
	next, ok := set.NextExpiry()
	if !ok || !next.Equal(time.Unix(1008, 0)) {
		t.Fatalf("unexpected next expiry %v %v", next, ok)
	}
	clock.Advance(3 * time.Second)
	if len(set.Active()) != 0 {
		t.Fatal("expected set empty after all ttls")
	}
	if _, ok := set.NextExpiry(); ok {
		t.Fatal("expected no pending expiry")
	}
}

func TestClear(t *testing.T) {
	set := blink.New(time.Minute)
	set.Add("A", "B")
	set.Clear()
	if set.Contains("A") || len(set.Active()) != 0 {
		t.Fatal("expected cleared set")
	}
}
