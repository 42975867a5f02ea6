package blink

import (
	"sort"
	"sync"
	"time"
)

// DefaultTTL is how long a newly called ticket stays highlighted.
const DefaultTTL = 5 * time.Second

// Set holds highlighted ids. Each entry expires TTL after its own insertion,
// regardless of later poll cycles. Re-adding a live id does not extend it.
type Set struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

// Option configures a Set.
type Option func(*Set)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Set) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns an empty set. A non-positive ttl selects DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Set {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Set{ttl: ttl, now: time.Now, entries: make(map[string]time.Time)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured highlight duration.
func (s *Set) TTL() time.Duration {
	return s.ttl
}

// Add highlights ids starting now.
func (s *Set) Add(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	for _, id := range ids {
		if _, ok := s.entries[id]; ok {
			continue
		}
		s.entries[id] = now.Add(s.ttl)
	}
}

// Contains reports whether id is still highlighted.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.entries[id]
	if !ok {
		return false
	}
	if !s.now().Before(expiry) {
		delete(s.entries, id)
		return false
	}
	return true
}

// Active returns the live ids in sorted order.
func (s *Set) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	out := make([]string, 0, len(s.entries))
	for id := range s.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// NextExpiry returns when the earliest live entry expires.
func (s *Set) NextExpiry() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	var next time.Time
	for _, expiry := range s.entries {
		if next.IsZero() || expiry.Before(next) {
			next = expiry
		}
	}
	return next, !next.IsZero()
}

// Clear removes every entry.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]time.Time)
}

func (s *Set) pruneLocked(now time.Time) {
	for id, expiry := range s.entries {
		if !now.Before(expiry) {
			delete(s.entries, id)
		}
	}
}
