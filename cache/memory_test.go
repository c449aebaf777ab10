package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestMemoryEvictsSoonestExpiring(t *testing.T) {
	s := newMemoryStore(2)
	now := time.Now()

	s.put("far", entry{ExpiresAt: now.Add(time.Hour)})
	s.put("near", entry{ExpiresAt: now.Add(time.Minute)})
	evicted := s.put("mid", entry{ExpiresAt: now.Add(30 * time.Minute)})

	if evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if _, ok := s.get("near"); ok {
		t.Error("the soonest-expiring entry must be evicted first")
	}
	if _, ok := s.get("far"); !ok {
		t.Error("the latest-expiring entry must survive")
	}
	if _, ok := s.get("mid"); !ok {
		t.Error("the middle entry must survive")
	}
}

func TestMemoryUnbounded(t *testing.T) {
	s := newMemoryStore(0)
	now := time.Now()
	for i := 0; i < 1000; i++ {
		s.put(fmt.Sprintf("k%d", i), entry{ExpiresAt: now.Add(time.Hour)})
	}
	if s.evictOver() != 0 {
		t.Error("maxEntries <= 0 must disable eviction")
	}
}

func TestMemorySweep(t *testing.T) {
	s := newMemoryStore(10)
	now := time.Now()

	s.put("fresh", entry{ExpiresAt: now.Add(time.Hour)})
	s.put("stale1", entry{ExpiresAt: now.Add(-time.Second)})
	s.put("stale2", entry{ExpiresAt: now.Add(-time.Hour)})

	if removed := s.sweep(now); removed != 2 {
		t.Errorf("expected 2 removals, got %d", removed)
	}
	if s.len() != 1 {
		t.Errorf("expected 1 survivor, got %d", s.len())
	}
}
