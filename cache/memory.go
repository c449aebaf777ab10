package cache

import "time"

// memoryStore is the fast bounded tier. It is a plain map; the Manager's
// mutex serializes all access, so no locking happens here.
type memoryStore struct {
	entries    map[string]entry
	maxEntries int
}

func newMemoryStore(maxEntries int) *memoryStore {
	return &memoryStore{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
	}
}

func (s *memoryStore) get(key string) (entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// put inserts or overwrites, then enforces the capacity bound. Returns the
// number of entries evicted to get back under the limit.
func (s *memoryStore) put(key string, e entry) int {
	s.entries[key] = e
	return s.evictOver()
}

func (s *memoryStore) remove(key string) bool {
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

func (s *memoryStore) clear() {
	s.entries = make(map[string]entry)
}

func (s *memoryStore) len() int {
	return len(s.entries)
}

func (s *memoryStore) keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// evictOver removes soonest-to-expire entries until the store is back at
// its capacity. Entries about to expire are the cheapest to lose, so the
// policy approximates "evict what TTL would reclaim next" rather than LRU.
func (s *memoryStore) evictOver() int {
	if s.maxEntries <= 0 {
		return 0
	}
	evicted := 0
	for len(s.entries) > s.maxEntries {
		var victim string
		var soonest time.Time
		for k, e := range s.entries {
			if victim == "" || e.ExpiresAt.Before(soonest) {
				victim = k
				soonest = e.ExpiresAt
			}
		}
		delete(s.entries, victim)
		evicted++
	}
	return evicted
}

// sweep deletes every expired entry and reports how many were removed.
func (s *memoryStore) sweep(now time.Time) int {
	removed := 0
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}
