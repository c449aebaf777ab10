package cache

import (
	"context"
	"fmt"
	"time"
)

// Get decodes the cached value for key into T. A decode failure means the
// stored payload is corrupt or was written for a different type; the entry
// is purged from both tiers and the call reports a miss.
func Get[T any](m *Manager, key string) (T, bool) {
	var v T
	data, ok := m.GetBytes(key)
	if !ok {
		return v, false
	}
	if err := m.codec.Unmarshal(data, &v); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("purging undecodable cache entry")
		m.Remove(key)
		var zero T
		return zero, false
	}
	return v, true
}

// Set encodes value and stores it under key for ttl. The only failure that
// reaches the caller is an encode failure, which aborts the call without
// touching existing cached state. ttl <= 0 is a no-op.
func Set[T any](m *Manager, key string, value T, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := m.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value for %q: %w", key, err)
	}
	m.SetBytes(key, data, ttl)
	return nil
}

// GetOrFetch returns the cached value for key if fresh, otherwise calls
// fetch and caches its result for ttl. Concurrent callers for the same key
// are coalesced into a single fetch; all of them receive its result (or its
// error). A fetch error is returned as-is and nothing is cached.
func GetOrFetch[T any](ctx context.Context, m *Manager, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := Get[T](m, key); ok {
		return v, nil
	}
	res, err, _ := m.group.Do(key, func() (any, error) {
		// A coalesced caller may arrive just after the winner stored the
		// value; re-check before fetching again.
		if v, ok := Get[T](m, key); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := Set(m, key, v, ttl); err != nil {
			// The fetched value is still good; only caching it failed.
			m.log.Warn().Err(err).Str("key", key).Msg("caching fetched value failed")
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}
