// Package cache implements the two-tier cache the metadata clients use to
// memoize calls to rate-limited third-party APIs (TMDB, Trakt, Plex.tv).
//
// Values live in a fast bounded in-memory tier backed by a persistent
// on-disk tier, with TTL-based expiration in both. The memory tier starts
// empty on each process start and is refilled from disk as keys are read.
// Caching is strictly a performance layer: disk failures are logged and
// absorbed, never returned to callers.
package cache

import (
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// TTL tiers. These are conventions shared by the API clients, not enforced
// by the cache; any positive duration works. TTLNone disables caching for
// that call.
const (
	TTLShort    = 5 * time.Minute
	TTLDynamic  = 15 * time.Minute
	TTLTrending = 30 * time.Minute
	TTLStatic   = 24 * time.Hour
	TTLNone     = time.Duration(0)
)

const (
	// DefaultMaxEntries bounds the memory tier. The disk tier is unbounded
	// except by expiration and Clear.
	DefaultMaxEntries = 500

	// DefaultSweepInterval is how often the background sweep removes
	// expired entries from both tiers.
	DefaultSweepInterval = 5 * time.Minute
)

// Manager is a two-tier TTL cache keyed by opaque strings. A single mutex
// serializes every operation, including disk I/O, so each public call is
// one atomic logical operation against both tiers. Safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	memory *memoryStore
	disk   *diskStore
	stats  Stats

	codec Codec
	log   zerolog.Logger
	group singleflight.Group

	sweepEvery time.Duration
	stopSweep  chan struct{}
	sweepDone  chan struct{}
	closeOnce  sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxEntries bounds the memory tier. n <= 0 means unbounded.
func WithMaxEntries(n int) Option {
	return func(m *Manager) { m.memory.maxEntries = n }
}

// WithSweepInterval sets the background sweep cadence. d <= 0 disables the
// sweep entirely; expired entries are then only removed lazily on read.
func WithSweepInterval(d time.Duration) Option {
	return func(m *Manager) { m.sweepEvery = d }
}

// WithCodec replaces the default JSON codec.
func WithCodec(c Codec) Option {
	return func(m *Manager) { m.codec = c }
}

// WithLogger sets the logger for swallowed disk errors.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
		m.disk.log = log
	}
}

// NewManager opens (creating if needed) the cache directory at dir and
// starts the background sweep. Call Close when done to stop the sweep.
func NewManager(dir string, opts ...Option) (*Manager, error) {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("component", "cache").Logger()
	disk, err := newDiskStore(dir, log)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		memory:     newMemoryStore(DefaultMaxEntries),
		disk:       disk,
		codec:      JSONCodec,
		log:        log,
		sweepEvery: DefaultSweepInterval,
		stopSweep:  make(chan struct{}),
		sweepDone:  make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	m.stats.MaxEntries = m.memory.maxEntries
	if m.sweepEvery > 0 {
		go m.sweepLoop()
	} else {
		close(m.sweepDone)
	}
	return m, nil
}

// GetBytes returns the stored payload for key, or false on a miss. The
// memory tier is consulted first; a disk hit is promoted into memory so the
// next lookup avoids I/O. Expired entries encountered along the way are
// deleted.
func (m *Manager) GetBytes(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if e, ok := m.memory.get(key); ok {
		if !e.expired(now) {
			m.stats.Hits++
			return e.Data, true
		}
		m.memory.remove(key)
		m.stats.Expirations++
	}

	if e, ok := m.disk.read(key); ok {
		if !e.expired(now) {
			m.stats.Evictions += uint64(m.memory.put(key, e))
			m.stats.Hits++
			return e.Data, true
		}
		m.disk.remove(key)
		m.stats.Expirations++
	}

	m.stats.Misses++
	return nil, false
}

// SetBytes stores an already-encoded payload under key for ttl. A ttl <= 0
// is an explicit opt-out and the call is a no-op. The memory write always
// succeeds; a disk write failure is logged and absorbed.
func (m *Manager) SetBytes(key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	e := entry{Data: data, ExpiresAt: time.Now().Add(ttl)}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Evictions += uint64(m.memory.put(key, e))
	if err := m.disk.write(key, e); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("disk cache write failed")
	}
}

// Remove deletes key from both tiers. Removing an absent key is a no-op.
func (m *Manager) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memory.remove(key)
	m.disk.remove(key)
}

// Clear empties the memory tier and deletes every file in the cache
// directory.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memory.clear()
	m.disk.clear()
}

// InvalidatePattern removes every memory-tier key matching pattern, where
// "*" matches zero or more characters and all other characters match
// literally. Matched keys are deleted from the disk tier as well, so they
// cannot be resurrected by the next read. Returns the number of keys
// removed.
//
// Keys that exist only on disk (written by a previous run and never read
// since) cannot be matched: filenames are one-way hashes of the keys.
// Those entries are left to expire via TTL.
func (m *Manager) InvalidatePattern(pattern string) int {
	re, err := compileGlob(pattern)
	if err != nil {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for _, k := range m.memory.keys() {
		if re.MatchString(k) {
			m.memory.remove(k)
			m.disk.remove(k)
			removed++
		}
	}
	return removed
}

// compileGlob turns a glob with "*" wildcards into an anchored full-match
// regexp, escaping everything else (".", "?", etc.) literally.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(pattern)
	return regexp.Compile("^" + strings.ReplaceAll(quoted, `\*`, ".*") + "$")
}

// Len returns the current memory-tier entry count.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memory.len()
}

// Keys returns the live memory-tier key set, for diagnostics and tests.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memory.keys()
}

// DiskSize returns the total size in bytes of the disk tier, 0 if the
// directory cannot be enumerated.
func (m *Manager) DiskSize() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disk.size()
}

// Stats returns a snapshot of cache counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Entries = m.memory.len()
	return s
}

// Close stops the background sweep and waits for it to exit. In-flight
// operations run to completion; the cache remains usable afterwards, just
// without sweeping. Safe to call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.stopSweep)
	})
	<-m.sweepDone
}

func (m *Manager) sweepLoop() {
	defer close(m.sweepDone)
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stopSweep:
			return
		}
	}
}

// sweep removes expired entries from both tiers. It takes the same mutex as
// the foreground operations, so it never races a concurrent Set: a fresh
// write either lands before the sweep observes the key or after it has
// already deleted the old value.
func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	removed := m.memory.sweep(now)
	removed += m.disk.sweep(now)
	m.stats.Expirations += uint64(removed)
	if removed > 0 {
		m.log.Debug().Int("removed", removed).Msg("cache sweep")
	}
}
