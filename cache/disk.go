package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const diskExt = ".json"

// diskStore is the persistent tier: one file per key, named by the SHA-256
// of the key so arbitrary keys map to fixed-length filesystem-safe names.
// The hash is one-way; original keys are not recoverable from a directory
// listing. The Manager's mutex serializes all calls.
type diskStore struct {
	dir string
	log zerolog.Logger
}

func newDiskStore(dir string, log zerolog.Logger) (*diskStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &diskStore{dir: dir, log: log}, nil
}

func (d *diskStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(d.dir, hex.EncodeToString(sum[:])+diskExt)
}

// read loads the envelope for key. A file that fails to parse is deleted on
// the spot so it cannot fail the same way on every future read.
func (d *diskStore) read(key string) (entry, bool) {
	fp := d.path(key)
	b, err := os.ReadFile(fp)
	if err != nil {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		d.log.Warn().Err(err).Str("key", key).Msg("removing corrupt cache file")
		_ = os.Remove(fp)
		return entry{}, false
	}
	return e, true
}

// write persists the envelope atomically: marshal, write a temp file in the
// same directory, then rename over the final path. A failure at any step
// leaves either the old file or nothing, never a partial record.
func (d *diskStore) write(key string, e entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	fp := d.path(key)
	tmp := fp + fmt.Sprintf(".tmp.%d", rand.Int())
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, fp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (d *diskStore) remove(key string) {
	_ = os.Remove(d.path(key))
}

// clear deletes every cache file in the directory. Enumeration failures are
// ignored; a missing or empty directory is not an error.
func (d *diskStore) clear() {
	names, err := os.ReadDir(d.dir)
	if err != nil {
		return
	}
	for _, de := range names {
		if de.IsDir() {
			continue
		}
		_ = os.Remove(filepath.Join(d.dir, de.Name()))
	}
}

// size sums the file sizes in the cache directory, returning 0 on any
// enumeration failure.
func (d *diskStore) size() int64 {
	names, err := os.ReadDir(d.dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, de := range names {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total
}

// sweep scans every cache file and deletes those that are expired or
// unreadable. Stale temp files from interrupted writes are removed too.
func (d *diskStore) sweep(now time.Time) int {
	names, err := os.ReadDir(d.dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, de := range names {
		if de.IsDir() {
			continue
		}
		fp := filepath.Join(d.dir, de.Name())
		if !strings.HasSuffix(de.Name(), diskExt) {
			_ = os.Remove(fp)
			continue
		}
		b, err := os.ReadFile(fp)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(b, &e); err != nil {
			d.log.Warn().Err(err).Str("file", de.Name()).Msg("removing corrupt cache file")
			_ = os.Remove(fp)
			removed++
			continue
		}
		if e.expired(now) {
			_ = os.Remove(fp)
			removed++
		}
	}
	return removed
}
