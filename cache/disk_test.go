package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestDiskStore(t *testing.T) *diskStore {
	t.Helper()
	d, err := newDiskStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("newDiskStore() failed: %v", err)
	}
	return d
}

func TestDiskRoundTrip(t *testing.T) {
	d := newTestDiskStore(t)

	want := entry{Data: []byte(`"hello"`), ExpiresAt: time.Now().Add(time.Hour).UTC()}
	if err := d.write("k", want); err != nil {
		t.Fatalf("write() failed: %v", err)
	}

	got, ok := d.read("k")
	if !ok {
		t.Fatal("expected the entry back")
	}
	if string(got.Data) != string(want.Data) {
		t.Errorf("data mismatch: %q vs %q", got.Data, want.Data)
	}
	if !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("expiry mismatch: %v vs %v", got.ExpiresAt, want.ExpiresAt)
	}
}

func TestDiskFilenameIsHashed(t *testing.T) {
	d := newTestDiskStore(t)

	// Keys with filesystem-hostile characters must map to safe names, and
	// the mapping must be deterministic and collision-free.
	a := d.path(`tmdb:/search?query=foo/bar&page=1`)
	b := d.path(`tmdb:/search?query=foo/bar&page=2`)
	if a == b {
		t.Fatal("distinct keys mapped to the same file")
	}
	if a != d.path(`tmdb:/search?query=foo/bar&page=1`) {
		t.Fatal("path() is not deterministic")
	}
	base := filepath.Base(a)
	if !strings.HasSuffix(base, diskExt) || len(base) != 64+len(diskExt) {
		t.Errorf("unexpected filename shape: %q", base)
	}
}

func TestDiskOverwrite(t *testing.T) {
	d := newTestDiskStore(t)

	if err := d.write("k", entry{Data: []byte("old"), ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("write() failed: %v", err)
	}
	if err := d.write("k", entry{Data: []byte("new"), ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("write() failed: %v", err)
	}

	names, err := os.ReadDir(d.dir)
	if err != nil {
		t.Fatalf("ReadDir() failed: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("repeated writes must overwrite, found %d files", len(names))
	}
	got, _ := d.read("k")
	if string(got.Data) != "new" {
		t.Errorf("expected 'new', got %q", got.Data)
	}
}

func TestDiskSweep(t *testing.T) {
	d := newTestDiskStore(t)

	now := time.Now()
	if err := d.write("fresh", entry{Data: []byte("a"), ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("write() failed: %v", err)
	}
	if err := d.write("stale", entry{Data: []byte("b"), ExpiresAt: now.Add(-time.Hour)}); err != nil {
		t.Fatalf("write() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, strings.Repeat("f", 64)+diskExt), []byte("junk"), 0o600); err != nil {
		t.Fatalf("writing corrupt file failed: %v", err)
	}

	removed := d.sweep(now)
	if removed != 2 {
		t.Errorf("expected 2 removals (stale + corrupt), got %d", removed)
	}
	if _, ok := d.read("fresh"); !ok {
		t.Error("fresh entry must survive the sweep")
	}
	if _, ok := d.read("stale"); ok {
		t.Error("stale entry must be gone")
	}
}

func TestDiskSizeOnMissingDir(t *testing.T) {
	d := &diskStore{dir: filepath.Join(t.TempDir(), "does-not-exist"), log: zerolog.Nop()}
	if got := d.size(); got != 0 {
		t.Errorf("expected 0 for a missing directory, got %d", got)
	}
	d.clear() // must not panic either
}
