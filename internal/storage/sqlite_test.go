package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexdesignworks/site-test-rest/internal/config"
	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

func newTestSQLiteStore(t *testing.T) Store {
	t.Helper()
	cfg := &config.StorageConfig{Driver: "sqlite"}
	store, err := Open(cfg, filepath.Join(t.TempDir(), "mocks.db"), logger.Noop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestSQLiteStore_AddAndAllOrdered(t *testing.T) {
	store := newTestSQLiteStore(t)

	urls := []string{"/a", "/b", "/c"}
	for _, url := range urls {
		if err := store.Add(mockRecord("GET", url, 200, url)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	all := store.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for i, url := range urls {
		if all[i].Criteria["url"] != url {
			t.Fatalf("expected insertion order preserved, got %v at %d", all[i].Criteria["url"], i)
		}
	}
}

func TestSQLiteStore_SearchFirstMatch(t *testing.T) {
	store := newTestSQLiteStore(t)

	if err := store.Add(mockRecord("GET", "/a", 200, "first")); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(mockRecord("GET", "/a", 500, "second")); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	rec, ok := store.Search(record.Criteria{"method": "GET", "url": "/a"})
	if !ok {
		t.Fatal("expected a match")
	}
	if rec.Payload["data"] != "first" {
		t.Fatalf("expected first inserted record, got %v", rec.Payload["data"])
	}
}

func TestSQLiteStore_Reset(t *testing.T) {
	store := newTestSQLiteStore(t)

	if err := store.Add(mockRecord("GET", "/a", 200, "x")); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if got := store.All(); len(got) != 0 {
		t.Fatalf("expected empty store after reset, got %d records", len(got))
	}
}

func TestSQLiteStore_Destroy(t *testing.T) {
	store := newTestSQLiteStore(t)

	if err := store.Add(mockRecord("GET", "/a", 200, "x")); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Destroy(); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Fatal("expected database file to be removed")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	cfg := &config.StorageConfig{Driver: "postgres"}
	if _, err := Open(cfg, filepath.Join(t.TempDir(), "mocks"), logger.Noop()); err != ErrUnsupportedDriver {
		t.Fatalf("expected ErrUnsupportedDriver, got %v", err)
	}
}
