package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexdesignworks/site-test-rest/internal/config"
	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/internal/storage"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

const sampleFixtures = `
mocks:
  - request:
      method: GET
      url: users/1
    response:
      code: 200
      data: '{"id":1}'
  - request:
      method: GET
      url: users/1
    response:
      code: 500
      data: shadowed
  - request:
      method: POST
      url: /^orders/
    response:
      code: 201
`

func writeFixtureFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture file: %v", err)
	}
	return path
}

func TestLoadFile_PreservesOrder(t *testing.T) {
	records, err := LoadFile(writeFixtureFile(t, sampleFixtures))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Payload["data"] != `{"id":1}` {
		t.Fatalf("expected declaration order preserved, got %#v", records[0].Payload)
	}
	if records[2].Criteria["url"] != "/^orders/" {
		t.Fatalf("unexpected third record: %#v", records[2].Criteria)
	}
}

func TestLoadFile_MissingRequest(t *testing.T) {
	content := "mocks:\n  - response:\n      code: 200\n"
	if _, err := LoadFile(writeFixtureFile(t, content)); err == nil {
		t.Fatal("expected error for fixture without request criteria")
	}
}

func TestRegister_FirstDeclaredWins(t *testing.T) {
	cfg := &config.StorageConfig{Driver: "file"}
	store, err := storage.Open(cfg, filepath.Join(t.TempDir(), "mocks.json"), logger.Noop())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer store.Close()

	records, err := LoadFile(writeFixtureFile(t, sampleFixtures))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := Register(store, records); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	rec, ok := store.Search(record.Criteria{"method": "GET", "url": "users/1"})
	if !ok {
		t.Fatal("expected a match")
	}
	if rec.Payload["data"] != `{"id":1}` {
		t.Fatalf("expected first declared fixture to win, got %#v", rec.Payload)
	}
}
