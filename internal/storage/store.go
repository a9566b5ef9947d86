package storage

import (
	"errors"

	"github.com/alexdesignworks/site-test-rest/internal/config"
	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

// ErrUnsupportedDriver indicates the configured driver is not available.
var ErrUnsupportedDriver = errors.New("unsupported storage driver")

// Store is the persistence contract for registered mock records.
//
// The write path (Add, Reset, Destroy) reports failures so callers can log
// them. The read path never fails: a missing, unreadable or corrupt backing
// store degrades to "no records registered" so the system under test keeps
// running and simply sees not-found responses.
type Store interface {
	// Add appends a record and persists the full collection.
	Add(rec *record.Record) error
	// All returns every stored record in insertion order.
	All() []*record.Record
	// Search returns the first record, by insertion order, whose criteria
	// satisfies every field of the query. The second return value reports
	// whether a match was found.
	Search(criteria record.Criteria) (*record.Record, bool)
	// Reset truncates the store to empty while keeping its backing file.
	Reset() error
	// Path returns the store identity (the backing file path).
	Path() string
	// Destroy removes the backing file. Intended for the owning test's
	// teardown only; attached consumers must not call it.
	Destroy() error

	Close() error
}

// Open instantiates a Store for an explicit path based on configuration.
func Open(cfg *config.StorageConfig, path string, log logger.Logger) (Store, error) {
	if cfg == nil {
		return nil, errors.New("storage config is nil")
	}
	switch cfg.Driver {
	case "", "file", "json":
		return newFileStore(path, log)
	case "sqlite", "sqlite3":
		return newSQLiteStore(path, log)
	default:
		return nil, ErrUnsupportedDriver
	}
}
