package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/internal/matching"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

// fileStore persists records as a pretty-printed JSON array in a single
// file. Every Add re-reads the file, appends and rewrites it in full, so a
// second process sharing the path always sees the latest collection without
// any coordination beyond the file itself.
type fileStore struct {
	path string
	log  logger.Logger
}

func newFileStore(path string, log logger.Logger) (Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("prepare store directory: %w", err)
	}
	return &fileStore{path: absPath, log: log}, nil
}

func (s *fileStore) Add(rec *record.Record) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	records := s.All()
	records = append(records, rec)
	return s.save(records)
}

// All loads the full collection. Any read or decode failure degrades to an
// empty collection: a half-written or corrupt store must never take down the
// system under test.
func (s *fileStore) All() []*record.Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("Store file unreadable, treating as empty", "path", s.path, "error", err)
		}
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var records []*record.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn("Store file corrupt, treating as empty", "path", s.path, "error", err)
		return nil
	}
	return records
}

func (s *fileStore) Search(criteria record.Criteria) (*record.Record, bool) {
	for _, rec := range s.All() {
		if matching.Matches(rec.Criteria, criteria) {
			return rec, true
		}
	}
	return nil, false
}

func (s *fileStore) Reset() error {
	return s.save(nil)
}

func (s *fileStore) Path() string {
	return s.path
}

func (s *fileStore) Destroy() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove store file: %w", err)
	}
	return nil
}

func (s *fileStore) Close() error {
	return nil
}

// save rewrites the whole collection, pretty-printed for human diffing.
// The temp-file-and-rename dance keeps concurrent readers from ever seeing
// a torn write.
func (s *fileStore) save(records []*record.Record) error {
	if records == nil {
		records = []*record.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
