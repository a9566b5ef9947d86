package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/internal/matching"
	"github.com/alexdesignworks/site-test-rest/pkg/record"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// sqliteStore keeps records in a single-table sqlite database. The criteria
// and payload are stored as JSON columns; matching still happens in Go so
// both drivers share the exact same semantics.
type sqliteStore struct {
	db   *sql.DB
	path string
	log  logger.Logger
}

func newSQLiteStore(path string, log logger.Logger) (Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("prepare sqlite directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.ToSlash(absPath))
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(4)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %s: %w", stmt, err)
		}
	}

	store := &sqliteStore{db: db, path: absPath, log: log}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *sqliteStore) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    criteria_json TEXT NOT NULL,
    payload_json TEXT NOT NULL
);
`
	_, err := s.db.Exec(schema)
	return err
}

func (s *sqliteStore) Add(rec *record.Record) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	criteriaJSON, err := json.Marshal(rec.Criteria)
	if err != nil {
		return fmt.Errorf("marshal criteria: %w", err)
	}
	payloadJSON, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ctx := context.Background()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO records (criteria_json, payload_json) VALUES (?, ?)",
		string(criteriaJSON), string(payloadJSON),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *sqliteStore) All() []*record.Record {
	ctx := context.Background()
	rows, err := s.db.QueryContext(ctx,
		"SELECT criteria_json, payload_json FROM records ORDER BY seq ASC")
	if err != nil {
		s.log.Warn("Store query failed, treating as empty", "path", s.path, "error", err)
		return nil
	}
	defer rows.Close()

	var records []*record.Record
	for rows.Next() {
		var criteriaJSON, payloadJSON string
		if err := rows.Scan(&criteriaJSON, &payloadJSON); err != nil {
			s.log.Warn("Store row unreadable, treating as empty", "path", s.path, "error", err)
			return nil
		}
		rec := &record.Record{Criteria: record.Criteria{}, Payload: map[string]interface{}{}}
		if err := json.Unmarshal([]byte(criteriaJSON), &rec.Criteria); err != nil {
			s.log.Warn("Stored criteria corrupt, skipping record", "path", s.path, "error", err)
			continue
		}
		if err := json.Unmarshal([]byte(payloadJSON), &rec.Payload); err != nil {
			s.log.Warn("Stored payload corrupt, skipping record", "path", s.path, "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		s.log.Warn("Store iteration failed, treating as empty", "path", s.path, "error", err)
		return nil
	}
	return records
}

func (s *sqliteStore) Search(criteria record.Criteria) (*record.Record, bool) {
	for _, rec := range s.All() {
		if matching.Matches(rec.Criteria, criteria) {
			return rec, true
		}
	}
	return nil, false
}

func (s *sqliteStore) Reset() error {
	if _, err := s.db.Exec("DELETE FROM records"); err != nil {
		return fmt.Errorf("reset records: %w", err)
	}
	return nil
}

func (s *sqliteStore) Path() string {
	return s.path
}

func (s *sqliteStore) Destroy() error {
	if err := s.Close(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove store file: %w", err)
	}
	// WAL mode leaves sidecar files next to the database.
	for _, sidecar := range []string{s.path + "-wal", s.path + "-shm"} {
		if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove store sidecar: %w", err)
		}
	}
	return nil
}

func (s *sqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
