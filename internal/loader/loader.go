// Package loader reads mock fixtures from YAML files and registers them.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alexdesignworks/site-test-rest/internal/storage"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

// fixtureFile is the YAML document shape:
//
//	mocks:
//	  - request:
//	      method: GET
//	      url: users/1
//	    response:
//	      code: 200
//	      data: '{"id":1}'
type fixtureFile struct {
	Mocks []fixture `yaml:"mocks"`
}

type fixture struct {
	Request  map[string]interface{} `yaml:"request"`
	Response map[string]interface{} `yaml:"response"`
}

// LoadFile parses a fixture file into records, preserving declaration order.
// Order matters: the store returns the first matching record.
func LoadFile(path string) ([]*record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file: %w", err)
	}

	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse fixture file %s: %w", path, err)
	}

	records := make([]*record.Record, 0, len(file.Mocks))
	for i, mock := range file.Mocks {
		if len(mock.Request) == 0 {
			return nil, fmt.Errorf("fixture %d in %s has no request criteria", i+1, path)
		}
		records = append(records, record.New(record.Criteria(mock.Request), mock.Response))
	}
	return records, nil
}

// Register appends the records to the store in order.
func Register(store storage.Store, records []*record.Record) error {
	for i, rec := range records {
		if err := store.Add(rec); err != nil {
			return fmt.Errorf("register fixture %d: %w", i+1, err)
		}
	}
	return nil
}
