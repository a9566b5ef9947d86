package printer

import (
	"encoding/json"
	"os"

	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

// JSONPrinter emits the store as one machine-readable document.
type JSONPrinter struct {
	logger logger.Logger
}

// NewJSONPrinter creates a JSON printer.
func NewJSONPrinter(log logger.Logger) *JSONPrinter {
	return &JSONPrinter{logger: log}
}

// PrintStore writes the store path and records to stdout as indented JSON.
func (p *JSONPrinter) PrintStore(info StoreInfo, records []*record.Record) error {
	if records == nil {
		records = []*record.Record{}
	}
	doc := struct {
		Path    string           `json:"path"`
		Count   int              `json:"count"`
		Records []*record.Record `json:"records"`
	}{
		Path:    info.Path,
		Count:   len(records),
		Records: records,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
