package printer

import (
	"time"

	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

// StoreInfo describes the backing file of the store being printed.
type StoreInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Printer renders the contents of a mock store.
type Printer interface {
	PrintStore(info StoreInfo, records []*record.Record) error
}

// New creates a Printer for the given output mode.
func New(mode string, log logger.Logger, noColor bool) Printer {
	switch mode {
	case "json":
		return NewJSONPrinter(log)
	default:
		return NewConsolePrinter(log, noColor)
	}
}
