// Package transport resolves outgoing requests against the mock store in
// place of a real network transport.
package transport

import (
	"fmt"
	"net/http"

	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/internal/storage"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

// Request carries the identifying fields of an outgoing call. Only method
// and URL participate in matching; callers needing more go through
// Store.Search directly.
type Request struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

// Response is the payload handed back to the caller. It carries whatever
// fields the registered record defined; Code and Data read the two
// conventional ones.
type Response map[string]interface{}

// Code returns the status-like "code" field. JSON decoding produces float64
// for numbers, so both forms are accepted.
func (r Response) Code() int {
	switch v := r["code"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Data returns the "data" field as-is.
func (r Response) Data() interface{} {
	return r["data"]
}

// MockTransport answers requests from registered mock records instead of
// performing network calls.
type MockTransport struct {
	store storage.Store
	log   logger.Logger
}

// New creates a mock transport over the given store.
func New(store storage.Store, log logger.Logger) *MockTransport {
	return &MockTransport{store: store, log: log}
}

// Request resolves a request against the store. On a match the stored
// payload is returned with the criteria already stripped; otherwise a
// synthesized 404-equivalent response names the unmatched method and URL so
// a misconfigured test is easy to diagnose. Not-found is a normal outcome,
// never an error.
func (t *MockTransport) Request(req *Request) Response {
	criteria := record.Criteria{
		"method": req.Method,
		"url":    req.URL,
	}

	rec, ok := t.store.Search(criteria)
	if !ok {
		t.log.Debug("No mock registered for request", "method", req.Method, "url", req.URL)
		return Response{
			"code": http.StatusNotFound,
			"data": fmt.Sprintf("No mock response found for request %q to URL %q", req.Method, req.URL),
		}
	}

	t.log.Debug("Mock response matched", "method", req.Method, "url", req.URL)
	response := make(Response, len(rec.Payload))
	for key, value := range rec.Payload {
		response[key] = value
	}
	return response
}
