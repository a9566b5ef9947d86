package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/internal/storage"
)

// RoundTripper adapts MockTransport to http.RoundTripper so it can be
// swapped into an http.Client in place of the real network transport.
type RoundTripper struct {
	transport *MockTransport
}

// NewRoundTripper builds an http.RoundTripper backed by the mock store.
func NewRoundTripper(store storage.Store, log logger.Logger) *RoundTripper {
	return &RoundTripper{transport: New(store, log)}
}

// RoundTrip resolves the request against the store. The matched payload's
// "code" becomes the status code and "data" the body; string data passes
// through verbatim, anything else is JSON-encoded.
func (rt *RoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	mockResp := rt.transport.Request(&Request{
		Method: r.Method,
		URL:    r.URL.String(),
	})

	body, contentType, err := encodeBody(mockResp.Data())
	if err != nil {
		return nil, err
	}

	code := mockResp.Code()
	if code == 0 {
		code = http.StatusOK
	}

	resp := &http.Response{
		Status:        http.StatusText(code),
		StatusCode:    code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       r,
	}
	if contentType != "" {
		resp.Header.Set("Content-Type", contentType)
	}
	return resp, nil
}

func encodeBody(data interface{}) ([]byte, string, error) {
	switch v := data.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(v), "text/plain", nil
	case []byte:
		return v, "application/octet-stream", nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return encoded, "application/json", nil
	}
}
