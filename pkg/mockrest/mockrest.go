// Package mockrest is the test-facing entry point: it owns the store for one
// test run, registers (request, response) pairs and resolves requests the way
// the real transport would.
package mockrest

import (
	"errors"
	"net/http"
	"os"

	"github.com/alexdesignworks/site-test-rest/internal/config"
	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/internal/storage"
	"github.com/alexdesignworks/site-test-rest/internal/transport"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

// StorePathEnv is the process-wide name under which a test runner publishes
// the store identity for the subject-under-test process.
const StorePathEnv = "MOCKREST_STORE_PATH"

// ErrNoPublishedStore indicates AttachEnv found no published store path.
var ErrNoPublishedStore = errors.New("no store path published in " + StorePathEnv)

// Logger is the logging contract accepted by this package. It matches the
// tool's structured logger, so any logger with these methods plugs in; nil
// disables logging.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Fatal(msg string, fields ...interface{})
}

// Options selects the storage backend and the scratch location for new runs.
// The zero value means: JSON file driver, system temp dir, default prefix.
type Options struct {
	// Driver is "file" (default) or "sqlite".
	Driver string
	// Path pins the store to an explicit file instead of a derived scratch
	// path.
	Path string
	// ScratchDir is where scratch stores are created. Defaults to os.TempDir.
	ScratchDir string
	// Prefix is the scratch file name prefix. Defaults to "site_test_rest".
	Prefix string
}

func (o Options) withDefaults() Options {
	if o.ScratchDir == "" {
		o.ScratchDir = os.TempDir()
	}
	if o.Prefix == "" {
		o.Prefix = "site_test_rest"
	}
	return o
}

func (o Options) storageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Driver:     o.Driver,
		Path:       o.Path,
		ScratchDir: o.ScratchDir,
		Prefix:     o.Prefix,
	}
}

// Request carries the identifying fields of an outgoing call.
type Request struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

// Response is the payload handed back for a request: the matched record's
// fields, or the synthesized not-found fallback.
type Response map[string]interface{}

// Code returns the status-like "code" field.
func (r Response) Code() int {
	return transport.Response(r).Code()
}

// Data returns the "data" field as-is.
func (r Response) Data() interface{} {
	return transport.Response(r).Data()
}

// Client binds a store, a transport and the registration API together.
// A client created by NewRun owns its scratch file and deletes it on
// Teardown; a client created by Attach or AttachEnv only references a store
// owned elsewhere and leaves the file alone.
type Client struct {
	store     storage.Store
	transport *transport.MockTransport
	log       logger.Logger
	owned     bool
}

// NewRun creates the store for a fresh test run. When opts.Path is empty a
// unique scratch path is derived from the scratch dir, prefix and testID,
// and published via Publish so a subject-under-test process can find it.
func NewRun(opts Options, testID string, log Logger) (*Client, error) {
	opts = opts.withDefaults()
	intLog := wrapLogger(log)

	path := opts.Path
	if path == "" {
		path = storage.ScratchPath(opts.ScratchDir, opts.Prefix, testID)
	}

	store, err := storage.Open(opts.storageConfig(), path, intLog)
	if err != nil {
		return nil, err
	}
	if err := Publish(store.Path()); err != nil {
		store.Close()
		return nil, err
	}

	intLog.Debug("Mock store created", "path", store.Path(), "test_id", testID)
	return &Client{
		store:     store,
		transport: transport.New(store, intLog),
		log:       intLog,
		owned:     true,
	}, nil
}

// Attach opens an existing store by explicit path without taking ownership.
// This is the preferred way for the subject-under-test to reach the store
// when its identity can be injected directly.
func Attach(opts Options, path string, log Logger) (*Client, error) {
	opts = opts.withDefaults()
	intLog := wrapLogger(log)

	store, err := storage.Open(opts.storageConfig(), path, intLog)
	if err != nil {
		return nil, err
	}
	return &Client{
		store:     store,
		transport: transport.New(store, intLog),
		log:       intLog,
		owned:     false,
	}, nil
}

// AttachEnv attaches to the store whose path was published by the test
// runner. The environment is re-read on every call, so a subject process
// that cached earlier configuration still picks up the current store.
func AttachEnv(opts Options, log Logger) (*Client, error) {
	path := CurrentPath()
	if path == "" {
		return nil, ErrNoPublishedStore
	}
	return Attach(opts, path, log)
}

// SetResponse registers a mock: response will be returned for any request
// matching the given criteria. This is the only write path during normal
// test usage.
func (c *Client) SetResponse(criteria record.Criteria, response map[string]interface{}) error {
	rec := record.New(criteria, response)
	if err := c.store.Add(rec); err != nil {
		return err
	}
	c.log.Debug("Mock response registered", "criteria", criteria)
	return nil
}

// Request resolves a request against the registered mocks, returning either
// the matched payload or the synthesized not-found response.
func (c *Client) Request(req *Request) Response {
	resp := c.transport.Request(&transport.Request{Method: req.Method, URL: req.URL})
	return Response(resp)
}

// RoundTripper returns an http.RoundTripper over the same store, for
// swapping into an http.Client in place of the real transport.
func (c *Client) RoundTripper() http.RoundTripper {
	return transport.NewRoundTripper(c.store, c.log)
}

// All returns every registered record in insertion order.
func (c *Client) All() []*record.Record {
	return c.store.All()
}

// Reset clears all registered mocks, keeping the store file in place.
func (c *Client) Reset() error {
	return c.store.Reset()
}

// StorePath returns the store identity.
func (c *Client) StorePath() string {
	return c.store.Path()
}

// Teardown releases the client. Only the run that created the store deletes
// its backing file; attached clients close without touching it, so tearing
// down an incidental reference can never destroy a live store used by
// another process.
func (c *Client) Teardown() error {
	if !c.owned {
		return c.store.Close()
	}
	return c.store.Destroy()
}

// Publish records the store path in the process-wide environment for child
// processes to discover.
func Publish(path string) error {
	return os.Setenv(StorePathEnv, path)
}

// CurrentPath re-reads the published store path at the point of use.
func CurrentPath() string {
	return os.Getenv(StorePathEnv)
}

// wrapLogger converts the accepted logger to the internal contract. The
// method sets are identical, so the conversion is direct; nil becomes a
// no-op logger.
func wrapLogger(log Logger) logger.Logger {
	if log == nil {
		return logger.Noop()
	}
	return log
}
