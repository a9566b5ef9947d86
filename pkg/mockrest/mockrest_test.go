package mockrest

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Driver:     "file",
		ScratchDir: t.TempDir(),
	}
}

func newRun(t *testing.T, opts Options, testID string) *Client {
	t.Helper()
	client, err := NewRun(opts, testID, nil)
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	t.Cleanup(func() {
		client.Teardown()
		os.Unsetenv(StorePathEnv)
	})
	return client
}

func TestSetResponseAndRequest(t *testing.T) {
	client := newRun(t, testOptions(t), "ScenarioTest")

	err := client.SetResponse(
		record.Criteria{"method": "GET", "url": "users/1"},
		map[string]interface{}{"code": 200, "data": `{"id":1}`},
	)
	if err != nil {
		t.Fatalf("set response failed: %v", err)
	}

	resp := client.Request(&Request{Method: "GET", URL: "users/1"})
	if resp.Code() != 200 {
		t.Fatalf("expected 200, got %d", resp.Code())
	}
	if resp.Data() != `{"id":1}` {
		t.Fatalf("unexpected data: %v", resp.Data())
	}
	if _, ok := resp["criteria"]; ok {
		t.Fatal("expected criteria to be absent from the response")
	}
}

func TestRequest_NotFound(t *testing.T) {
	client := newRun(t, testOptions(t), "NotFoundTest")

	resp := client.Request(&Request{Method: "GET", URL: "nowhere"})
	if resp.Code() != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code())
	}
}

func TestNewRun_PublishesStorePath(t *testing.T) {
	client := newRun(t, testOptions(t), "PublishTest")

	if CurrentPath() != client.StorePath() {
		t.Fatalf("expected published path %s, got %s", client.StorePath(), CurrentPath())
	}
}

func TestAttachEnv_SeesRunnerRegistrations(t *testing.T) {
	opts := testOptions(t)
	runner := newRun(t, opts, "CrossProcessTest")

	// The subject process re-reads the environment at the point of use.
	subject, err := AttachEnv(opts, nil)
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	defer subject.Teardown()

	err = runner.SetResponse(
		record.Criteria{"method": "GET", "url": "/late"},
		map[string]interface{}{"code": 200, "data": "late"},
	)
	if err != nil {
		t.Fatalf("set response failed: %v", err)
	}

	resp := subject.Request(&Request{Method: "GET", URL: "/late"})
	if resp.Code() != 200 {
		t.Fatalf("expected registration after attach to be visible, got %d", resp.Code())
	}
}

func TestAttachEnv_NoPublishedPath(t *testing.T) {
	os.Unsetenv(StorePathEnv)
	if _, err := AttachEnv(testOptions(t), nil); err != ErrNoPublishedStore {
		t.Fatalf("expected ErrNoPublishedStore, got %v", err)
	}
}

func TestTeardown_OwnedDeletesFile(t *testing.T) {
	client := newRun(t, testOptions(t), "TeardownTest")
	path := client.StorePath()

	if err := client.SetResponse(record.Criteria{"method": "GET", "url": "/x"}, map[string]interface{}{"code": 200}); err != nil {
		t.Fatalf("set response failed: %v", err)
	}
	if err := client.Teardown(); err != nil {
		t.Fatalf("teardown failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected owned store file to be deleted on teardown")
	}
}

func TestTeardown_AttachedKeepsFile(t *testing.T) {
	opts := testOptions(t)
	runner := newRun(t, opts, "SharedTest")

	attached, err := Attach(opts, runner.StorePath(), nil)
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if err := attached.Teardown(); err != nil {
		t.Fatalf("teardown failed: %v", err)
	}
	if _, err := os.Stat(runner.StorePath()); err != nil {
		t.Fatalf("expected attached teardown to keep the store file: %v", err)
	}
}

func TestReset_ClearsRegistrations(t *testing.T) {
	client := newRun(t, testOptions(t), "ResetTest")

	if err := client.SetResponse(record.Criteria{"method": "GET", "url": "/x"}, map[string]interface{}{"code": 200}); err != nil {
		t.Fatalf("set response failed: %v", err)
	}
	if err := client.Reset(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if got := client.All(); len(got) != 0 {
		t.Fatalf("expected no records after reset, got %d", len(got))
	}
}

func TestNewRun_ExplicitPath(t *testing.T) {
	opts := testOptions(t)
	opts.Path = filepath.Join(t.TempDir(), "explicit.json")

	client := newRun(t, opts, "")
	if client.StorePath() != opts.Path {
		t.Fatalf("expected explicit path %s, got %s", opts.Path, client.StorePath())
	}
}
