package runner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/srand/jolt/testrunner/pkg/protocol"
	"github.com/srand/jolt/testrunner/pkg/testcase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hands out a fixed list of assignments and records posted results.
type fakeCoordinator struct {
	mu          sync.Mutex
	assignments []*protocol.WorkAssignment
	results     []protocol.TestResult
	requests    int
}

func (f *fakeCoordinator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case protocol.TestsPath:
		f.requests++
		next := protocol.FinishedAssignment()
		if len(f.assignments) > 0 {
			next, f.assignments = f.assignments[0], f.assignments[1:]
		}
		json.NewEncoder(w).Encode(next)

	case protocol.ResultsPath:
		results := []protocol.TestResult{}
		if err := json.NewDecoder(r.Body).Decode(&results); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.results = append(f.results, results...)

	default:
		http.NotFound(w, r)
	}
}

func newDriverRegistry() *testcase.Registry {
	registry := testcase.NewRegistry()
	registry.Register(&testcase.Class{
		Module: "pkg.mod",
		Name:   "ClassName",
		Methods: []testcase.Method{
			{Name: "test_pass", Func: func(t *testcase.T) {}},
			{Name: "test_fail", Func: func(t *testcase.T) { t.Errorf("wrong") }},
			{Name: "test_skip", Func: func(t *testcase.T) { t.Skip("later") }},
		},
	})
	return registry
}

func newDriverClient(t *testing.T, addr string) *RunnerClient {
	client, err := NewRunnerClient(
		Identity{RunnerId: "runner-1", ConnectAddr: addr},
		RetryConfig{},
		WithTransport(NewHTTPTransport(time.Second)),
		WithResolver(newDriverRegistry()),
	)
	require.NoError(t, err)
	return client
}

func TestDriverRun(t *testing.T) {
	coordinator := &fakeCoordinator{
		assignments: []*protocol.WorkAssignment{
			work("pkg.mod ClassName", "test_pass", "test_fail"),
			work("pkg.mod ClassName", "test_skip", "test_pass"),
		},
	}
	ts := httptest.NewServer(coordinator)
	defer ts.Close()

	driver := NewDriver(newDriverClient(t, ts.URL), NewHTTPReporter(time.Second))
	summary, err := driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Units)
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
	assert.False(t, summary.Ok())
	assert.NoError(t, summary.Disconnected)
	assert.Equal(t, "2 units, 2 passed, 1 failed, 1 skipped", summary.String())

	assert.Equal(t, 3, coordinator.requests)
	assert.Len(t, coordinator.results, 4)
	assert.Equal(t, "test_fail", coordinator.results[1].Method)
	assert.Equal(t, protocol.TestFailed, coordinator.results[1].Status)
	assert.Equal(t, "wrong", coordinator.results[1].Message)
}

func TestDriverResolutionError(t *testing.T) {
	coordinator := &fakeCoordinator{
		assignments: []*protocol.WorkAssignment{work("pkg.gone ClassName", "test_pass")},
	}
	ts := httptest.NewServer(coordinator)
	defer ts.Close()

	_, err := NewDriver(newDriverClient(t, ts.URL), nil).Run(context.Background())

	var resolutionErr *testcase.ResolutionError
	assert.True(t, errors.As(err, &resolutionErr))
}

func TestDriverDisconnected(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	summary, err := NewDriver(newDriverClient(t, addr), nil).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.Ok())
	assert.Equal(t, 0, summary.Units)

	var transportErr *TransportError
	assert.True(t, errors.As(summary.Disconnected, &transportErr))
}

func TestReporterErrorsAreNotFatal(t *testing.T) {
	coordinator := &fakeCoordinator{
		assignments: []*protocol.WorkAssignment{work("pkg.mod ClassName", "test_pass")},
	}
	mux := http.NewServeMux()
	mux.Handle(protocol.TestsPath, coordinator)
	mux.HandleFunc(protocol.ResultsPath, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	summary, err := NewDriver(newDriverClient(t, ts.URL), NewHTTPReporter(time.Second)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Passed)
}

func TestHTTPReporterStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "runner-1", r.URL.Query().Get("runner"))
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	err := NewHTTPReporter(time.Second).Report(context.Background(), Identity{RunnerId: "runner-1", ConnectAddr: ts.URL}, nil)

	var protocolErr *ProtocolError
	assert.True(t, errors.As(err, &protocolErr))
	assert.Equal(t, http.StatusBadRequest, protocolErr.StatusCode)
}

func TestSummaryMerge(t *testing.T) {
	a := Summary{Units: 1, Passed: 2}
	b := Summary{Units: 2, Failed: 1, Skipped: 3, Disconnected: errRefused}

	a.Merge(b)
	assert.Equal(t, Summary{Units: 3, Passed: 2, Failed: 1, Skipped: 3, Disconnected: errRefused}, a)
}
