package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/srand/jolt/testrunner/pkg/protocol"
	"github.com/srand/jolt/testrunner/pkg/testcase"
	"github.com/stretchr/testify/mock"
)

var errRefused = errors.New("connection refused")

func transportError() error {
	return &TransportError{URL: "http://coordinator/tests", Err: errRefused}
}

func work(class string, methods ...string) *protocol.WorkAssignment {
	return &protocol.WorkAssignment{Class: class, Methods: methods}
}

func finished() *protocol.WorkAssignment {
	return protocol.FinishedAssignment()
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Request(ctx context.Context, identity Identity) (*protocol.WorkAssignment, error) {
	args := m.Called(identity)
	assignment, _ := args.Get(0).(*protocol.WorkAssignment)
	return assignment, args.Error(1)
}

// Records every requested sleep instead of waiting.
type recordingSleeper struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
	return ctx.Err()
}

func (s *recordingSleeper) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sleeps)
}

func testIdentity() Identity {
	return Identity{RunnerId: "runner-1", ConnectAddr: "coordinator:9000"}
}

func newTestRegistry() *testcase.Registry {
	registry := testcase.NewRegistry()
	for _, path := range []string{"pkg.mod ClassName", "pkg.mod Other", "pkg.other Third"} {
		module, name := protocol.SplitClassPath(path)
		class := &testcase.Class{Module: module, Name: name}
		for _, m := range []string{"test_a", "test_b", "test_c"} {
			class.Methods = append(class.Methods, testcase.Method{Name: m, Func: func(t *testcase.T) {}})
		}
		if err := registry.Register(class); err != nil {
			panic(err)
		}
	}
	return registry
}
