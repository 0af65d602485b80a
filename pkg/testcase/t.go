package testcase

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type stopSignal struct{}

// T is handed to every test method to report failures.
type T struct {
	ctx     context.Context
	mu      sync.Mutex
	failed  bool
	skipped bool
	output  []string
}

func newT(ctx context.Context) *T {
	return &T{ctx: ctx}
}

// Context is cancelled when the runner is asked to stop.
func (t *T) Context() context.Context {
	return t.ctx
}

func (t *T) Logf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.output = append(t.output, fmt.Sprintf(format, args...))
}

func (t *T) Fail() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed = true
}

func (t *T) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

func (t *T) Errorf(format string, args ...interface{}) {
	t.Logf(format, args...)
	t.Fail()
}

// FailNow marks the test failed and stops running it.
func (t *T) FailNow() {
	t.Fail()
	panic(stopSignal{})
}

func (t *T) Fatalf(format string, args ...interface{}) {
	t.Logf(format, args...)
	t.FailNow()
}

// Skip marks the test skipped and stops running it.
func (t *T) Skip(args ...interface{}) {
	if len(args) > 0 {
		t.Logf("%s", strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
	}
	t.mu.Lock()
	t.skipped = true
	t.mu.Unlock()
	panic(stopSignal{})
}

func (t *T) Skipped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.skipped
}

func (t *T) message() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.output, "\n")
}

// Runs fn, converting stop signals and panics into test state.
func (t *T) run(fn func(t *T)) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(stopSignal); ok {
				return
			}
			t.Errorf("panic: %v", r)
		}
	}()
	fn(t)
}
