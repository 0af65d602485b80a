package testcase

import (
	"context"
	"time"

	"github.com/srand/jolt/testrunner/pkg/protocol"
)

// Runnable is an executable unit of work handed out by discovery.
type Runnable interface {
	// Name identifies the unit in logs.
	Name() string
	// Run executes the unit to completion and returns one result per method.
	Run(ctx context.Context) []protocol.TestResult
}

// Unit runs a restricted set of methods of one class.
type Unit struct {
	Class   *Class
	Methods []string
}

// NewUnit builds a unit that runs exactly the given methods, in order.
func NewUnit(class *Class, methodNames []string) Runnable {
	return &Unit{
		Class:   class,
		Methods: append([]string(nil), methodNames...),
	}
}

func (u *Unit) Name() string {
	return u.Class.Path()
}

func (u *Unit) Run(ctx context.Context) []protocol.TestResult {
	results := make([]protocol.TestResult, 0, len(u.Methods))

	for _, name := range u.Methods {
		if ctx.Err() != nil {
			results = append(results, u.result(name, protocol.TestSkipped, "runner stopped", 0))
			continue
		}

		method, ok := u.Class.Method(name)
		if !ok {
			results = append(results, u.result(name, protocol.TestFailed, "no such method", 0))
			continue
		}

		results = append(results, u.runMethod(ctx, method))
	}

	return results
}

func (u *Unit) runMethod(ctx context.Context, method Method) protocol.TestResult {
	start := time.Now()
	t := newT(ctx)

	if u.Class.SetUp != nil {
		t.run(u.Class.SetUp)
	}

	if !t.Failed() && !t.Skipped() && method.Func != nil {
		t.run(method.Func)
	}

	// Teardown runs even when the method failed or was skipped.
	if u.Class.TearDown != nil {
		t.run(u.Class.TearDown)
	}

	status := protocol.TestPassed
	switch {
	case t.Failed():
		status = protocol.TestFailed
	case t.Skipped():
		status = protocol.TestSkipped
	}

	return u.result(method.Name, status, t.message(), time.Since(start))
}

func (u *Unit) result(method string, status protocol.TestStatus, message string, duration time.Duration) protocol.TestResult {
	return protocol.TestResult{
		Class:    u.Class.Path(),
		Method:   method,
		Status:   status,
		Message:  message,
		Duration: duration,
	}
}
