package main

import (
	"time"

	"github.com/srand/jolt/testrunner/pkg/testcase"
)

// Classes built into the runner binary. Plans refer to them as
// "jolt.demo Smoke" and "jolt.demo Timing".
func init() {
	testcase.MustRegister(&testcase.Class{
		Module: "jolt.demo",
		Name:   "Smoke",
		Methods: []testcase.Method{
			{Name: "test_pass", Func: func(t *testcase.T) {}},
			{Name: "test_fail", Func: func(t *testcase.T) {
				t.Errorf("expected %d, got %d", 1, 2)
			}},
			{Name: "test_skip", Func: func(t *testcase.T) {
				t.Skip("not supported on this runner")
			}},
		},
	})

	testcase.MustRegister(&testcase.Class{
		Module: "jolt.demo",
		Name:   "Timing",
		Methods: []testcase.Method{
			{Name: "test_sleep", Func: func(t *testcase.T) {
				select {
				case <-time.After(100 * time.Millisecond):
				case <-t.Context().Done():
					t.Fatalf("cancelled")
				}
			}},
		},
	})
}
