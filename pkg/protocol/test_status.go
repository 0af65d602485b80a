package protocol

import "time"

type TestStatus string

const (
	TestPassed  TestStatus = "passed"
	TestFailed  TestStatus = "failed"
	TestSkipped TestStatus = "skipped"
)

// Should return true if the status counts against the run
func (status TestStatus) IsFailure() bool {
	return status == TestFailed
}

// Should return true if the status is one of the known values
func (status TestStatus) IsValid() bool {
	switch status {
	case TestPassed, TestFailed, TestSkipped:
		return true
	default:
		return false
	}
}

// TestResult is the outcome of one test method, as posted to the
// coordinator's results endpoint.
type TestResult struct {
	Class    string        `json:"class"`
	Method   string        `json:"method"`
	Status   TestStatus    `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}
