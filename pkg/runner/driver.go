package runner

import (
	"context"
	"fmt"

	"github.com/srand/jolt/testrunner/pkg/log"
	"github.com/srand/jolt/testrunner/pkg/protocol"
)

// Summary totals the results of one discovery stream.
type Summary struct {
	Units   int
	Passed  int
	Failed  int
	Skipped int
	// The error that ended discovery early, if any.
	Disconnected error
}

func (s *Summary) add(results []protocol.TestResult) {
	s.Units++
	for _, r := range results {
		switch r.Status {
		case protocol.TestPassed:
			s.Passed++
		case protocol.TestFailed:
			s.Failed++
		case protocol.TestSkipped:
			s.Skipped++
		}
	}
}

// Merge adds the counts of other to s.
func (s *Summary) Merge(other Summary) {
	s.Units += other.Units
	s.Passed += other.Passed
	s.Failed += other.Failed
	s.Skipped += other.Skipped
	if s.Disconnected == nil {
		s.Disconnected = other.Disconnected
	}
}

func (s Summary) Ok() bool {
	return s.Failed == 0
}

func (s Summary) String() string {
	return fmt.Sprintf("%d units, %d passed, %d failed, %d skipped", s.Units, s.Passed, s.Failed, s.Skipped)
}

// Driver runs the units of a discovery stream one at a time.
type Driver struct {
	client   *RunnerClient
	reporter Reporter
}

func NewDriver(client *RunnerClient, reporter Reporter) *Driver {
	if reporter == nil {
		reporter = NopReporter()
	}

	return &Driver{
		client:   client,
		reporter: reporter,
	}
}

// Run pulls and runs units until the stream ends. The returned error is
// only set when a unit could not be resolved.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	identity := d.client.Identity()
	summary := Summary{}

	log.Info("Starting runner", identity.RunnerId)

	stream := d.client.Discover()
	for unit, err := range stream.All(ctx) {
		if err != nil {
			log.Error("Failed to load test unit:", err)
			return summary, err
		}

		log.Info("Running", unit.Name())
		results := unit.Run(ctx)
		summary.add(results)

		for _, r := range results {
			switch r.Status {
			case protocol.TestFailed:
				log.Warnf("  %s.%s %s: %s", unit.Name(), r.Method, r.Status, r.Message)
			default:
				log.Infof("  %s.%s %s (%v)", unit.Name(), r.Method, r.Status, r.Duration)
			}
		}

		if err := d.reporter.Report(ctx, identity, results); err != nil {
			log.Warn("Failed to report results:", err)
		}
	}

	summary.Disconnected = stream.Err()

	log.Infof("Runner %s done: %s", identity.RunnerId, summary)
	return summary, nil
}
