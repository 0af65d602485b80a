package runner

import (
	"context"
	"io"
	"iter"

	"github.com/srand/jolt/testrunner/pkg/log"
	"github.com/srand/jolt/testrunner/pkg/protocol"
	"github.com/srand/jolt/testrunner/pkg/testcase"
)

// DiscoveryStream yields test units until the coordinator reports that
// no more work is available. It is forward only and cannot be restarted.
// A stream must not be used from more than one goroutine.
type DiscoveryStream struct {
	client       *RunnerClient
	firstConnect bool
	finished     bool
	err          error
}

func newDiscoveryStream(client *RunnerClient) *DiscoveryStream {
	return &DiscoveryStream{
		client:       client,
		firstConnect: true,
	}
}

// Next returns the next unit, or io.EOF once the stream has ended.
// Resolution errors are returned as is and end the stream.
func (s *DiscoveryStream) Next(ctx context.Context) (testcase.Runnable, error) {
	for !s.finished {
		limit := s.client.retry.ReconnectRetryLimit
		if s.firstConnect {
			limit = s.client.retry.RetryLimit
		}

		result := s.client.policy.Fetch(ctx, s.client.identity, limit)
		s.firstConnect = false

		if result.Cause != nil {
			s.err = result.Cause
		}

		assignment := result.Assignment
		s.finished = assignment.Finished

		if !assignment.HasWork() {
			continue
		}

		unit, err := s.resolve(assignment)
		if err != nil {
			s.finished = true
			return nil, err
		}

		s.client.metrics.unit(s.client.identity.RunnerId)
		return unit, nil
	}

	return nil, io.EOF
}

func (s *DiscoveryStream) resolve(assignment *protocol.WorkAssignment) (testcase.Runnable, error) {
	modulePath, className := protocol.SplitClassPath(assignment.Class)

	class, err := s.client.resolver.Resolve(modulePath, className)
	if err != nil {
		return nil, err
	}

	log.Debugf("Received %s with methods %v", assignment.Class, assignment.Methods)
	return s.client.constructor(class, assignment.Methods), nil
}

// All returns an iterator over the remaining units. Iteration stops
// after the first error.
func (s *DiscoveryStream) All(ctx context.Context) iter.Seq2[testcase.Runnable, error] {
	return func(yield func(testcase.Runnable, error) bool) {
		for {
			unit, err := s.Next(ctx)
			if err == io.EOF {
				return
			}
			if !yield(unit, err) || err != nil {
				return
			}
		}
	}
}

// Finished returns true once the stream has ended.
func (s *DiscoveryStream) Finished() bool {
	return s.finished
}

// Err returns the most recent transport or protocol error that was
// absorbed into a terminal assignment, or nil if the coordinator itself
// reported that it was finished.
func (s *DiscoveryStream) Err() error {
	return s.err
}
