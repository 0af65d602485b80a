package runner

import (
	"context"
	"errors"
	"time"

	"github.com/srand/jolt/testrunner/pkg/log"
	"github.com/srand/jolt/testrunner/pkg/protocol"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchResult is the outcome of RetryPolicy.Fetch.
type FetchResult struct {
	// Never nil.
	Assignment *protocol.WorkAssignment
	// Set when Assignment is a terminal assignment standing in for an
	// error that was absorbed. Callers cannot otherwise tell it apart
	// from a coordinator that has run out of work.
	Cause error
}

// RetryPolicy retries transport failures a bounded number of times with
// a constant delay. Any other failure ends discovery immediately.
type RetryPolicy struct {
	transport Transport
	interval  time.Duration
	sleep     SleepFunc
	metrics   *Metrics
}

func NewRetryPolicy(transport Transport, interval time.Duration, sleep SleepFunc, metrics *Metrics) *RetryPolicy {
	if sleep == nil {
		sleep = sleepContext
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &RetryPolicy{
		transport: transport,
		interval:  interval,
		sleep:     sleep,
		metrics:   metrics,
	}
}

// Fetch requests work, retrying up to limit times on transport errors.
// The transport is called at most limit+1 times.
func (p *RetryPolicy) Fetch(ctx context.Context, identity Identity, limit int) FetchResult {
	for {
		assignment, err := p.transport.Request(ctx, identity)
		if err == nil {
			p.metrics.request(identity.RunnerId, outcomeOk)
			return FetchResult{Assignment: assignment}
		}

		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			var protocolErr *ProtocolError
			if errors.As(err, &protocolErr) {
				log.Warnf("Got HTTP status %d when requesting tests -- bailing", protocolErr.StatusCode)
				log.DebugError(err)
				p.metrics.request(identity.RunnerId, outcomeProtocolError)
			} else {
				log.Warnf("Got error %v when requesting tests -- bailing", err)
				p.metrics.request(identity.RunnerId, outcomeError)
			}
			return terminal(err)
		}

		p.metrics.request(identity.RunnerId, outcomeTransportError)

		if limit <= 0 || ctx.Err() != nil {
			log.Debugf("Not retrying request for tests: %v", err)
			return terminal(err)
		}

		log.Warnf("Got error %v when requesting tests, retrying %d more times.", err, limit)

		if err := p.sleep(ctx, p.interval); err != nil {
			return terminal(err)
		}

		limit--
		p.metrics.retry(identity.RunnerId)
	}
}

func terminal(cause error) FetchResult {
	return FetchResult{
		Assignment: protocol.FinishedAssignment(),
		Cause:      cause,
	}
}
