package coordinator

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srand/jolt/testrunner/pkg/log"
	"github.com/srand/jolt/testrunner/pkg/protocol"
	"github.com/srand/jolt/testrunner/pkg/utils"
)

// RunnerState is what the coordinator knows about one runner.
type RunnerState struct {
	Id       string
	Assigned int
	Results  int
	Finished bool
	LastSeen time.Time
}

// Statistics is a snapshot of coordinator progress.
type Statistics struct {
	Queued   int
	Assigned int
	Runners  int
	Passed   int
	Failed   int
	Skipped  int
}

// Coordinator hands out plan entries to runners in order. It implements
// no balancing of its own and is meant for local runs and tests.
type Coordinator struct {
	mu       sync.Mutex
	id       string
	revision string
	queue    []PlanEntry
	runners  map[string]*RunnerState
	results  []protocol.TestResult
	stats    Statistics
	metrics  *Metrics
}

func NewCoordinator(plan *Plan, metrics *Metrics) *Coordinator {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	uid, _ := uuid.NewRandom()
	c := &Coordinator{
		id:       uid.String(),
		revision: plan.Revision,
		queue:    append([]PlanEntry(nil), plan.Classes...),
		runners:  map[string]*RunnerState{},
		metrics:  metrics,
	}
	c.stats.Queued = len(c.queue)
	c.metrics.Queued.Set(float64(len(c.queue)))
	return c
}

// Id identifies this coordinator instance.
func (c *Coordinator) Id() string {
	return c.id
}

func (c *Coordinator) runner(id string) *RunnerState {
	state, ok := c.runners[id]
	if !ok {
		log.Info("New runner:", id)
		state = &RunnerState{Id: id}
		c.runners[id] = state
		c.stats.Runners = len(c.runners)
		c.metrics.Runners.Set(float64(len(c.runners)))
	}
	state.LastSeen = time.Now()
	return state
}

// Next returns the next assignment for a runner. Once the queue is empty
// every request is answered with a finished assignment.
func (c *Coordinator) Next(runnerId, revision string) (*protocol.WorkAssignment, error) {
	if runnerId == "" {
		return nil, fmt.Errorf("%w: missing runner", utils.ErrBadRequest)
	}

	if c.revision != "" && revision != c.revision {
		return nil, fmt.Errorf("%w: runner %s requested %q, serving %q", utils.ErrRevisionMismatch, runnerId, revision, c.revision)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.runner(runnerId)

	if len(c.queue) == 0 {
		if !state.Finished {
			log.Info("Runner finished:", runnerId)
		}
		state.Finished = true
		return protocol.FinishedAssignment(), nil
	}

	entry := c.queue[0]
	c.queue = c.queue[1:]
	state.Assigned++
	c.stats.Queued = len(c.queue)
	c.stats.Assigned++

	c.metrics.Queued.Set(float64(len(c.queue)))
	c.metrics.Assignments.Inc()

	log.Debugf("Assigned %s %v to %s", entry.Class, entry.Methods, runnerId)

	return &protocol.WorkAssignment{
		Class:   entry.Class,
		Methods: append([]string(nil), entry.Methods...),
	}, nil
}

// Report records results posted by a runner.
func (c *Coordinator) Report(runnerId string, results []protocol.TestResult) error {
	if runnerId == "" {
		return fmt.Errorf("%w: missing runner", utils.ErrBadRequest)
	}

	for _, r := range results {
		if !r.Status.IsValid() {
			return fmt.Errorf("%w: unknown status %q", utils.ErrBadRequest, r.Status)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.runner(runnerId)
	state.Results += len(results)

	for _, r := range results {
		switch r.Status {
		case protocol.TestPassed:
			c.stats.Passed++
		case protocol.TestFailed:
			c.stats.Failed++
			log.Warnf("%s %s.%s failed: %s", runnerId, r.Class, r.Method, r.Message)
		case protocol.TestSkipped:
			c.stats.Skipped++
		}
		c.metrics.Results.WithLabelValues(string(r.Status)).Inc()
	}

	c.results = append(c.results, results...)
	return nil
}

func (c *Coordinator) Statistics() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Coordinator) Results() []protocol.TestResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.TestResult(nil), c.results...)
}

func (c *Coordinator) Runners() []RunnerState {
	c.mu.Lock()
	defer c.mu.Unlock()

	runners := make([]RunnerState, 0, len(c.runners))
	for _, r := range c.runners {
		runners = append(runners, *r)
	}
	return runners
}

// Done returns true when all work has been handed out and every runner
// that took part has been told to finish.
func (c *Coordinator) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) > 0 {
		return false
	}
	for _, r := range c.runners {
		if !r.Finished {
			return false
		}
	}
	return true
}
