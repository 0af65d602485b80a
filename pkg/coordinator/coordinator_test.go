package coordinator

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/srand/jolt/testrunner/pkg/protocol"
	"github.com/srand/jolt/testrunner/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlan(revision string) *Plan {
	return &Plan{
		Revision: revision,
		Classes: []PlanEntry{
			{Class: "pkg.mod ClassName", Methods: []string{"test_a", "test_b"}},
			{Class: "pkg.mod Other", Methods: []string{"test_c"}},
		},
	}
}

func TestCoordinatorAssignsInOrder(t *testing.T) {
	c := NewCoordinator(newTestPlan(""), nil)

	first, err := c.Next("runner-1", "")
	require.NoError(t, err)
	assert.Equal(t, "pkg.mod ClassName", first.Class)
	assert.Equal(t, []string{"test_a", "test_b"}, first.Methods)
	assert.False(t, first.Finished)

	second, err := c.Next("runner-2", "")
	require.NoError(t, err)
	assert.Equal(t, "pkg.mod Other", second.Class)

	assert.False(t, c.Done())

	for _, runner := range []string{"runner-1", "runner-2", "runner-1"} {
		last, err := c.Next(runner, "")
		require.NoError(t, err)
		assert.True(t, last.Finished)
		assert.False(t, last.HasWork())
	}

	assert.True(t, c.Done())

	stats := c.Statistics()
	assert.Equal(t, 0, stats.Queued)
	assert.Equal(t, 2, stats.Assigned)
	assert.Equal(t, 2, stats.Runners)
	assert.Len(t, c.Runners(), 2)
}

func TestCoordinatorNotDoneUntilEveryRunnerFinished(t *testing.T) {
	c := NewCoordinator(&Plan{Classes: []PlanEntry{{Class: "pkg.mod ClassName", Methods: []string{"test_a"}}}}, nil)

	_, err := c.Next("runner-1", "")
	require.NoError(t, err)
	_, err = c.Next("runner-2", "")
	require.NoError(t, err)
	assert.False(t, c.Done())

	_, err = c.Next("runner-1", "")
	require.NoError(t, err)
	assert.True(t, c.Done())
}

func TestCoordinatorRevision(t *testing.T) {
	c := NewCoordinator(newTestPlan("abc123"), nil)

	_, err := c.Next("runner-1", "def456")
	assert.ErrorIs(t, err, utils.ErrRevisionMismatch)
	assert.Equal(t, 409, utils.HttpStatus(err))

	_, err = c.Next("runner-1", "")
	assert.ErrorIs(t, err, utils.ErrRevisionMismatch)

	assignment, err := c.Next("runner-1", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "pkg.mod ClassName", assignment.Class)
}

func TestCoordinatorMissingRunner(t *testing.T) {
	c := NewCoordinator(newTestPlan(""), nil)

	_, err := c.Next("", "")
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	assert.ErrorIs(t, c.Report("", nil), utils.ErrBadRequest)
	assert.Equal(t, 2, c.Statistics().Queued)
}

func TestCoordinatorReport(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	c := NewCoordinator(newTestPlan(""), metrics)

	err := c.Report("runner-1", []protocol.TestResult{
		{Class: "pkg.mod ClassName", Method: "test_a", Status: protocol.TestPassed},
		{Class: "pkg.mod ClassName", Method: "test_b", Status: protocol.TestFailed, Message: "boom"},
		{Class: "pkg.mod Other", Method: "test_c", Status: protocol.TestSkipped},
	})
	require.NoError(t, err)

	stats := c.Statistics()
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Len(t, c.Results(), 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Results.WithLabelValues("failed")))

	err = c.Report("runner-1", []protocol.TestResult{{Class: "pkg.mod Other", Method: "test_c", Status: "exploded"}})
	assert.ErrorIs(t, err, utils.ErrBadRequest)
	assert.Len(t, c.Results(), 3)
}

func TestCoordinatorMetrics(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	c := NewCoordinator(newTestPlan(""), metrics)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Queued))

	_, err := c.Next("runner-1", "")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Queued))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runners))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Assignments))
}

func TestCoordinatorDoesNotShareAssignmentSlices(t *testing.T) {
	plan := newTestPlan("")
	c := NewCoordinator(plan, nil)

	assignment, err := c.Next("runner-1", "")
	require.NoError(t, err)
	assignment.Methods[0] = "changed"

	assert.Equal(t, "test_a", plan.Classes[0].Methods[0])
}
