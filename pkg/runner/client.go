package runner

import (
	"time"

	"github.com/srand/jolt/testrunner/pkg/testcase"
	"github.com/srand/jolt/testrunner/pkg/utils"
)

// Identity identifies a runner to the coordinator.
type Identity struct {
	RunnerId    string
	ConnectAddr string
	// Optional. Scopes requests to a code revision.
	Revision string
}

// RetryConfig holds the retry budgets for the first request and for
// every request after it.
type RetryConfig struct {
	RetryLimit          int
	ReconnectRetryLimit int
	RetryInterval       time.Duration
}

// Resolver looks up a test class from a module path and class name.
type Resolver interface {
	Resolve(modulePath, className string) (*testcase.Class, error)
}

// Constructor builds a runnable unit limited to the named methods.
type Constructor func(class *testcase.Class, methods []string) testcase.Runnable

// RunnerClient pulls test units from a coordinator.
type RunnerClient struct {
	identity    Identity
	retry       RetryConfig
	transport   Transport
	resolver    Resolver
	constructor Constructor
	metrics     *Metrics
	sleep       SleepFunc
	policy      *RetryPolicy
}

type Option func(*RunnerClient)

func WithTransport(transport Transport) Option {
	return func(c *RunnerClient) { c.transport = transport }
}

func WithResolver(resolver Resolver) Option {
	return func(c *RunnerClient) { c.resolver = resolver }
}

func WithConstructor(constructor Constructor) Option {
	return func(c *RunnerClient) { c.constructor = constructor }
}

func WithMetrics(metrics *Metrics) Option {
	return func(c *RunnerClient) { c.metrics = metrics }
}

// WithSleep replaces the function used to wait between retries.
func WithSleep(sleep SleepFunc) Option {
	return func(c *RunnerClient) { c.sleep = sleep }
}

func NewRunnerClient(identity Identity, retry RetryConfig, opts ...Option) (*RunnerClient, error) {
	if identity.ConnectAddr == "" {
		return nil, &ConfigurationError{Field: "connect address", Reason: "is required"}
	}
	if _, err := utils.ParseConnectAddr(identity.ConnectAddr); err != nil {
		return nil, &ConfigurationError{Field: "connect address", Reason: "is invalid: " + err.Error()}
	}
	if identity.RunnerId == "" {
		return nil, &ConfigurationError{Field: "runner id", Reason: "is required"}
	}
	if retry.RetryLimit < 0 {
		return nil, &ConfigurationError{Field: "retry limit", Reason: "must not be negative"}
	}
	if retry.ReconnectRetryLimit < 0 {
		return nil, &ConfigurationError{Field: "reconnect retry limit", Reason: "must not be negative"}
	}
	if retry.RetryInterval < 0 {
		return nil, &ConfigurationError{Field: "retry interval", Reason: "must not be negative"}
	}

	c := &RunnerClient{
		identity:    identity,
		retry:       retry,
		resolver:    testcase.DefaultRegistry,
		constructor: testcase.NewUnit,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = NewHTTPTransport(DefaultRequestTimeout)
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}

	c.policy = NewRetryPolicy(c.transport, retry.RetryInterval, c.sleep, c.metrics)
	return c, nil
}

func (c *RunnerClient) Identity() Identity {
	return c.identity
}

func (c *RunnerClient) RetryConfig() RetryConfig {
	return c.retry
}

// Discover starts a new discovery stream. Streams are single use and
// share no state with each other.
func (c *RunnerClient) Discover() *DiscoveryStream {
	return newDiscoveryStream(c)
}
