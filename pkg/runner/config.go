package runner

import (
	"errors"
	"time"

	"github.com/srand/jolt/testrunner/pkg/log"
	"github.com/srand/jolt/testrunner/pkg/utils"
)

type RunnerConfig struct {
	// Address of the coordinator, host:port or an http(s) URL.
	ConnectAddr string `mapstructure:"connect"`

	// Identity reported to the coordinator.
	RunnerId string `mapstructure:"runner_id"`

	// Code revision to request work for.
	Revision string `mapstructure:"revision"`

	// Retries allowed before the first successful request.
	RetryLimit int `mapstructure:"retry_limit"`

	// Retries allowed for every request after the first.
	ReconnectRetryLimit int `mapstructure:"reconnect_retry_limit"`

	// Delay between retries.
	RetryInterval time.Duration `mapstructure:"retry_interval"`

	// Timeout of a single request to the coordinator.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Number of independent runners in this process.
	Parallel int `mapstructure:"parallel"`

	// Exit with an error when discovery ended because the coordinator
	// could not be reached, rather than because it ran out of work.
	FailOnDisconnect bool `mapstructure:"fail_on_disconnect"`

	// Post results back to the coordinator.
	ReportResults bool `mapstructure:"report_results"`

	// Address to serve metrics on, tcp://<host>:<port>. Disabled if empty.
	MetricsListen string `mapstructure:"metrics_listen"`

	log.Options `mapstructure:",squash"`
}

// Checks if the runner configuration is valid.
func (c *RunnerConfig) Validate() error {
	if c.ConnectAddr == "" {
		return errors.New("A coordinator address is required")
	}

	if _, err := utils.ParseConnectAddr(c.ConnectAddr); err != nil {
		return errors.New("The coordinator address is not valid: " + err.Error())
	}

	if c.RunnerId == "" {
		return errors.New("A runner id is required")
	}

	if c.RetryLimit < 0 || c.ReconnectRetryLimit < 0 {
		return errors.New("Retry limits must not be negative")
	}

	if c.RetryInterval < 0 {
		return errors.New("The retry interval must not be negative")
	}

	if c.RequestTimeout < 0 {
		return errors.New("The request timeout must not be negative")
	}

	if c.Parallel <= 0 {
		return errors.New("The number of parallel runners must be greater than zero")
	}

	if c.MetricsListen != "" {
		if _, err := utils.ParseHttpUrl(c.MetricsListen); err != nil {
			return errors.New("The metrics address is not valid: " + err.Error())
		}
	}

	return nil
}

func (c *RunnerConfig) Identity() Identity {
	return Identity{
		RunnerId:    c.RunnerId,
		ConnectAddr: c.ConnectAddr,
		Revision:    c.Revision,
	}
}

func (c *RunnerConfig) RetryConfig() RetryConfig {
	return RetryConfig{
		RetryLimit:          c.RetryLimit,
		ReconnectRetryLimit: c.ReconnectRetryLimit,
		RetryInterval:       c.RetryInterval,
	}
}

func (c *RunnerConfig) Log() {
	log.Info("Runner configuration:")
	log.Infof("  connect = %s", c.ConnectAddr)
	log.Infof("  runner_id = %s", c.RunnerId)
	log.Infof("  revision = %s", c.Revision)
	log.Infof("  retry_limit = %d", c.RetryLimit)
	log.Infof("  reconnect_retry_limit = %d", c.ReconnectRetryLimit)
	log.Infof("  retry_interval = %v", c.RetryInterval)
	log.Infof("  request_timeout = %v", c.RequestTimeout)
	log.Infof("  parallel = %d", c.Parallel)
	log.Infof("  fail_on_disconnect = %v", c.FailOnDisconnect)
	log.Infof("  report_results = %v", c.ReportResults)
	log.Infof("  metrics_listen = %s", c.MetricsListen)
	log.Infof("  log_file = %s", c.File)
}
