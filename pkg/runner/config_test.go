package runner

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/srand/jolt/testrunner/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func loadConfig(t *testing.T, settings map[string]interface{}) *RunnerConfig {
	v := viper.New()
	v.SetDefault("parallel", 1)
	for key, value := range settings {
		v.Set(key, value)
	}

	config := &RunnerConfig{}
	assert.NoError(t, utils.UnmarshalConfig(v, config))
	return config
}

func TestRunnerConfig(t *testing.T) {
	config := loadConfig(t, map[string]interface{}{
		"connect":               "coordinator:9000",
		"runner_id":             "runner-1",
		"revision":              "abc123",
		"retry_limit":           "5",
		"reconnect_retry_limit": 2,
		"retry_interval":        "0.5",
		"request_timeout":       "10s",
		"fail_on_disconnect":    "true",
		"log_file":              "/tmp/runner.log",
	})

	assert.NoError(t, config.Validate())
	assert.Equal(t, Identity{RunnerId: "runner-1", ConnectAddr: "coordinator:9000", Revision: "abc123"}, config.Identity())
	assert.Equal(t, RetryConfig{RetryLimit: 5, ReconnectRetryLimit: 2, RetryInterval: 500 * time.Millisecond}, config.RetryConfig())
	assert.Equal(t, 10*time.Second, config.RequestTimeout)
	assert.True(t, config.FailOnDisconnect)
	assert.Equal(t, "/tmp/runner.log", config.File)
	assert.Equal(t, 1, config.Parallel)
}

func TestRunnerConfigValidate(t *testing.T) {
	valid := func() *RunnerConfig {
		return &RunnerConfig{ConnectAddr: "coordinator:9000", RunnerId: "runner-1", Parallel: 1}
	}
	assert.NoError(t, valid().Validate())

	testCases := []func(c *RunnerConfig){
		func(c *RunnerConfig) { c.ConnectAddr = "" },
		func(c *RunnerConfig) { c.ConnectAddr = "ftp://coordinator" },
		func(c *RunnerConfig) { c.RunnerId = "" },
		func(c *RunnerConfig) { c.RetryLimit = -1 },
		func(c *RunnerConfig) { c.ReconnectRetryLimit = -1 },
		func(c *RunnerConfig) { c.RetryInterval = -time.Second },
		func(c *RunnerConfig) { c.RequestTimeout = -time.Second },
		func(c *RunnerConfig) { c.Parallel = 0 },
		func(c *RunnerConfig) { c.MetricsListen = "udp://:9100" },
	}

	for i, modify := range testCases {
		config := valid()
		modify(config)
		assert.Error(t, config.Validate(), "case %d", i)
	}
}
