package coordinator

import (
	"errors"

	"github.com/srand/jolt/testrunner/pkg/log"
	"github.com/srand/jolt/testrunner/pkg/utils"
)

type CoordinatorConfig struct {
	// Address to listen on, tcp://<host>:<port>.
	Listen string `mapstructure:"listen"`

	// Path to the YAML plan file.
	Plan string `mapstructure:"plan"`

	// Overrides the revision in the plan file when set.
	Revision string `mapstructure:"revision"`
}

func (c *CoordinatorConfig) Validate() error {
	if c.Plan == "" {
		return errors.New("A plan file is required")
	}

	if _, err := utils.ParseHttpUrl(c.Listen); err != nil {
		return errors.New("The listen address is not valid: " + err.Error())
	}

	return nil
}

func (c *CoordinatorConfig) Log() {
	log.Info("Coordinator configuration:")
	log.Infof("  listen = %s", c.Listen)
	log.Infof("  plan = %s", c.Plan)
	log.Infof("  revision = %s", c.Revision)
}
