package coordinator

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/srand/jolt/testrunner/pkg/protocol"
	"github.com/srand/jolt/testrunner/pkg/utils"
	"gopkg.in/yaml.v3"
)

// PlanEntry is one unit of work: a class path and the methods to run.
type PlanEntry struct {
	Class   string   `yaml:"class"`
	Methods []string `yaml:"methods"`
}

// Plan is the full list of work handed out by a coordinator.
type Plan struct {
	// Revision that runners must request. Any revision is accepted if empty.
	Revision string      `yaml:"revision"`
	Classes  []PlanEntry `yaml:"classes"`
}

func (p *Plan) Validate() error {
	for i, entry := range p.Classes {
		module, class := protocol.SplitClassPath(entry.Class)
		if module == "" || class == "" {
			return fmt.Errorf("%w: entry %d: class %q is not of the form \"<module> <class>\"", utils.ErrParse, i, entry.Class)
		}
		if len(entry.Methods) == 0 {
			return fmt.Errorf("%w: entry %d: class %q has no methods", utils.ErrParse, i, entry.Class)
		}
	}
	return nil
}

// Methods returns the total number of methods in the plan.
func (p *Plan) Methods() int {
	count := 0
	for _, entry := range p.Classes {
		count += len(entry.Methods)
	}
	return count
}

func ParsePlan(data []byte) (*Plan, error) {
	plan := &Plan{}
	if err := yaml.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrParse, err)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return plan, nil
}

// LoadPlan reads and validates a YAML plan file.
func LoadPlan(fs afero.Fs, path string) (*Plan, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	plan, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return plan, nil
}
