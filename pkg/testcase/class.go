package testcase

import (
	"github.com/srand/jolt/testrunner/pkg/protocol"
)

// Method is a single named test.
type Method struct {
	Name string
	Func func(t *T)
}

// Class groups test methods under a module path and class name.
// SetUp and TearDown, when set, run around every method.
type Class struct {
	Module   string
	Name     string
	SetUp    func(t *T)
	TearDown func(t *T)
	Methods  []Method
}

// Path returns the class path as it appears on the wire.
func (c *Class) Path() string {
	return protocol.JoinClassPath(c.Module, c.Name)
}

func (c *Class) Method(name string) (Method, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

func (c *Class) MethodNames() []string {
	names := make([]string, 0, len(c.Methods))
	for _, m := range c.Methods {
		names = append(names, m.Name)
	}
	return names
}
