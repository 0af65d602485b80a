package testcase

import (
	"fmt"
	"sort"
	"sync"

	"github.com/srand/jolt/testrunner/pkg/protocol"
)

// ResolutionError is returned when a class path handed out by the
// coordinator does not name a registered class.
type ResolutionError struct {
	Module string
	Class  string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve test class %q in module %q: %s", e.Class, e.Module, e.Reason)
}

// Registry maps class paths to test classes.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*Class
	modules map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		classes: map[string]*Class{},
		modules: map[string]struct{}{},
	}
}

// DefaultRegistry is populated by Register, usually from init functions.
var DefaultRegistry = NewRegistry()

func Register(class *Class) error {
	return DefaultRegistry.Register(class)
}

func MustRegister(class *Class) {
	if err := DefaultRegistry.Register(class); err != nil {
		panic(err)
	}
}

func (r *Registry) Register(class *Class) error {
	if class == nil || class.Module == "" || class.Name == "" {
		return fmt.Errorf("test class must have a module and a name")
	}

	seen := map[string]struct{}{}
	for _, m := range class.Methods {
		if _, ok := seen[m.Name]; ok {
			return fmt.Errorf("test class %s has duplicate method %s", class.Path(), m.Name)
		}
		seen[m.Name] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.classes[class.Path()]; ok {
		return fmt.Errorf("test class %s is already registered", class.Path())
	}

	r.classes[class.Path()] = class
	r.modules[class.Module] = struct{}{}
	return nil
}

// Resolve looks up a class by module path and class name.
func (r *Registry) Resolve(modulePath, className string) (*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.modules[modulePath]; !ok {
		return nil, &ResolutionError{Module: modulePath, Class: className, Reason: "no such module"}
	}

	class, ok := r.classes[protocol.JoinClassPath(modulePath, className)]
	if !ok {
		return nil, &ResolutionError{Module: modulePath, Class: className, Reason: "no such class"}
	}

	return class, nil
}

// Classes returns all registered classes ordered by path.
func (r *Registry) Classes() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()

	classes := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].Path() < classes[j].Path()
	})
	return classes
}
