package linter

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownLinter is returned when a registry lookup names no linter.
var ErrUnknownLinter = errors.New("unknown linter")

// Factory constructs a fresh linter instance.
type Factory func() Linter

// Registry maps linter names to constructors. It is filled once at startup.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding every built-in linter.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister("ensure_timestamps", func() Linter { return EnsureTimestamps{} })
	r.MustRegister("check_shebang", func() Linter { return CheckShebang{} })
	r.MustRegister("check_for_empty_shell", func() Linter { return CheckForEmptyShell{} })
	return r
}

// Register adds a named factory. Empty and duplicate names are rejected.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("linter name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("linter %s: factory cannot be nil", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("linter %s is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister is Register for static tables; it panics on error.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// New constructs the linter registered under name.
func (r *Registry) New(name string) (Linter, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLinter, name)
	}
	return factory(), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns every registered name in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
