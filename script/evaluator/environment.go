package evaluator

import (
	"maps"
	"slices"
)

// Environment is the single global table of variable bindings of a run.
// Bindings are never removed; assigning an existing name overwrites it.
type Environment struct {
	vars map[string]bool
}

func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]bool)}
}

func (e *Environment) Get(name string) (bool, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e *Environment) Set(name string, value bool) {
	e.vars[name] = value
}

func (e *Environment) Len() int {
	return len(e.vars)
}

// Names returns the bound names in sorted order.
func (e *Environment) Names() []string {
	return slices.Sorted(maps.Keys(e.vars))
}

// Snapshot returns a copy of the bindings.
func (e *Environment) Snapshot() map[string]bool {
	return maps.Clone(e.vars)
}
