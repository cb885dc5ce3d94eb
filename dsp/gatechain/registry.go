package gatechain

import (
	"errors"
	"fmt"
)

// Factory builds one Runtime instance for a node.
type Factory func(ctx Context) (Runtime, error)

// Registry maps node type names to their factories.
type Registry struct {
	factories map[string]Factory
}

var errDuplicateNode = errors.New("duplicate node type")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given node type.
func (r *Registry) Register(nodeType string, factory Factory) error {
	if nodeType == "" {
		return errors.New("empty node type")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[nodeType]; exists {
		return fmt.Errorf("%w: %s", errDuplicateNode, nodeType)
	}

	r.factories[nodeType] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(nodeType string, factory Factory) {
	err := r.Register(nodeType, factory)
	if err != nil {
		panic("gatechain registry: " + err.Error())
	}
}

// Lookup returns the factory for the given node type, or nil.
func (r *Registry) Lookup(nodeType string) Factory {
	return r.factories[nodeType]
}

// DefaultRegistry returns a Registry pre-populated with the built-in
// node runtimes.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister("lowpassgate", func(ctx Context) (Runtime, error) {
		return newLPGRuntime(ctx)
	})
	r.MustRegister("gain", func(_ Context) (Runtime, error) {
		return &gainRuntime{gain: 1}, nil
	})

	return r
}
