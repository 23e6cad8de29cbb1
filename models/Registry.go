// Package models implements a registry of neural network architectures
// that serve as policy and value function approximators.
//
// A Builder turns a Config into a network function (Func), which adds
// the network to the Gorgonia graph of its inputs. Builders are looked
// up by name in a Registry:
//
//	reg := models.NewDefaultRegistry(logger)
//	build, err := reg.Get(models.Named("mlp"))
//	...
//	fn, err := build(models.DefaultConfig())
//	...
//	net, err := fn(models.Inputs{X: obs})
//
// Builders defined outside this package can be registered with
// Register, or passed around directly with Direct.
package models

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"
)

var (
	// ErrUnknownNetwork is returned when a network name is not registered
	ErrUnknownNetwork = errors.New("unknown network type")

	// ErrInvalidConfig is returned when a network cannot be constructed
	// from its configuration and inputs
	ErrInvalidConfig = errors.New("invalid network configuration")
)

// Identifier identifies a Builder either by its registered name or by
// the Builder itself.
type Identifier struct {
	name    string
	builder Builder
}

// Named returns an Identifier referring to the Builder registered as name
func Named(name string) Identifier {
	return Identifier{name: name}
}

// Direct returns an Identifier wrapping b, which resolves to b itself
// without consulting any Registry.
func Direct(b Builder) Identifier {
	return Identifier{builder: b}
}

// String implements the fmt.Stringer interface
func (i Identifier) String() string {
	if i.builder != nil {
		return "<direct builder>"
	}
	return i.name
}

// Registry maps names to Builders. The zero value is not usable; create
// Registries with NewRegistry or NewDefaultRegistry.
//
// Registering a name that is already registered replaces the previous
// Builder. A Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
	log      logr.Logger
}

// NewRegistry returns an empty Registry that logs registrations to log
func NewRegistry(log logr.Logger) *Registry {
	return &Registry{
		builders: make(map[string]Builder),
		log:      log.WithName("models"),
	}
}

// Register returns a function that registers a Builder as name and
// returns the Builder unchanged:
//
//	mine := reg.Register("mine")(func(c models.Config) (models.Func, error) {
//		...
//	})
func (r *Registry) Register(name string) func(Builder) Builder {
	return func(b Builder) Builder {
		r.mu.Lock()
		_, replaced := r.builders[name]
		r.builders[name] = b
		r.mu.Unlock()

		r.log.V(1).Info("registered network", "name", name,
			"replaced", replaced)
		return b
	}
}

// Get resolves an Identifier to a Builder. Direct identifiers resolve to
// their wrapped Builder. Named identifiers resolve to the Builder
// registered under exactly that name, or fail with ErrUnknownNetwork.
func (r *Registry) Get(id Identifier) (Builder, error) {
	if id.builder != nil {
		return id.builder, nil
	}

	r.mu.RLock()
	b, ok := r.builders[id.name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, id.name)
	}
	return b, nil
}

// Build resolves id and applies the resulting Builder to config
func (r *Registry) Build(id Identifier, config Config) (Func, error) {
	b, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	fn, err := b(config)
	if err != nil {
		return nil, fmt.Errorf("build %v: %w", id, err)
	}
	return fn, nil
}

// Names returns the registered names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered names
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.builders)
}
