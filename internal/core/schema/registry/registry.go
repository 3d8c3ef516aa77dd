// Package registry maps component type names to component factories.
package registry

import (
	"errors"
	"fmt"

	"github.com/zeusync/worldsave/internal/core/models"
)

var (
	ErrUnknownType       = errors.New("unknown component type")
	ErrAlreadyRegistered = errors.New("component type already registered")
	ErrInvalidType       = errors.New("invalid component type")
)

// TypeRegistry resolves component types by name and enumerates them in
// registration order.
type TypeRegistry interface {
	AllTypes() []models.ComponentType
	TypeOf(name string) (models.ComponentType, error)
}

// Option configures a Registry.
type Option func(*Registry)

// WithFallback makes TypeOf resolve names that were never registered through
// fallback instead of failing. Fallback types are not listed by AllTypes.
func WithFallback(fallback func(name string) models.ComponentType) Option {
	return func(r *Registry) {
		r.fallback = fallback
	}
}

// Registry is an in-memory TypeRegistry. It is not safe for concurrent
// registration; register everything during startup.
type Registry struct {
	byName   map[string]int
	types    []models.ComponentType
	fallback func(name string) models.ComponentType
}

var _ TypeRegistry = (*Registry)(nil)

func New(opts ...Option) *Registry {
	r := &Registry{byName: make(map[string]int)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a component type under name.
func (r *Registry) Register(name string, factory func() models.Component) error {
	if name == "" || factory == nil {
		return fmt.Errorf("%w: %q", ErrInvalidType, name)
	}
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	if got := factory().TypeName(); got != name {
		return fmt.Errorf("%w: factory for %q produces %q", ErrInvalidType, name, got)
	}
	r.byName[name] = len(r.types)
	r.types = append(r.types, models.NewComponentType(name, factory))
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name string, factory func() models.Component) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// AllTypes returns the registered types in registration order.
func (r *Registry) AllTypes() []models.ComponentType {
	out := make([]models.ComponentType, len(r.types))
	copy(out, r.types)
	return out
}

func (r *Registry) TypeOf(name string) (models.ComponentType, error) {
	if i, ok := r.byName[name]; ok {
		return r.types[i], nil
	}
	if r.fallback != nil && name != "" {
		return r.fallback(name), nil
	}
	return models.ComponentType{}, fmt.Errorf("%w: %s", ErrUnknownType, name)
}

// Has reports whether name was registered explicitly.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

func (r *Registry) Len() int {
	return len(r.types)
}
