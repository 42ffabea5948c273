package orm

import (
	"context"
	"fmt"

	"github.com/kbukum/restorm/errors"
)

// Manager is the query entry point of a model type. It is bound to exactly
// one model type during registration and lives for the process.
type Manager[T any] struct {
	model *Type[T]
	scope func(*Queryset[T]) *Queryset[T]
}

// NewManager returns an unbound manager. Registration binds it.
func NewManager[T any]() *Manager[T] {
	return &Manager[T]{}
}

// NewScopedManager returns a manager whose querysets start from scope, e.g.
// a manager that only sees active records:
//
//	orm.WithAttr("active", orm.NewScopedManager(func(q *orm.Queryset[Person]) *orm.Queryset[Person] {
//		return q.Where("active", true)
//	}))
func NewScopedManager[T any](scope func(*Queryset[T]) *Queryset[T]) *Manager[T] {
	return &Manager[T]{scope: scope}
}

// ContributeToType binds the manager to its owning model type. Binding the
// same manager to a second model type fails with ALREADY_BOUND.
func (m *Manager[T]) ContributeToType(info *Info) error {
	if m.model != nil {
		if m.model.Info == info {
			return nil
		}
		return errors.AlreadyBound("manager", m.model.Name)
	}
	t, ok := info.owner.(*Type[T])
	if !ok {
		var zero T
		return errors.InvalidInput("manager", fmt.Sprintf("manager for %T cannot serve %s", zero, info.Name))
	}
	m.model = t
	return nil
}

// ReleaseType unbinds the manager from info, leaving it free for a retried
// registration.
func (m *Manager[T]) ReleaseType(info *Info) {
	if m.model != nil && m.model.Info == info {
		m.model = nil
	}
}

// Model returns the bound model type, nil before registration.
func (m *Manager[T]) Model() *Type[T] {
	return m.model
}

// All returns a fresh queryset over the model collection.
func (m *Manager[T]) All() *Queryset[T] {
	q := NewQueryset(m.model)
	if m.scope != nil {
		q = m.scope(q)
	}
	return q
}

// Filter is shorthand for All().Filter(filters).
func (m *Manager[T]) Filter(filters map[string]any) *Queryset[T] {
	return m.All().Filter(filters)
}

// Get fetches the resource with the given id from {path}/{id}. A missing
// resource fails with the model's DoesNotExist kind.
func (m *Manager[T]) Get(ctx context.Context, id string) (*T, error) {
	return m.All().Fetch(ctx, id)
}
