package orm

import (
	"github.com/kbukum/restorm/errors"
	"github.com/kbukum/restorm/value"
)

// Model is embedded by every restorm model type. It holds the fields bound
// from remote data and a link to the registered descriptor.
//
//	type Person struct {
//		orm.Model
//	}
//
// The zero Model has no fields and no descriptor. Instances built with New
// or Bind get both.
type Model struct {
	info   *Info
	fields *value.Object
}

// Bindable is satisfied by pointers to any struct embedding Model.
type Bindable interface {
	base() *Model
}

func (m *Model) base() *Model { return m }

// Type returns the descriptor of the instance's model type, or nil when the
// instance was never bound.
func (m *Model) Type() *Info {
	return m.info
}

// Objects always fails: managers are only reachable through the model type,
// e.g. People.Objects.
func (m *Model) Objects() error {
	name := "Model"
	if m.info != nil {
		name = m.info.Name
	}
	return errors.ManagerAccess(name)
}

// Get returns the bound value for key, or null when the key is not bound.
func (m *Model) Get(key string) value.Value {
	v, _ := m.Lookup(key)
	return v
}

// Lookup returns the bound value for key and whether it is bound.
func (m *Model) Lookup(key string) (value.Value, bool) {
	return m.fields.Get(key)
}

// Has reports whether key is bound.
func (m *Model) Has(key string) bool {
	return m.fields.Has(key)
}

// Set binds v under key, replacing any previous value.
func (m *Model) Set(key string, v value.Value) {
	m.ensureFields().Set(key, v)
}

// Keys returns the bound keys in binding order.
func (m *Model) Keys() []string {
	return m.fields.Keys()
}

// Fields returns a copy of all bound fields.
func (m *Model) Fields() *value.Object {
	if m.fields == nil {
		return value.NewObject(m.name())
	}
	return m.fields.Clone()
}

// Path walks nested containers, e.g. Path("profile", "age").
func (m *Model) Path(keys ...string) (value.Value, bool) {
	if len(keys) == 0 {
		return value.Null(), false
	}
	return value.ObjectValue(m.fields).Path(keys...)
}

func (m *Model) ensureFields() *value.Object {
	if m.fields == nil {
		m.fields = value.NewObject(m.name())
	}
	return m.fields
}

func (m *Model) name() string {
	if m.info == nil {
		return ""
	}
	return m.info.Name
}
