package orm

import (
	"reflect"
	"sort"

	"github.com/kbukum/restorm/errors"
	"github.com/kbukum/restorm/value"
)

// Info describes a model type independently of its Go type parameter.
type Info struct {
	// Name is the model name used in errors, logs and container names.
	Name string
	// GoType is the registered struct type.
	GoType reflect.Type
	// Module is the package path the model type was declared in.
	Module string
	// Meta is the declared metadata, nil when none was declared.
	Meta *Meta

	registered bool
	attrs      map[string]any
	owner      any // *Type[T]
}

// Registered reports whether the descriptor went through registration.
// Only the foundational Model type yields an unregistered descriptor.
func (i *Info) Registered() bool {
	return i != nil && i.registered
}

// Parent returns the nearest embedded model type that is registered, or nil.
// It is resolved on each call, so the order in which a model and the model
// it embeds are registered does not matter.
func (i *Info) Parent() *Info {
	if i == nil || i.GoType == nil {
		return nil
	}
	return parentOf(i.GoType)
}

// Attr returns a class-level attribute declared with WithAttr, or the
// manager under "objects".
func (i *Info) Attr(name string) (any, bool) {
	v, ok := i.attrs[name]
	return v, ok
}

// AttrNames returns the class-level attribute names in sorted order.
func (i *Info) AttrNames() []string {
	names := make([]string, 0, len(i.attrs))
	for name := range i.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (i *Info) contributors() []Contributor {
	var cs []Contributor
	for _, name := range i.AttrNames() {
		if c, ok := i.attrs[name].(Contributor); ok {
			cs = append(cs, c)
		}
	}
	return cs
}

// Contributor is implemented by class-level attributes that need to know the
// model type they were declared on. Register calls ContributeToType once per
// attribute, in attribute name order.
type Contributor interface {
	ContributeToType(info *Info) error
}

// Releaser is implemented by contributors that can undo ContributeToType.
// When a registration fails or loses a race after binding them, ReleaseType
// is called with the discarded descriptor.
type Releaser interface {
	ReleaseType(info *Info)
}

// Type is the registered descriptor of model type T.
type Type[T any] struct {
	*Info

	// Objects is the default manager. Nil for an unregistered descriptor.
	Objects *Manager[T]

	// DoesNotExist matches errors raised when a query for one T matched none.
	DoesNotExist errors.Kind
	// MultipleObjectsReturned matches errors raised when a query for one T
	// matched several.
	MultipleObjectsReturned errors.Kind

	newInstance func() (*T, *Model)
}

// Manager returns the manager declared under name, "objects" included.
func (t *Type[T]) Manager(name string) (*Manager[T], bool) {
	v, ok := t.Attr(name)
	if !ok {
		return nil, false
	}
	m, ok := v.(*Manager[T])
	return m, ok
}

// New creates an instance of T bound to data.
func (t *Type[T]) New(data map[string]any) (*T, error) {
	src, err := value.FromMap(data)
	if err != nil {
		return nil, err
	}
	return t.fromObject(src)
}

func (t *Type[T]) fromObject(src *value.Object) (*T, error) {
	inst, m := t.newInstance()
	m.info = t.Info
	if err := value.Merge(m.ensureFields(), src); err != nil {
		return nil, err
	}
	return inst, nil
}
