package orm

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/kbukum/restorm/errors"
	"github.com/kbukum/restorm/logger"
)

const managerAttr = "objects"

var (
	registryMu sync.Mutex
	registry   = make(map[reflect.Type]*Info)
	modelType  = reflect.TypeFor[Model]()
)

// Option configures a model registration.
type Option func(*options)

type options struct {
	name    string
	meta    *Meta
	manager any // func() *Manager[T]
	attrs   map[string]any
}

// WithName overrides the model name, which defaults to the Go type name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMeta declares the model metadata.
func WithMeta(meta Meta) Option {
	return func(o *options) { o.meta = &meta }
}

// WithManager replaces the default manager factory. The factory must return
// a *Manager[T] for the registered T.
func WithManager[T any](factory func() *Manager[T]) Option {
	return func(o *options) { o.manager = factory }
}

// WithAttr declares a class-level attribute. Values implementing Contributor
// are bound to the model type during registration.
func WithAttr(name string, v any) Option {
	return func(o *options) {
		if o.attrs == nil {
			o.attrs = make(map[string]any)
		}
		o.attrs[name] = v
	}
}

// Register wires model type T: it creates the descriptor, instantiates the
// manager and lets every class-level attribute contribute to the type.
// Registering an already registered type returns the existing descriptor and
// ignores opts. Registering Model itself returns an unregistered descriptor
// and records nothing.
//
// Contributors run without the registry lock held, so they may register or
// instantiate other models. A failed registration records nothing and can be
// retried.
func Register[T any, PT interface {
	*T
	Bindable
}](opts ...Option) (*Type[T], error) {
	goType := reflect.TypeFor[T]()
	if goType == modelType {
		return &Type[T]{Info: &Info{Name: goType.Name(), GoType: goType, Module: goType.PkgPath()}}, nil
	}
	if info, ok := registered(goType); ok {
		return info.owner.(*Type[T]), nil
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	t, err := build[T, PT](goType, &o)
	if err != nil {
		// A concurrent registration of T may have won while this one failed
		// on a shared attribute.
		if info, ok := registered(goType); ok {
			return info.owner.(*Type[T]), nil
		}
		return nil, err
	}

	registryMu.Lock()
	if info, ok := registry[goType]; ok {
		registryMu.Unlock()
		release(t.Info, t.contributors())
		return info.owner.(*Type[T]), nil
	}
	registry[goType] = t.Info
	registryMu.Unlock()

	logger.Get("orm").Debug("model registered", logger.Fields(
		logger.FieldModel, t.Name,
		"module", t.Module,
		"attributes", t.AttrNames(),
	))
	return t, nil
}

// MustRegister is like Register but panics on error. It is meant for
// package-level model declarations.
func MustRegister[T any, PT interface {
	*T
	Bindable
}](opts ...Option) *Type[T] {
	t, err := Register[T, PT](opts...)
	if err != nil {
		panic(fmt.Sprintf("orm: register %s: %v", reflect.TypeFor[T](), err))
	}
	return t
}

func build[T any, PT interface {
	*T
	Bindable
}](goType reflect.Type, o *options) (*Type[T], error) {
	name := o.name
	if name == "" {
		name = goType.Name()
	}
	if name == "" {
		return nil, errors.InvalidInput("name", "anonymous model types need WithName")
	}

	if !embedsModel(goType) {
		return nil, errors.InvalidInput("model", fmt.Sprintf("%s must embed orm.Model by value, not through a pointer", name))
	}
	if o.meta != nil {
		if err := o.meta.Validate(); err != nil {
			return nil, err
		}
	}

	info := &Info{
		Name:       name,
		GoType:     goType,
		Module:     goType.PkgPath(),
		Meta:       o.meta,
		registered: true,
		attrs:      make(map[string]any, len(o.attrs)+1),
	}
	t := &Type[T]{
		Info:                    info,
		DoesNotExist:            errors.KindOf(errors.ErrCodeDoesNotExist, name),
		MultipleObjectsReturned: errors.KindOf(errors.ErrCodeMultipleObjectsReturned, name),
		newInstance: func() (*T, *Model) {
			inst := new(T)
			return inst, PT(inst).base()
		},
	}
	info.owner = t

	manager := NewManager[T]()
	if o.manager != nil {
		factory, ok := o.manager.(func() *Manager[T])
		if !ok {
			return nil, errors.InvalidInput("manager", fmt.Sprintf("factory does not build a manager for %s", name))
		}
		if manager = factory(); manager == nil {
			return nil, errors.InvalidInput("manager", "factory returned nil")
		}
	}
	t.Objects = manager

	for attr, v := range o.attrs {
		if attr == managerAttr {
			return nil, errors.InvalidInput(attr, "reserved for the default manager")
		}
		info.attrs[attr] = v
	}
	info.attrs[managerAttr] = manager

	var bound []Contributor
	for _, c := range info.contributors() {
		if err := c.ContributeToType(info); err != nil {
			release(info, bound)
			return nil, err
		}
		bound = append(bound, c)
	}
	return t, nil
}

// release undoes the bindings of contributors that can be released, latest
// first.
func release(info *Info, bound []Contributor) {
	for i := len(bound) - 1; i >= 0; i-- {
		if r, ok := bound[i].(Releaser); ok {
			r.ReleaseType(info)
		}
	}
}

// embedsModel reports whether goType is Model or reaches it through
// embedded structs only. A Model behind an embedded pointer is nil in a new
// instance and cannot hold fields.
func embedsModel(goType reflect.Type) bool {
	if goType == modelType {
		return true
	}
	if goType.Kind() != reflect.Struct {
		return false
	}
	f, ok := goType.FieldByName(modelType.Name())
	if !ok || !f.Anonymous {
		return false
	}
	cur := goType
	for _, i := range f.Index {
		ft := cur.Field(i).Type
		if ft.Kind() == reflect.Pointer {
			return false
		}
		cur = ft
	}
	return cur == modelType
}

// parentOf finds the nearest embedded struct type that is itself registered.
func parentOf(goType reflect.Type) *Info {
	registryMu.Lock()
	defer registryMu.Unlock()

	queue := []reflect.Type{goType}
	seen := map[reflect.Type]bool{goType: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.Kind() != reflect.Struct {
			continue
		}
		for i := range cur.NumField() {
			f := cur.Field(i)
			if !f.Anonymous {
				continue
			}
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft == modelType || seen[ft] {
				continue
			}
			if info, ok := registry[ft]; ok {
				return info
			}
			seen[ft] = true
			queue = append(queue, ft)
		}
	}
	return nil
}

func registered(goType reflect.Type) (*Info, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	info, ok := registry[goType]
	return info, ok
}

// lookup returns the descriptor of goType, or an unregistered one naming it.
func lookup(goType reflect.Type) *Info {
	if info, ok := registered(goType); ok {
		return info
	}
	return &Info{Name: goType.Name(), GoType: goType, Module: goType.PkgPath()}
}
