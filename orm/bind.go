package orm

import (
	"fmt"
	"reflect"

	"github.com/kbukum/restorm/errors"
	"github.com/kbukum/restorm/value"
)

// Bind merges data onto target. Nested mappings become nested containers:
// a missing key gets a fresh container named after it, an existing
// container is reused. Any other value is assigned as-is, null included.
// Binding a nested mapping onto a key holding a scalar fails with
// TYPE_MISMATCH; keys bound before the failure stay bound.
func Bind(target Bindable, data map[string]any) error {
	src, err := value.FromMap(data)
	if err != nil {
		return err
	}
	return BindObject(target, src)
}

// BindJSON decodes a JSON object and binds it onto target.
func BindJSON(target Bindable, data []byte) error {
	v, err := value.Decode(data)
	if err != nil {
		return err
	}
	if v.IsNull() {
		return nil
	}
	src, ok := v.AsObject()
	if !ok {
		return typeMismatch("", "an object", v)
	}
	return BindObject(target, src)
}

// BindObject merges src onto target.
func BindObject(target Bindable, src *value.Object) error {
	m, err := baseOf(target)
	if err != nil {
		return err
	}
	if m.info == nil {
		m.info = lookup(reflect.TypeOf(target).Elem())
	}
	return value.Merge(m.ensureFields(), src)
}

// New creates an instance of T bound to data. Nil or empty data yields an
// instance with no bound fields.
func New[T any, PT interface {
	*T
	Bindable
}](data map[string]any) (*T, error) {
	inst := new(T)
	m, err := baseOf(PT(inst))
	if err != nil {
		return nil, err
	}
	m.info = lookup(reflect.TypeFor[T]())
	if err := Bind(PT(inst), data); err != nil {
		return nil, err
	}
	return inst, nil
}

// MustNew is like New but panics on error.
func MustNew[T any, PT interface {
	*T
	Bindable
}](data map[string]any) *T {
	inst, err := New[T, PT](data)
	if err != nil {
		panic(err)
	}
	return inst
}

// baseOf returns the Model embedded in target, which must be a non-nil
// pointer to a struct holding Model by value.
func baseOf(target Bindable) (*Model, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || !embedsModel(rv.Type().Elem()) {
		return nil, errors.InvalidInput("model", fmt.Sprintf("%T is not a pointer to a struct embedding orm.Model by value", target))
	}
	return target.base(), nil
}
