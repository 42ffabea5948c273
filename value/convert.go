package value

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/kbukum/restorm/errors"
)

// FromMap converts a JSON-shaped mapping into an unnamed object. Keys are
// added in sorted order so the result does not depend on map iteration.
func FromMap(m map[string]any) (*Object, error) {
	return fromMap("", m)
}

func fromMap(prefix string, m map[string]any) (*Object, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	o := NewObject("")
	for _, k := range keys {
		v, err := fromAny(join(prefix, k), m[k])
		if err != nil {
			return nil, err
		}
		o.Set(k, v)
	}
	return o, nil
}

// FromAny converts a Go value into a Value. It accepts nil, bool, strings,
// all numeric kinds, json.Number, Value, *Object, and slices or
// string-keyed maps of those. Anything else fails with TYPE_MISMATCH.
func FromAny(x any) (Value, error) {
	return fromAny("", x)
}

func fromAny(path string, x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t.Clone(), nil
	case *Object:
		return ObjectValue(t.Clone()), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if _, err := strconv.ParseFloat(string(t), 64); err != nil {
			return Null(), errors.TypeMismatch(path, fmt.Sprintf("invalid number %q", string(t)))
		}
		return Number(string(t)), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Number(strconv.FormatUint(uint64(t), 10)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return Number(strconv.FormatUint(t, 10)), nil
	case float32:
		return fromFloat(path, float64(t))
	case float64:
		return fromFloat(path, t)
	case map[string]any:
		o, err := fromMap(path, t)
		if err != nil {
			return Null(), err
		}
		return ObjectValue(o), nil
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			v, err := fromAny(index(path, i), it)
			if err != nil {
				return Null(), err
			}
			items[i] = v
		}
		return Value{kind: KindArray, arr: items}, nil
	}
	return fromReflect(path, reflect.ValueOf(x))
}

func fromFloat(path string, f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null(), errors.TypeMismatch(path, "number has no JSON representation")
	}
	return Float(f), nil
}

// fromReflect handles typed slices and string-keyed maps such as
// []string or map[string]int.
func fromReflect(path string, rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			v, err := fromAny(index(path, i), rv.Index(i).Interface())
			if err != nil {
				return Null(), err
			}
			items[i] = v
		}
		return Value{kind: KindArray, arr: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		o, err := fromMap(path, m)
		if err != nil {
			return Null(), err
		}
		return ObjectValue(o), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		return fromAny(path, rv.Elem().Interface())
	}
	return Null(), errors.TypeMismatch(path, fmt.Sprintf("unsupported type %T", rv.Interface()))
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
