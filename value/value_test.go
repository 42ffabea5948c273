package value

import (
	"math"
	"testing"

	"github.com/goccy/go-json"

	"github.com/kbukum/restorm/errors"
)

func mustMap(t *testing.T, m map[string]any) *Object {
	t.Helper()
	o, err := FromMap(m)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	return o
}

func TestZeroValueIsNull(t *testing.T) {
	var v Value
	if !v.IsNull() || v.Kind() != KindNull {
		t.Errorf("expected null, got %s", v.Kind())
	}
	if v.ToAny() != nil {
		t.Errorf("expected nil, got %v", v.ToAny())
	}
}

func TestAccessors(t *testing.T) {
	if b, ok := Bool(true).AsBool(); !ok || !b {
		t.Error("AsBool failed")
	}
	if s, ok := String("Ada").AsString(); !ok || s != "Ada" {
		t.Error("AsString failed")
	}
	if _, ok := String("1").AsInt(); ok {
		t.Error("string must not convert to int")
	}
	if n, ok := Int(30).AsInt(); !ok || n != 30 {
		t.Error("AsInt failed")
	}
	if n, ok := Number("1e2").AsInt(); !ok || n != 100 {
		t.Errorf("expected integral float to convert, got %d %v", n, ok)
	}
	if _, ok := Number("1.5").AsInt(); ok {
		t.Error("fractional number must not convert to int")
	}
	if f, ok := Float(1.5).AsFloat(); !ok || f != 1.5 {
		t.Error("AsFloat failed")
	}
	if !Float(math.NaN()).IsNull() {
		t.Error("NaN must become null")
	}
	arr := Array(Int(1), String("x"))
	if arr.Len() != 2 || !arr.Index(1).Equal(String("x")) || !arr.Index(5).IsNull() {
		t.Errorf("array accessors failed: %v", arr)
	}
	if ObjectValue(nil).Kind() != KindNull {
		t.Error("nil object must be null")
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindNull: "null", KindBool: "bool", KindNumber: "number",
		KindString: "string", KindArray: "array", KindObject: "object",
		Kind(42): "kind(42)",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"bool", true, Bool(true)},
		{"string", "Ada", String("Ada")},
		{"int", 30, Int(30)},
		{"int8", int8(-3), Int(-3)},
		{"uint64", uint64(math.MaxUint64), Number("18446744073709551615")},
		{"float", 1.25, Float(1.25)},
		{"json number", json.Number("12345678901234567890"), Number("12345678901234567890")},
		{"any slice", []any{1, "a", nil}, Array(Int(1), String("a"), Null())},
		{"typed slice", []string{"a", "b"}, Array(String("a"), String("b"))},
		{"typed map", map[string]int{"a": 1}, ObjectValue(mustObject("", "a", Int(1)))},
		{"value", String("kept"), String("kept")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromAny(tc.in)
			if err != nil {
				t.Fatalf("FromAny: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("FromAny(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func mustObject(name string, kv ...any) *Object {
	o := NewObject(name)
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1].(Value))
	}
	return o
}

func TestFromAnyUnsupported(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		wantKey string
	}{
		{"channel", make(chan int), ""},
		{"nested func", map[string]any{"a": map[string]any{"b": func() {}}}, "a.b"},
		{"int keyed map", map[int]string{1: "x"}, ""},
		{"nan in slice", []any{1, math.Inf(1)}, "[1]"},
		{"bad number", json.Number("abc"), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromAny(tc.in)
			if err == nil {
				t.Fatal("expected error")
			}
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != errors.ErrCodeTypeMismatch {
				t.Fatalf("expected TYPE_MISMATCH, got %v", err)
			}
			if key, _ := appErr.Details["key"].(string); key != tc.wantKey {
				t.Errorf("expected key %q, got %q", tc.wantKey, key)
			}
		})
	}
}

func TestFromMapSortsKeys(t *testing.T) {
	o := mustMap(t, map[string]any{"b": 1, "a": 2, "c": 3})
	keys := o.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("expected sorted keys, got %v", keys)
	}
}

func TestObjectOrderAndDelete(t *testing.T) {
	o := NewObject("Person")
	o.Set("name", String("Ada"))
	o.Set("age", Int(30))
	o.Set("name", String("Grace"))

	if keys := o.Keys(); len(keys) != 2 || keys[0] != "name" {
		t.Errorf("expected overwrite to keep position, got %v", keys)
	}
	if v, _ := o.Get("name"); !v.Equal(String("Grace")) {
		t.Errorf("expected overwritten value, got %v", v)
	}
	if !o.Delete("name") || o.Delete("missing") {
		t.Error("unexpected Delete result")
	}
	if o.Has("name") || o.Len() != 1 {
		t.Errorf("expected only age left, got %v", o.Keys())
	}

	var zero Object
	zero.Set("k", Null())
	if !zero.Has("k") {
		t.Error("zero Object must be usable")
	}
}

func TestValuePath(t *testing.T) {
	root := ObjectValue(mustMap(t, map[string]any{
		"profile": map[string]any{"address": map[string]any{"city": "Paris"}},
		"tags":    []any{"a"},
	}))

	city, ok := root.Path("profile", "address", "city")
	if !ok || !city.Equal(String("Paris")) {
		t.Errorf("expected Paris, got %v %v", city, ok)
	}
	if _, ok := root.Path("profile", "missing"); ok {
		t.Error("expected missing path")
	}
	if _, ok := root.Path("tags", "0"); ok {
		t.Error("arrays are not walked by key")
	}
	if v, ok := root.Path(); !ok || !v.Equal(root) {
		t.Error("empty path must return the value itself")
	}
	if !root.Field("profile").Field("address").Field("city").Equal(String("Paris")) {
		t.Error("Field chain failed")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := mustMap(t, map[string]any{"nested": map[string]any{"x": 1}, "list": []any{map[string]any{"y": 2}}})
	c := orig.Clone()

	nested, _ := c.Get("nested")
	obj, _ := nested.AsObject()
	obj.Set("x", Int(99))

	origNested, _ := orig.Get("nested")
	if !origNested.Field("x").Equal(Int(1)) {
		t.Error("clone shares nested objects with the original")
	}
}

func TestEqual(t *testing.T) {
	a := mustMap(t, map[string]any{"n": json.Number("1.0"), "s": "x"})
	b := NewObject("Other")
	b.Set("s", String("x"))
	b.Set("n", Int(1))

	if !a.Equal(b) {
		t.Error("expected objects equal regardless of order, name and number literal")
	}
	if Int(1).Equal(String("1")) {
		t.Error("different kinds must not be equal")
	}
	if Array(Int(1)).Equal(Array(Int(1), Int(2))) {
		t.Error("different lengths must not be equal")
	}
}

func TestToAny(t *testing.T) {
	o := mustMap(t, map[string]any{
		"i": 30, "f": 1.5, "s": "x", "b": false, "n": nil,
		"a": []any{1}, "o": map[string]any{"k": "v"},
	})
	got := o.ToMap()

	if got["i"] != int64(30) {
		t.Errorf("expected int64 30, got %T %v", got["i"], got["i"])
	}
	if got["f"] != 1.5 {
		t.Errorf("expected 1.5, got %v", got["f"])
	}
	if got["n"] != nil {
		t.Errorf("expected nil, got %v", got["n"])
	}
	if arr, ok := got["a"].([]any); !ok || arr[0] != int64(1) {
		t.Errorf("unexpected array %v", got["a"])
	}
	if m, ok := got["o"].(map[string]any); !ok || m["k"] != "v" {
		t.Errorf("unexpected object %v", got["o"])
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{String("Ada"), "Ada"},
		{Null(), "null"},
		{Bool(true), "true"},
		{Number("1e3"), "1e3"},
		{Array(Int(1), String("a\"b")), `[1,"a\"b"]`},
		{ObjectValue(mustObject("", "z", Int(1), "a", Null())), `{"z":1,"a":null}`},
	}
	for _, tc := range tests {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
