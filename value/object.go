package value

// Object is an ordered set of named values. Its name labels the container
// it was synthesized for, e.g. "Address" for an "address" key. The zero
// Object is empty and ready to use.
type Object struct {
	name string
	keys []string
	vals map[string]Value
}

// NewObject returns an empty object with the given name.
func NewObject(name string) *Object {
	return &Object{name: name}
}

// Name returns the container name.
func (o *Object) Name() string {
	if o == nil {
		return ""
	}
	return o.name
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Has reports whether key is set.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Null(), false
	}
	v, ok := o.vals[key]
	return v, ok
}

// Set stores v under key. A new key is appended, an existing key keeps its
// position.
func (o *Object) Set(key string, v Value) {
	if o.vals == nil {
		o.vals = make(map[string]Value)
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if _, ok := o.vals[key]; !ok {
		return false
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Range calls fn for each key in order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.vals[k]) {
			return
		}
	}
}

// Clone returns a deep copy of o, name included.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := NewObject(o.name)
	for _, k := range o.keys {
		c.Set(k, o.vals[k].Clone())
	}
	return c
}

// Equal reports whether both objects hold equal values under the same keys.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for _, k := range o.Keys() {
		ov, ok := other.Get(k)
		if !ok {
			return false
		}
		if v, _ := o.Get(k); !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ToMap converts o to a plain map. See Value.ToAny.
func (o *Object) ToMap() map[string]any {
	m := make(map[string]any, o.Len())
	o.Range(func(k string, v Value) bool {
		m[k] = v.ToAny()
		return true
	})
	return m
}
