package orm

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/kbukum/restorm/errors"
	"github.com/kbukum/restorm/value"
)

// Queryset is an immutable description of a query against a model's remote
// collection. Refinements return a new Queryset and never touch the
// receiver; nothing is sent until an execution method runs.
type Queryset[T any] struct {
	model    *Type[T]
	filters  url.Values
	ordering []string
	limit    int // <0 means unset
	offset   int
	meta     *Meta // overrides the model's Meta when set
	err      error
}

// NewQueryset returns an unfiltered queryset over t.
func NewQueryset[T any](t *Type[T]) *Queryset[T] {
	return &Queryset[T]{model: t, limit: -1}
}

// Model returns the model type the queryset is scoped to.
func (q *Queryset[T]) Model() *Type[T] {
	return q.model
}

func (q *Queryset[T]) clone() *Queryset[T] {
	c := *q
	c.filters = make(url.Values, len(q.filters))
	for k, vs := range q.filters {
		c.filters[k] = slices.Clone(vs)
	}
	c.ordering = slices.Clone(q.ordering)
	return &c
}

// Filter adds exact-match filters sent as query parameters. Keys are sent
// in sorted order; slices become repeated parameters.
func (q *Queryset[T]) Filter(filters map[string]any) *Queryset[T] {
	c := q.clone()
	for _, key := range slices.Sorted(maps.Keys(filters)) {
		c.addFilter(key, filters[key])
	}
	return c
}

// Where adds a single filter.
func (q *Queryset[T]) Where(key string, v any) *Queryset[T] {
	c := q.clone()
	c.addFilter(key, v)
	return c
}

func (q *Queryset[T]) addFilter(key string, v any) {
	if q.err != nil {
		return
	}
	if strings.TrimSpace(key) == "" {
		q.err = errors.InvalidInput("filter", "filter key is empty")
		return
	}
	vals, err := filterValues(key, v)
	if err != nil {
		q.err = err
		return
	}
	q.filters[key] = append(q.filters[key], vals...)
}

// filterValues renders a filter value as query parameter values. Null is
// sent as an empty value, arrays as one value per item.
func filterValues(key string, v any) ([]string, error) {
	val, err := value.FromAny(v)
	if err != nil {
		return nil, err
	}
	switch val.Kind() {
	case value.KindNull:
		return []string{""}, nil
	case value.KindObject:
		return nil, errors.TypeMismatch(key, "objects cannot be sent as filters")
	case value.KindArray:
		items, _ := val.AsArray()
		out := make([]string, 0, len(items))
		for _, it := range items {
			if it.Kind() == value.KindArray || it.Kind() == value.KindObject {
				return nil, errors.TypeMismatch(key, "nested values cannot be sent as filters")
			}
			out = append(out, it.String())
		}
		return out, nil
	}
	return []string{val.String()}, nil
}

// OrderBy replaces the ordering. A leading "-" sorts descending. Calling it
// without fields clears the ordering.
func (q *Queryset[T]) OrderBy(fields ...string) *Queryset[T] {
	c := q.clone()
	c.ordering = nil
	for _, f := range fields {
		if strings.TrimSpace(strings.TrimPrefix(f, "-")) == "" {
			if c.err == nil {
				c.err = errors.InvalidInput("ordering", "ordering field is empty")
			}
			continue
		}
		c.ordering = append(c.ordering, f)
	}
	return c
}

// Limit caps the number of results.
func (q *Queryset[T]) Limit(n int) *Queryset[T] {
	c := q.clone()
	if n < 0 && c.err == nil {
		c.err = errors.InvalidInput("limit", "must not be negative")
	}
	c.limit = n
	return c
}

// Offset skips the first n results.
func (q *Queryset[T]) Offset(n int) *Queryset[T] {
	c := q.clone()
	if n < 0 && c.err == nil {
		c.err = errors.InvalidInput("offset", "must not be negative")
	}
	c.offset = n
	return c
}

// Using directs the queryset at another collection, such as a nested
// endpoint "/authors/7/books/". The model's own Meta is ignored.
func (q *Queryset[T]) Using(meta Meta) *Queryset[T] {
	c := q.clone()
	if err := meta.Validate(); err != nil && c.err == nil {
		c.err = err
	}
	c.meta = &meta
	return c
}

func (q *Queryset[T]) effectiveMeta() *Meta {
	if q.meta != nil {
		return q.meta
	}
	if q.model != nil {
		return q.model.Meta
	}
	return nil
}

// Params returns the query parameters the queryset sends, with the
// parameter names of its Meta.
func (q *Queryset[T]) Params() url.Values {
	meta := Meta{}
	if m := q.effectiveMeta(); m != nil {
		meta = *m
	}
	return q.params(meta.withDefaults(), q.limit, q.offset)
}

func (q *Queryset[T]) params(meta Meta, limit, offset int) url.Values {
	p := q.filterParams()
	if len(q.ordering) > 0 {
		p.Set(meta.OrderingParam, strings.Join(q.ordering, ","))
	}
	if limit >= 0 {
		p.Set(meta.LimitParam, strconv.Itoa(limit))
	}
	if offset > 0 {
		p.Set(meta.OffsetParam, strconv.Itoa(offset))
	}
	return p
}

func (q *Queryset[T]) filterParams() url.Values {
	p := make(url.Values, len(q.filters)+3)
	for k, vs := range q.filters {
		p[k] = slices.Clone(vs)
	}
	return p
}
