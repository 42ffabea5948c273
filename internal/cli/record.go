package cli

import (
	"context"
	"strings"

	apperrors "github.com/kbukum/restorm/errors"
	"github.com/kbukum/restorm/config"
	"github.com/kbukum/restorm/orm"
)

// Record is the model the CLI binds every resource to. It declares no Meta;
// each query is pointed at its resource with Queryset.Using.
type Record struct {
	orm.Model
}

var records = orm.MustRegister[Record]()

func metaFor(r config.Resource) orm.Meta {
	return orm.Meta{
		Path:          r.Path,
		ResultsKey:    r.ResultsKey,
		CountKey:      r.CountKey,
		OrderingParam: r.OrderingParam,
		LimitParam:    r.LimitParam,
		OffsetParam:   r.OffsetParam,
		PageSize:      r.PageSize,
	}
}

// query returns an unrefined queryset over the named resource.
func (a *app) query(resource string) *orm.Queryset[Record] {
	return records.Objects.All().Using(metaFor(a.cfg.Resource(resource)))
}

// parseFilters turns key=value pairs into filters. A key given more than
// once becomes a list, which the API reads as a repeated parameter.
func parseFilters(pairs []string) (map[string]any, error) {
	filters := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, val, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperrors.InvalidInput("filter", "expected key=value, got "+pair)
		}
		switch prev := filters[key].(type) {
		case nil:
			filters[key] = val
		case string:
			filters[key] = []string{prev, val}
		case []string:
			filters[key] = append(prev, val)
		}
	}
	return filters, nil
}

// probe checks that a resource answers a one item query.
func (a *app) probe(resource string) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := a.query(resource).Exists(ctx)
		return err
	}
}
