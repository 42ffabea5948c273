package orm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/restorm/errors"
	"github.com/kbukum/restorm/httpclient"
	"github.com/kbukum/restorm/httpclient/rest"
	"github.com/kbukum/restorm/logger"
	"github.com/kbukum/restorm/observability"
	"github.com/kbukum/restorm/value"
)

// call carries the resolved state of one execution.
type call struct {
	meta      Meta
	client    *rest.Client
	requestID string
}

// page is one decoded list response.
type page struct {
	items []*value.Object
	total int // -1 when the response carries no count
}

// List fetches every matching resource. With Meta.PageSize set and no
// explicit limit, the collection is walked page by page.
func (q *Queryset[T]) List(ctx context.Context) ([]*T, error) {
	var out []*T
	err := q.execute(ctx, "list", observability.SpanQuery, func(ctx context.Context, c call) (int, error) {
		objs, _, err := q.collect(ctx, c)
		if err != nil {
			return 0, err
		}
		out, err = q.instantiate(objs)
		return len(out), err
	})
	return out, err
}

// Get returns the single resource matching filters. No match fails with the
// model's DoesNotExist kind, several with MultipleObjectsReturned.
func (q *Queryset[T]) Get(ctx context.Context, filters map[string]any) (*T, error) {
	fq := q.Filter(filters)
	var out *T
	err := fq.execute(ctx, "get", observability.SpanQuery, func(ctx context.Context, c call) (int, error) {
		objs, total, err := fq.collect(ctx, c)
		if err != nil {
			return 0, err
		}
		switch n := len(objs); {
		case n == 0:
			return 0, errors.DoesNotExist(fq.model.Name)
		case n > 1:
			return 0, errors.MultipleObjectsReturned(fq.model.Name, max(n, total))
		}
		out, err = fq.model.fromObject(objs[0])
		if err != nil {
			return 0, err
		}
		return 1, nil
	})
	return out, err
}

// First returns the first matching resource, or the model's DoesNotExist
// error when nothing matches.
func (q *Queryset[T]) First(ctx context.Context) (*T, error) {
	fq := q
	if q.limit != 0 {
		fq = q.Limit(1)
	}
	var out *T
	err := fq.execute(ctx, "first", observability.SpanQuery, func(ctx context.Context, c call) (int, error) {
		if fq.limit == 0 {
			return 0, errors.DoesNotExist(fq.model.Name)
		}
		pg, err := fq.fetch(ctx, c, c.meta.Path, fq.params(c.meta, fq.limit, fq.offset))
		if err != nil {
			return 0, err
		}
		if len(pg.items) == 0 {
			return 0, errors.DoesNotExist(fq.model.Name)
		}
		out, err = fq.model.fromObject(pg.items[0])
		if err != nil {
			return 0, err
		}
		return 1, nil
	})
	return out, err
}

// Count returns the number of matching resources. Enveloped responses that
// carry a count are asked for a single item and the count is trusted.
func (q *Queryset[T]) Count(ctx context.Context) (int, error) {
	var count int
	err := q.execute(ctx, "count", observability.SpanQuery, func(ctx context.Context, c call) (int, error) {
		if q.limit < 0 && c.meta.ResultsKey != "" {
			pg, err := q.fetch(ctx, c, c.meta.Path, q.params(c.meta, 1, q.offset))
			if err != nil {
				return 0, err
			}
			if pg.total >= 0 {
				count = max(pg.total-q.offset, 0)
				return 0, nil
			}
		}
		objs, _, err := q.collect(ctx, c)
		if err != nil {
			return 0, err
		}
		count = len(objs)
		return 0, nil
	})
	return count, err
}

// Exists reports whether any resource matches.
func (q *Queryset[T]) Exists(ctx context.Context) (bool, error) {
	if q.limit == 0 && q.err == nil {
		return false, nil
	}
	var found bool
	fq := q.Limit(1)
	err := fq.execute(ctx, "exists", observability.SpanQuery, func(ctx context.Context, c call) (int, error) {
		pg, err := fq.fetch(ctx, c, c.meta.Path, fq.params(c.meta, 1, fq.offset))
		if err != nil {
			return 0, err
		}
		found = len(pg.items) > 0
		return 0, nil
	})
	return found, err
}

// Fetch retrieves one resource from {path}/{id}. The queryset's filters are
// sent along; ordering and slicing are ignored. A 404 fails with the model's
// DoesNotExist kind.
func (q *Queryset[T]) Fetch(ctx context.Context, id string) (*T, error) {
	var out *T
	err := q.execute(ctx, "fetch", observability.SpanFetch, func(ctx context.Context, c call) (int, error) {
		if strings.TrimSpace(id) == "" {
			return 0, errors.InvalidInput("id", "must not be empty")
		}
		body, err := q.get(ctx, c, detailPath(c.meta.Path, id), q.filterParams())
		if err != nil {
			if httpclient.IsNotFound(err) {
				return 0, errors.DoesNotExist(q.model.Name).WithDetail("id", id).WithCause(err)
			}
			return 0, err
		}
		pg, err := extractDetail(body)
		if err != nil {
			return 0, err
		}
		switch n := len(pg.items); {
		case n == 0:
			return 0, errors.DoesNotExist(q.model.Name).WithDetail("id", id)
		case n > 1:
			return 0, errors.MultipleObjectsReturned(q.model.Name, n)
		}
		out, err = q.model.fromObject(pg.items[0])
		if err != nil {
			return 0, err
		}
		return 1, nil
	})
	return out, err
}

// detailPath appends id to the collection path, keeping a trailing slash
// style: "/people" -> "/people/7", "/people/" -> "/people/7/".
func detailPath(path, id string) string {
	escaped := url.PathEscape(id)
	if strings.HasSuffix(path, "/") {
		return path + escaped + "/"
	}
	return path + "/" + escaped
}

// execute resolves the call, traces and measures fn, and logs the outcome.
func (q *Queryset[T]) execute(ctx context.Context, opName, spanName string, fn func(context.Context, call) (int, error)) error {
	if q.err != nil {
		return q.err
	}
	c, err := q.prepare()
	if err != nil {
		return err
	}

	op := observability.NewOperation(q.model.Name, opName, c.meta.Path, c.requestID, currentMetrics())
	ctx, span := op.Start(ctx, spanName)
	log := logger.Get("orm").WithFields(logger.Fields(
		logger.FieldModel, q.model.Name,
		logger.FieldOperation, opName,
		logger.FieldRequestID, c.requestID,
	))
	log.Debug("query started", logger.Fields(logger.FieldPath, c.meta.Path))

	n, err := fn(ctx, c)

	code := ""
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	op.End(ctx, span, n, code, err)

	fields := logger.DurationFields(opName, op.Duration())
	fields[logger.FieldCount] = n
	switch {
	case err == nil:
		log.Debug("query finished", fields)
	case stderrors.Is(err, DoesNotExist), stderrors.Is(err, MultipleObjectsReturned):
		log.Debug("query matched unexpected count", logger.MergeWithError(fields, err))
	default:
		log.Warn("query failed", logger.MergeWithError(fields, err))
	}
	return err
}

func (q *Queryset[T]) prepare() (call, error) {
	if q.model == nil || !q.model.Registered() {
		return call{}, errors.InvalidInput("model", "queryset is not bound to a registered model")
	}
	declared := q.effectiveMeta()
	if declared == nil {
		return call{}, errors.InvalidInput("meta", fmt.Sprintf("%s declares no Meta", q.model.Name))
	}
	meta := declared.withDefaults()
	if err := meta.Validate(); err != nil {
		return call{}, err
	}
	client := meta.Client
	if client == nil {
		client = DefaultClient()
	}
	if client == nil {
		return call{}, errors.InvalidInput("client", fmt.Sprintf("no client for %s: set Meta.Client or call orm.SetDefaultClient", q.model.Name))
	}
	return call{meta: meta, client: client, requestID: uuid.NewString()}, nil
}

// collect runs the list request, paging when Meta.PageSize asks for it.
func (q *Queryset[T]) collect(ctx context.Context, c call) ([]*value.Object, int, error) {
	size := c.meta.PageSize
	if size <= 0 || q.limit >= 0 {
		pg, err := q.fetch(ctx, c, c.meta.Path, q.params(c.meta, q.limit, q.offset))
		return pg.items, pg.total, err
	}

	var all, prev []*value.Object
	offset, total := q.offset, -1
	for {
		pg, err := q.fetch(ctx, c, c.meta.Path, q.params(c.meta, size, offset))
		if err != nil {
			return nil, total, err
		}
		if samePage(prev, pg.items) {
			return nil, total, ignoredOffset(c.meta, offset)
		}
		prev = pg.items
		all = append(all, pg.items...)
		total = pg.total
		offset += len(pg.items)
		// A page of any other size is either the last one or a server
		// ignoring the paging parameters.
		if len(pg.items) != size || (total >= 0 && offset >= total) {
			return all, total, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, total, err
		}
	}
}

// samePage reports whether a full page came back identical to the one
// before it, which happens when the server honours the limit but not the
// offset.
func samePage(prev, cur []*value.Object) bool {
	if len(prev) == 0 || len(prev) != len(cur) {
		return false
	}
	for i := range cur {
		if !prev[i].Equal(cur[i]) {
			return false
		}
	}
	return true
}

func ignoredOffset(meta Meta, offset int) error {
	err := errors.New(errors.ErrCodeExternalService,
		fmt.Sprintf("%s ignores %q: the page at offset %d repeats the previous one", meta.Path, meta.OffsetParam, offset),
		http.StatusBadGateway)
	err.Retryable = false
	return err.WithDetail("offset", offset)
}

// fetch performs one list GET and decodes the response into a page.
func (q *Queryset[T]) fetch(ctx context.Context, c call, path string, params url.Values) (page, error) {
	body, err := q.get(ctx, c, path, params)
	if err != nil {
		return page{total: -1}, err
	}
	return extract(body, c.meta)
}

// get performs one GET and returns the decoded body.
func (q *Queryset[T]) get(ctx context.Context, c call, path string, params url.Values) (value.Value, error) {
	resp, err := rest.Get[value.Value](ctx, c.client, path,
		rest.WithQuery(params),
		rest.WithRequestID(c.requestID),
	)
	if err != nil {
		return value.Null(), httpclient.ToAppError(c.client.Name(), err)
	}
	return resp.Data, nil
}

// extract reads the results out of a list response: a bare array, an
// envelope holding the array under ResultsKey, or a single object.
func extract(body value.Value, meta Meta) (page, error) {
	pg := page{total: -1}
	switch body.Kind() {
	case value.KindNull:
		return pg, nil
	case value.KindArray:
		return itemsOf(body, "")
	case value.KindObject:
		obj, _ := body.AsObject()
		if meta.ResultsKey != "" {
			if results, ok := obj.Get(meta.ResultsKey); ok {
				if results.Kind() != value.KindArray {
					return pg, typeMismatch(meta.ResultsKey, "an array", results)
				}
				pg, err := itemsOf(results, meta.ResultsKey)
				if total, ok := body.Field(meta.CountKey).AsInt(); ok && err == nil {
					pg.total = int(total)
				}
				return pg, err
			}
		}
		pg.items = []*value.Object{obj}
		return pg, nil
	}
	return pg, typeMismatch("body", "an object or array", body)
}

// extractDetail reads a detail response. An object is the resource itself
// and is never unwrapped, whatever keys it holds.
func extractDetail(body value.Value) (page, error) {
	switch body.Kind() {
	case value.KindNull:
		return page{total: -1}, nil
	case value.KindArray:
		return itemsOf(body, "")
	case value.KindObject:
		obj, _ := body.AsObject()
		return page{items: []*value.Object{obj}, total: -1}, nil
	}
	return page{total: -1}, typeMismatch("body", "an object or array", body)
}

func itemsOf(arr value.Value, prefix string) (page, error) {
	items, _ := arr.AsArray()
	pg := page{items: make([]*value.Object, 0, len(items)), total: -1}
	for i, it := range items {
		obj, ok := it.AsObject()
		if !ok {
			return page{total: -1}, typeMismatch(fmt.Sprintf("%s[%d]", prefix, i), "an object", it)
		}
		pg.items = append(pg.items, obj)
	}
	return pg, nil
}

func (q *Queryset[T]) instantiate(objs []*value.Object) ([]*T, error) {
	out := make([]*T, 0, len(objs))
	for _, obj := range objs {
		inst, err := q.model.fromObject(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func typeMismatch(key, want string, got value.Value) error {
	return errors.TypeMismatch(key, fmt.Sprintf("expected %s, got a %s", want, got.Kind()))
}
