package ormtest

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/restorm/errors"
	"github.com/kbukum/restorm/value"
)

func (s *Server) list(c *gin.Context, resource string, items []map[string]any) {
	query := c.Request.URL.Query()

	limit, err := intParam(query, s.limitParam, -1)
	if err != nil {
		respondError(c, err)
		return
	}
	offset, err := intParam(query, s.offsetParam, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	matched := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if s.matches(item, query) {
			matched = append(matched, item)
		}
	}
	if ordering := query.Get(s.orderingParam); ordering != "" {
		sortItems(matched, strings.Split(ordering, ","))
	}

	total := len(matched)
	pageItems := matched[min(offset, total):]
	if limit >= 0 && limit < len(pageItems) {
		pageItems = pageItems[:limit]
	}

	if s.resultsKey == "" {
		c.JSON(http.StatusOK, pageItems)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":      total,
		"next":       nil,
		"previous":   nil,
		s.resultsKey: pageItems,
	})
}

func (s *Server) detail(c *gin.Context, resource, id string, items []map[string]any) {
	for _, item := range items {
		if text(item[s.idKey]) == id && s.matches(item, c.Request.URL.Query()) {
			c.JSON(http.StatusOK, item)
			return
		}
	}
	respondNotFound(c, resource, id)
}

// matches applies exact-match filters. Repeated parameters match any of
// their values; "a__b" walks into nested objects.
func (s *Server) matches(item map[string]any, query url.Values) bool {
	for key, want := range query {
		if key == s.orderingParam || key == s.limitParam || key == s.offsetParam {
			continue
		}
		got, ok := lookup(item, key)
		if !ok {
			return false
		}
		gotText := text(got)
		found := false
		for _, w := range want {
			if gotText == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func lookup(item map[string]any, key string) (any, bool) {
	var cur any = item
	for _, part := range strings.Split(key, "__") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// text renders a stored value the way a query parameter spells it. Null
// matches the empty string.
func text(x any) string {
	v, err := value.FromAny(x)
	if err != nil || v.IsNull() {
		return ""
	}
	return v.String()
}

func sortItems(items []map[string]any, fields []string) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, f := range fields {
			desc := strings.HasPrefix(f, "-")
			key := strings.TrimPrefix(f, "-")
			a, _ := lookup(items[i], key)
			b, _ := lookup(items[j], key)
			cmp := compare(a, b)
			if cmp == 0 {
				continue
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// compare orders numbers numerically and everything else by its text.
func compare(a, b any) int {
	va, errA := value.FromAny(a)
	vb, errB := value.FromAny(b)
	if errA == nil && errB == nil {
		fa, okA := va.AsFloat()
		fb, okB := vb.AsFloat()
		if okA && okB {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(text(a), text(b))
}

func intParam(query url.Values, name string, def int) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.InvalidInput(name, "must be a non-negative integer")
	}
	return n, nil
}
