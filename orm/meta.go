package orm

import (
	"github.com/kbukum/restorm/httpclient/rest"
	"github.com/kbukum/restorm/validation"
)

// Default query parameter names, matching Django REST framework.
const (
	DefaultOrderingParam = "ordering"
	DefaultLimitParam    = "limit"
	DefaultOffsetParam   = "offset"
	DefaultCountKey      = "count"
)

// Meta is the metadata a model type declares about its remote collection.
type Meta struct {
	// Path is the collection endpoint, relative to the client base URL or
	// absolute. Detail requests go to Path + "/" + id.
	Path string `json:"path" validate:"required,urlpath"`
	// ResultsKey names the array inside an enveloped list response, e.g.
	// "results". Empty means the list response is a bare array.
	ResultsKey string `json:"results_key" validate:"omitempty,identifier"`
	// CountKey names the total count inside an envelope. Defaults to "count".
	CountKey string `json:"count_key" validate:"omitempty,identifier"`
	// OrderingParam, LimitParam and OffsetParam name the query parameters.
	OrderingParam string `json:"ordering_param" validate:"omitempty,identifier"`
	LimitParam    string `json:"limit_param" validate:"omitempty,identifier"`
	OffsetParam   string `json:"offset_param" validate:"omitempty,identifier"`
	// PageSize, when positive, makes unlimited list queries walk the
	// collection page by page.
	PageSize int `json:"page_size" validate:"min=0"`
	// Client overrides the process default client.
	Client *rest.Client `json:"-" validate:"-"`
}

// Validate checks the metadata.
func (m *Meta) Validate() error {
	return validation.Validate(m)
}

func (m Meta) withDefaults() Meta {
	if m.CountKey == "" {
		m.CountKey = DefaultCountKey
	}
	if m.OrderingParam == "" {
		m.OrderingParam = DefaultOrderingParam
	}
	if m.LimitParam == "" {
		m.LimitParam = DefaultLimitParam
	}
	if m.OffsetParam == "" {
		m.OffsetParam = DefaultOffsetParam
	}
	return m
}
