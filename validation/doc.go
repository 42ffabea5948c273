// Package validation checks model metadata, client configuration, and
// query arguments before anything goes over the wire.
//
// Struct tag validation uses go-playground/validator with two extra tags,
// identifier and urlpath:
//
//	type Meta struct {
//	    Path       string `validate:"required,urlpath"`
//	    ResultsKey string `validate:"omitempty,identifier"`
//	}
//	err := validation.Validate(meta)
//
// Programmatic validation collects errors before reporting them together:
//
//	err := validation.New().
//	    Identifier("attr", name).
//	    OptionalUUID("request_id", id).
//	    Err()
package validation
