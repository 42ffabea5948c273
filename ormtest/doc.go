// Package ormtest provides an in-memory REST API for exercising restorm
// models without a real backend.
//
// Collections are seeded by path. A GET on the path lists the collection,
// a GET on path/{id} returns the item whose id field matches:
//
//	srv := ormtest.Start(t, ormtest.WithEnvelope("results"))
//	srv.Seed("people", map[string]any{"id": 1, "name": "Ada"})
//	orm.SetDefaultClient(srv.MustClient(t))
//
// List routes understand exact-match filters (repeated parameters match
// any of their values, "a__b" walks nested objects), comma separated
// ordering with a "-" prefix for descending, and limit/offset paging.
// Failures are injected with FailNext; every request is recorded.
package ormtest
