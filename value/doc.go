// Package value holds the dynamic, JSON-shaped data bound onto restorm
// model instances.
//
// A Value is one of null, bool, number, string, array or object. Objects
// are ordered and carry a name so nested containers created while binding
// can be told apart:
//
//	src, _ := value.FromMap(map[string]any{"address": map[string]any{"city": "Paris"}})
//	dst := value.NewObject("Person")
//	_ = value.Merge(dst, src)
//	addr, _ := dst.Get("address") // object named "Address"
//
// Decode parses response bodies with goccy/go-json, keeping number literals
// intact.
package value
