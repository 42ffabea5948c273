// Package orm maps remote REST collections onto Go model types.
//
// A model is a struct embedding Model, registered once at package level:
//
//	type Person struct {
//		orm.Model
//	}
//
//	var People = orm.MustRegister[Person](orm.WithMeta(orm.Meta{
//		Path:       "/people/",
//		ResultsKey: "results",
//	}))
//
// Registration creates the model descriptor and binds its default manager,
// People.Objects. Managers are reached through the descriptor only; an
// instance's Objects method always fails with MANAGER_ACCESS.
//
// # Querying
//
// Managers hand out immutable querysets. Refinements return new querysets
// and no request is sent until an execution method runs:
//
//	adults, err := People.Objects.
//		Filter(map[string]any{"address__city": "London"}).
//		OrderBy("-age").
//		Limit(10).
//		List(ctx)
//
//	ada, err := People.Objects.All().Get(ctx, map[string]any{"name": "Ada"})
//	if errors.Is(err, People.DoesNotExist) {
//		...
//	}
//
// Filters become query parameters, ordering and slicing use the parameter
// names declared in Meta. List responses may be bare arrays or envelopes
// holding the array under Meta.ResultsKey.
//
// # Binding
//
// Remote objects are bound field by field. Nested objects become nested
// containers named after their key ("address" becomes "Address") and are
// reused when the same key is bound again:
//
//	p, _ := People.New(map[string]any{"address": map[string]any{"city": "London"}})
//	city, _ := p.Path("address", "city")
//
// # Errors
//
// Every model type carries DoesNotExist and MultipleObjectsReturned kinds
// usable as errors.Is targets. The package-level kinds of the same names
// match the error of any model.
package orm
