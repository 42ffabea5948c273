package orm_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/kbukum/restorm/errors"
	"github.com/kbukum/restorm/orm"
)

type (
	Employee struct{ Person }
	Writer   struct{ orm.Model }
	Cat      struct{ orm.Model }
	Dog      struct{ orm.Model }
	Fish     struct{ orm.Model }
	Bird     struct{ orm.Model }
	Tracked  struct{ orm.Model }
	Broken   struct{ orm.Model }
	Retried  struct{ orm.Model }

	Order     struct{ orm.Model }
	OrderLine struct{ orm.Model }

	Manual      struct{ Machine }
	Machine     struct{ orm.Model }
	Loose       struct{ *orm.Model }
	LoosePerson struct{ *Person }
)

// recorder is a class-level attribute that notes when it is contributed.
type recorder struct {
	name string
	log  *[]string
	info *orm.Info
	err  error
}

func (r *recorder) ContributeToType(info *orm.Info) error {
	*r.log = append(*r.log, r.name)
	r.info = info
	return r.err
}

// related registers and instantiates OrderLine while its owner is being
// registered.
type related struct {
	target *orm.Info
}

func (r *related) ContributeToType(*orm.Info) error {
	lines, err := orm.Register[OrderLine](orm.WithMeta(orm.Meta{Path: "/lines"}))
	if err != nil {
		return err
	}
	if _, err := orm.New[OrderLine](map[string]any{"qty": 1}); err != nil {
		return err
	}
	r.target = lines.Info
	return nil
}

func TestRegister_Idempotent(t *testing.T) {
	again, err := orm.Register[Person](orm.WithName("Ignored"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if again != People {
		t.Error("registering twice should return the existing descriptor")
	}
	if again.Name != "Person" {
		t.Errorf("Name = %q, options of a repeated registration must be ignored", again.Name)
	}
}

func TestRegister_Descriptor(t *testing.T) {
	if !People.Registered() {
		t.Error("People should be registered")
	}
	if People.Module != "github.com/kbukum/restorm/orm_test" {
		t.Errorf("Module = %q", People.Module)
	}
	if People.Meta == nil || People.Meta.Path != "/people/" {
		t.Errorf("Meta = %+v", People.Meta)
	}
	if People.Objects.Model() != People {
		t.Error("default manager should be bound to its model type")
	}
	if m, ok := People.Manager("objects"); !ok || m != People.Objects {
		t.Error(`Manager("objects") should return the default manager`)
	}
	if _, ok := People.Manager("londoners"); !ok {
		t.Error("scoped manager should be registered as an attribute")
	}
	if names := People.AttrNames(); len(names) != 2 || names[0] != "londoners" || names[1] != "objects" {
		t.Errorf("AttrNames = %v", names)
	}
}

func TestRegister_FoundationalModel(t *testing.T) {
	base, err := orm.Register[orm.Model]()
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if base.Registered() {
		t.Error("Model itself must not be registered")
	}
	if base.Objects != nil {
		t.Error("Model must not get a manager")
	}
	again, _ := orm.Register[orm.Model]()
	if again == base {
		t.Error("Model registrations must not be recorded")
	}
}

func TestRegister_WithName(t *testing.T) {
	writers, err := orm.Register[Writer](orm.WithName("Author"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if writers.Name != "Author" {
		t.Errorf("Name = %q, want Author", writers.Name)
	}
	if writers.DoesNotExist.Model != "Author" {
		t.Errorf("DoesNotExist kind = %v", writers.DoesNotExist)
	}
	missing := apperrors.DoesNotExist("Author")
	if !errors.Is(missing, writers.DoesNotExist) {
		t.Error("Author error should match the Author kind")
	}
	if errors.Is(missing, People.DoesNotExist) {
		t.Error("Author error must not match the Person kind")
	}
}

func TestRegister_Parent(t *testing.T) {
	employees := orm.MustRegister[Employee]()
	if employees.Parent() != People.Info {
		t.Errorf("Parent = %v, want People", employees.Parent())
	}
	if People.Parent() != nil {
		t.Error("Person has no registered parent")
	}

	e := orm.MustNew[Employee](map[string]any{"name": "Ada"})
	if e.Type() != employees.Info {
		t.Error("instance should carry its own model type, not the parent's")
	}
}

func TestRegister_ParentRegisteredLater(t *testing.T) {
	manuals := orm.MustRegister[Manual]()
	machines := orm.MustRegister[Machine]()
	if manuals.Parent() != machines.Info {
		t.Errorf("Parent = %v, want Machine", manuals.Parent())
	}
}

func TestRegister_ContributorsInNameOrder(t *testing.T) {
	var log []string
	b := &recorder{name: "b", log: &log}
	a := &recorder{name: "a", log: &log}

	birds, err := orm.Register[Bird](orm.WithAttr("b", b), orm.WithAttr("a", a), orm.WithAttr("plain", 42))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if fmt.Sprint(log) != "[a b]" {
		t.Errorf("contribution order = %v, want [a b]", log)
	}
	if a.info != birds.Info || b.info != birds.Info {
		t.Error("contributors should receive the new descriptor")
	}
	if v, ok := birds.Attr("plain"); !ok || v != 42 {
		t.Errorf("plain attr = %v", v)
	}
}

func TestRegister_ContributorError(t *testing.T) {
	var log []string
	boom := apperrors.InvalidInput("attr", "boom")
	_, err := orm.Register[Broken](orm.WithAttr("x", &recorder{name: "x", log: &log, err: boom}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected contributor error, got %v", err)
	}

	// A failed registration records nothing, so a later one can succeed.
	broken, err := orm.Register[Broken]()
	if err != nil || !broken.Registered() {
		t.Fatalf("retry: %v", err)
	}
}

func TestRegister_RetryReleasesManagers(t *testing.T) {
	var log []string
	scoped := orm.NewScopedManager(func(q *orm.Queryset[Retried]) *orm.Queryset[Retried] {
		return q.Where("active", true)
	})
	boom := apperrors.InvalidInput("attr", "boom")

	_, err := orm.Register[Retried](
		orm.WithAttr("a_scoped", scoped),
		orm.WithAttr("z_fail", &recorder{name: "z_fail", log: &log, err: boom}),
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected contributor error, got %v", err)
	}
	if scoped.Model() != nil {
		t.Error("a failed registration should release the managers it bound")
	}

	retried, err := orm.Register[Retried](orm.WithAttr("a_scoped", scoped))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if scoped.Model() != retried {
		t.Error("retried registration should bind the scoped manager")
	}
}

func TestRegister_ContributorRegistersModel(t *testing.T) {
	done := make(chan error, 1)
	var orders *orm.Type[Order]
	go func() {
		var err error
		orders, err = orm.Register[Order](orm.WithAttr("lines", &related{}))
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Register did not return while a contributor registered another model")
	}

	attr, _ := orders.Attr("lines")
	lines := orm.MustRegister[OrderLine]()
	if attr.(*related).target != lines.Info {
		t.Error("contributor should see the registered OrderLine descriptor")
	}
	if !orders.Registered() || !lines.Registered() {
		t.Error("both models should be registered")
	}
}

func TestRegister_PointerEmbeddedModel(t *testing.T) {
	_, err := orm.Register[Loose]()
	assertCode(t, err, apperrors.ErrCodeInvalidInput)

	_, err = orm.Register[LoosePerson]()
	assertCode(t, err, apperrors.ErrCodeInvalidInput)
}

func TestRegister_ManagerAlreadyBound(t *testing.T) {
	shared := orm.NewManager[Cat]()
	if _, err := orm.Register[Cat](orm.WithAttr("shared", shared)); err != nil {
		t.Fatalf("Register Cat: %v", err)
	}
	_, err := orm.Register[Dog](orm.WithAttr("shared", shared))
	appErr := assertCode(t, err, apperrors.ErrCodeAlreadyBound)
	if appErr.Details["model"] != "Cat" {
		t.Errorf("model detail = %v, want Cat", appErr.Details["model"])
	}
}

func TestRegister_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []orm.Option
		code apperrors.ErrorCode
	}{
		{"reserved objects attr", []orm.Option{orm.WithAttr("objects", 1)}, apperrors.ErrCodeInvalidInput},
		{"manager for another type", []orm.Option{orm.WithManager(orm.NewManager[Cat])}, apperrors.ErrCodeInvalidInput},
		{"nil manager", []orm.Option{orm.WithManager(func() *orm.Manager[Fish] { return nil })}, apperrors.ErrCodeInvalidInput},
		{"missing path", []orm.Option{orm.WithMeta(orm.Meta{})}, apperrors.ErrCodeInvalidInput},
		{"path with query", []orm.Option{orm.WithMeta(orm.Meta{Path: "/fish?x=1"})}, apperrors.ErrCodeInvalidInput},
		{"bad results key", []orm.Option{orm.WithMeta(orm.Meta{Path: "/fish", ResultsKey: "has space"})}, apperrors.ErrCodeInvalidInput},
		{"negative page size", []orm.Option{orm.WithMeta(orm.Meta{Path: "/fish", PageSize: -1})}, apperrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := orm.Register[Fish](tt.opts...)
			assertCode(t, err, tt.code)
		})
	}
}

func TestRegister_CustomDefaultManager(t *testing.T) {
	tracked, err := orm.Register[Tracked](
		orm.WithMeta(orm.Meta{Path: "/tracked"}),
		orm.WithManager(func() *orm.Manager[Tracked] {
			return orm.NewScopedManager(func(q *orm.Queryset[Tracked]) *orm.Queryset[Tracked] {
				return q.Where("active", true)
			})
		}),
	)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := tracked.Objects.All().Params().Get("active"); got != "true" {
		t.Errorf("scoped default manager param = %q, want true", got)
	}
	if tracked.Objects.Model() != tracked {
		t.Error("custom manager should be bound")
	}
}

func TestMustRegister_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	orm.MustRegister[Fish](orm.WithMeta(orm.Meta{}))
}

func TestRegister_AnonymousType(t *testing.T) {
	_, err := orm.Register[struct{ orm.Model }]()
	assertCode(t, err, apperrors.ErrCodeInvalidInput)
}
