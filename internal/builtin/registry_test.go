package builtin

import (
	"testing"

	"mint/internal/bytecode"
	"mint/internal/class"
	"mint/internal/container"
	"mint/internal/value"
)

func TestCreateBuiltinMemberInstallsGlobalFunction(t *testing.T) {
	r, symbols := newTestRegistry()
	cl := class.NewClass("Widget", "pkg", container.MetaObject)

	r.CreateBuiltinMember(cl, "ping", 0, func(ctx bytecode.HostContext) (*value.Data, error) {
		return r.String("pong"), nil
	})
	cl.Generate()

	fn := builtinOf(t, cl, symbols, "ping")
	got, err := fn(&fakeHostContext{})
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if got.Object.(*container.String).Value != "pong" {
		t.Errorf("ping() = %v, want pong", got.Object)
	}
}

func TestCreateBuiltinOperatorInstallsOverload(t *testing.T) {
	r, _ := newTestRegistry()
	cl := class.NewClass("Widget", "pkg", container.MetaObject)

	r.CreateBuiltinOperator(cl, class.OpAdd, 1, func(ctx bytecode.HostContext) (*value.Data, error) {
		return r.Number(42), nil
	})
	cl.Generate()

	fn := operatorOf(t, cl, class.OpAdd)
	got, err := fn(&fakeHostContext{})
	if err != nil {
		t.Fatalf("operator: %v", err)
	}
	if got.Number != 42 {
		t.Errorf("operator result = %v, want 42", got.Number)
	}
}

func TestCreateFreeFunctionInstallsPackageGlobal(t *testing.T) {
	r, symbols := newTestRegistry()
	pkg := class.NewPackage("demo")

	r.CreateFreeFunction(pkg, "answer", 0, func(ctx bytecode.HostContext) (*value.Data, error) {
		return r.Number(7), nil
	})

	fn := freeFunctionOf(t, pkg, symbols, "answer")
	got, err := fn(&fakeHostContext{})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got.Number != 7 {
		t.Errorf("answer() = %v, want 7", got.Number)
	}
}

func TestRegistryAllocHelpersTagFormatCorrectly(t *testing.T) {
	r, _ := newTestRegistry()

	if got := r.Number(3); got.Format != value.FmtNumber || got.Number != 3 {
		t.Errorf("Number(3) = %+v", got)
	}
	if got := r.Boolean(true); got.Format != value.FmtBoolean || !got.Boolean {
		t.Errorf("Boolean(true) = %+v", got)
	}
	if got := r.String("x"); got.Format != value.FmtObject || got.Object.(*container.String).Value != "x" {
		t.Errorf("String(x) = %+v", got)
	}
	arr := container.NewArray()
	if got := r.Array(arr); got.Object != arr {
		t.Errorf("Array should wrap the given *container.Array by reference")
	}
}
