package builtin

import (
	"testing"

	"mint/internal/class"
	"mint/internal/value"
)

const nativeKindTest = "test-kind"

func TestNewLibObjectClassDeclaresNativeSlot(t *testing.T) {
	r, symbols := newTestRegistry()
	pkg := class.NewPackage("demo")

	cl, slot := r.NewLibObjectClass(pkg, "Thing")
	if slot.Name != symbols.Intern("_native") {
		t.Errorf("NewLibObjectClass slot name = %v, want _native", slot.Name)
	}
	if _, ok := pkg.Global(symbols.Intern("Thing")); !ok {
		t.Error("NewLibObjectClass should register the class as a package global")
	}
	if len(cl.Slots) != 1 {
		t.Errorf("LibObject class should have exactly one declared slot, got %d", len(cl.Slots))
	}
}

func TestSetSelfNativeThenSelfNativeRoundTrip(t *testing.T) {
	r, _ := newTestRegistry()
	pkg := class.NewPackage("demo")
	cl, slot := r.NewLibObjectClass(pkg, "Thing")

	obj := cl.Construct()
	ctx := &fakeHostContext{self: &value.Data{Format: value.FmtObject, Object: obj}}

	if err := setSelfNative(ctx, slot, &Native{Kind: nativeKindTest, Value: 7}); err != nil {
		t.Fatalf("setSelfNative: %v", err)
	}
	n, err := selfNative(ctx, slot, nativeKindTest)
	if err != nil {
		t.Fatalf("selfNative: %v", err)
	}
	if n.Value.(int) != 7 {
		t.Errorf("selfNative round-tripped value = %v, want 7", n.Value)
	}
}

func TestSelfNativeRejectsWrongKind(t *testing.T) {
	r, _ := newTestRegistry()
	pkg := class.NewPackage("demo")
	cl, slot := r.NewLibObjectClass(pkg, "Thing")

	obj := cl.Construct()
	ctx := &fakeHostContext{self: &value.Data{Format: value.FmtObject, Object: obj}}
	setSelfNative(ctx, slot, &Native{Kind: "other-kind", Value: 1})

	if _, err := selfNative(ctx, slot, nativeKindTest); err == nil {
		t.Error("selfNative should reject a Native tagged with a different kind")
	}
}

func TestSelfNativeRejectsNilSelf(t *testing.T) {
	r, _ := newTestRegistry()
	pkg := class.NewPackage("demo")
	_, slot := r.NewLibObjectClass(pkg, "Thing")

	if _, err := selfNative(&fakeHostContext{}, slot, nativeKindTest); err == nil {
		t.Error("selfNative should reject a nil receiver")
	}
}
