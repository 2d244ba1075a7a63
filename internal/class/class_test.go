package class

import (
	"testing"

	"mint/internal/container"
	"mint/internal/errors"
	"mint/internal/symbol"
	"mint/internal/value"
)

func sym(table *symbol.Table, name string) *symbol.Symbol { return table.Intern(name) }

func member(s *symbol.Symbol, flags value.Flags) *MemberInfo {
	return &MemberInfo{Name: s, Flags: flags}
}

func TestDeclareAssignsOffsetsInDeclarationOrder(t *testing.T) {
	table := symbol.NewTable()
	c := NewClass("Point", "geo", container.MetaObject)
	c.Declare(member(sym(table, "x"), value.FlagNone))
	c.Declare(member(sym(table, "y"), value.FlagNone))

	if err := c.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(c.Slots) != 2 {
		t.Fatalf("Slots len = %d, want 2", len(c.Slots))
	}
	if c.Slots[0].Name.Name != "x" || c.Slots[1].Name.Name != "y" {
		t.Errorf("Slots = [%s %s], want [x y]", c.Slots[0].Name.Name, c.Slots[1].Name.Name)
	}
}

func TestSingleInheritanceAdoptsBaseSlotsFirst(t *testing.T) {
	table := symbol.NewTable()
	base := NewClass("Animal", "zoo", container.MetaObject)
	base.Declare(member(sym(table, "name"), value.FlagNone))
	if err := base.Generate(); err != nil {
		t.Fatalf("base Generate: %v", err)
	}

	derived := NewClass("Dog", "zoo", container.MetaObject)
	derived.AddBase(base)
	derived.Declare(member(sym(table, "breed"), value.FlagNone))
	if err := derived.Generate(); err != nil {
		t.Fatalf("derived Generate: %v", err)
	}

	if len(derived.Slots) != 2 {
		t.Fatalf("Slots len = %d, want 2", len(derived.Slots))
	}
	if derived.Slots[0].Name.Name != "name" || derived.Slots[1].Name.Name != "breed" {
		t.Errorf("Slots = [%s %s], want [name breed]", derived.Slots[0].Name.Name, derived.Slots[1].Name.Name)
	}
}

func TestDiamondInheritanceLinearizesWithoutDuplicateSlots(t *testing.T) {
	table := symbol.NewTable()
	root := NewClass("Base", "pkg", container.MetaObject)
	root.Declare(member(sym(table, "id"), value.FlagNone))
	root.Generate()

	left := NewClass("Left", "pkg", container.MetaObject)
	left.AddBase(root)
	left.Generate()

	right := NewClass("Right", "pkg", container.MetaObject)
	right.AddBase(root)
	right.Generate()

	diamond := NewClass("Diamond", "pkg", container.MetaObject)
	diamond.AddBase(left)
	diamond.AddBase(right)
	if err := diamond.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	count := 0
	for _, m := range diamond.Slots {
		if m.Name.Name == "id" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("id slot appears %d times in a diamond, want 1", count)
	}
	if !diamond.IsSubclassOf(root) {
		t.Error("Diamond should be a subclass of Base through either path")
	}
}

func TestGenerateRejectsFinalOverride(t *testing.T) {
	table := symbol.NewTable()
	base := NewClass("Sealed", "pkg", container.MetaObject)
	base.Declare(member(sym(table, "locked"), value.FlagFinal))
	base.Generate()

	derived := NewClass("Breaker", "pkg", container.MetaObject)
	derived.AddBase(base)
	derived.Declare(member(sym(table, "locked"), value.FlagNone))

	err := derived.Generate()
	if err == nil {
		t.Fatal("Generate should reject overriding a final member")
	}
	if me, ok := err.(*errors.MintError); !ok || me.Kind != errors.Visibility {
		t.Errorf("error = %v, want a Visibility MintError", err)
	}
}

func TestGenerateRequiresOverrideFlagForBaseCollision(t *testing.T) {
	table := symbol.NewTable()
	base := NewClass("Shape", "pkg", container.MetaObject)
	base.Declare(member(sym(table, "area"), value.FlagNone))
	base.Generate()

	derived := NewClass("Square", "pkg", container.MetaObject)
	derived.AddBase(base)
	derived.Declare(member(sym(table, "area"), value.FlagNone)) // missing FlagOverride

	if err := derived.Generate(); err == nil {
		t.Fatal("Generate should reject a non-override member colliding with a base member")
	}
}

func TestGenerateAllowsExplicitOverride(t *testing.T) {
	table := symbol.NewTable()
	base := NewClass("Shape", "pkg", container.MetaObject)
	area := sym(table, "area")
	base.Declare(member(area, value.FlagNone))
	base.Generate()

	derived := NewClass("Square", "pkg", container.MetaObject)
	derived.AddBase(base)
	derived.Declare(member(area, value.FlagOverride))

	if err := derived.Generate(); err != nil {
		t.Fatalf("Generate with FlagOverride should succeed: %v", err)
	}
	if len(derived.Slots) != 1 {
		t.Errorf("Slots len = %d, want 1 (override reuses the base offset)", len(derived.Slots))
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	c := NewClass("Solo", "pkg", container.MetaObject)
	if err := c.Generate(); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if err := c.Generate(); err != nil {
		t.Fatalf("second Generate should be a no-op, got: %v", err)
	}
}

func TestCopyablePropagatesFromNonCopyableBase(t *testing.T) {
	base := NewClass("Locked", "pkg", container.MetaObject)
	base.IsCopyable = false
	base.Generate()

	derived := NewClass("Child", "pkg", container.MetaObject)
	derived.AddBase(base)
	derived.Generate()

	if derived.IsCopyable {
		t.Error("a class with a non-copyable base should itself be non-copyable")
	}
}

func TestOperatorTableMergesAcrossMultipleBases(t *testing.T) {
	table := symbol.NewTable()
	addFn := NewFunctionValue("+")
	addFn.AddSignature(Signature(1), nil, nil)
	left := NewClass("Left", "pkg", container.MetaObject)
	left.SetOperator(OpAdd, addFn)
	left.Generate()

	eqFn := NewFunctionValue("==")
	eqFn.AddSignature(Signature(1), nil, nil)
	right := NewClass("Right", "pkg", container.MetaObject)
	right.SetOperator(OpEqual, eqFn)
	right.Generate()

	derived := NewClass("Both", "pkg", container.MetaObject)
	derived.AddBase(left)
	derived.AddBase(right)
	if err := derived.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if derived.Operator(OpAdd) == nil {
		t.Error("derived should inherit OpAdd from left base")
	}
	if derived.Operator(OpEqual) == nil {
		t.Error("derived should inherit OpEqual from right base")
	}
	_ = table
}

func TestCheckAccessPublicAlwaysAllowed(t *testing.T) {
	table := symbol.NewTable()
	owner := NewClass("Owner", "pkg", container.MetaObject)
	m := member(sym(table, "field"), value.FlagNone.WithVisibility(value.Public))
	m.Owner = owner

	if err := CheckAccess(m, nil, "other"); err != nil {
		t.Errorf("public member should be accessible from anywhere, got %v", err)
	}
}

func TestCheckAccessPrivateOnlyFromOwner(t *testing.T) {
	table := symbol.NewTable()
	owner := NewClass("Owner", "pkg", container.MetaObject)
	other := NewClass("Other", "pkg", container.MetaObject)
	m := member(sym(table, "secret"), value.FlagNone.WithVisibility(value.Private))
	m.Owner = owner

	if err := CheckAccess(m, owner, "pkg"); err != nil {
		t.Errorf("private member should be accessible from its own class, got %v", err)
	}
	if err := CheckAccess(m, other, "pkg"); err == nil {
		t.Error("private member should not be accessible from an unrelated class")
	}
}

func TestCheckAccessProtectedRequiresSubclass(t *testing.T) {
	table := symbol.NewTable()
	owner := NewClass("Owner", "pkg", container.MetaObject)
	sub := NewClass("Sub", "pkg", container.MetaObject)
	sub.AddBase(owner)
	unrelated := NewClass("Unrelated", "pkg", container.MetaObject)

	m := member(sym(table, "field"), value.FlagNone.WithVisibility(value.Protected))
	m.Owner = owner

	if err := CheckAccess(m, sub, "pkg"); err != nil {
		t.Errorf("protected member should be accessible from a subclass, got %v", err)
	}
	if err := CheckAccess(m, unrelated, "pkg"); err == nil {
		t.Error("protected member should not be accessible from an unrelated class")
	}
}

func TestCheckAccessPackageScopeRequiresSamePackage(t *testing.T) {
	table := symbol.NewTable()
	owner := NewClass("Owner", "pkgA", container.MetaObject)
	m := member(sym(table, "field"), value.FlagNone.WithVisibility(value.PackageScope))
	m.Owner = owner

	if err := CheckAccess(m, nil, "pkgA"); err != nil {
		t.Errorf("package-scope member should be accessible from the same package, got %v", err)
	}
	if err := CheckAccess(m, nil, "pkgB"); err == nil {
		t.Error("package-scope member should not be accessible from a different package")
	}
}

func TestIsSubclassOfIncludesSelf(t *testing.T) {
	c := NewClass("Lonely", "pkg", container.MetaObject)
	if !c.IsSubclassOf(c) {
		t.Error("a class should be considered a subclass of itself")
	}
}
