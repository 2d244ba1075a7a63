package builtin

import (
	"mint/internal/bytecode"
	"mint/internal/class"
	"mint/internal/gc"
	"mint/internal/symbol"
	"mint/internal/value"
)

// fakeHostContext is a minimal bytecode.HostContext for exercising a
// HostFunc directly, without a real Cursor/dispatch loop.
type fakeHostContext struct {
	self  *value.Data
	args  []*value.Data
	stack []*value.Data
}

func (c *fakeHostContext) Pop() *value.Data {
	if len(c.stack) == 0 {
		return value.None
	}
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return top
}

func (c *fakeHostContext) Push(d *value.Data) { c.stack = append(c.stack, d) }
func (c *fakeHostContext) Arg(i int) *value.Data {
	if i < 0 || i >= len(c.args) {
		return nil
	}
	return c.args[i]
}
func (c *fakeHostContext) ArgCount() int      { return len(c.args) }
func (c *fakeHostContext) Self() *value.Data  { return c.self }

func newTestRegistry() (*Registry, *symbol.Table) {
	symbols := symbol.NewTable()
	collector := gc.New(nil)
	return NewRegistry(symbols, collector), symbols
}

// builtinOf extracts the installed HostFunc for name back out of a
// class's FunctionValue, for tests that want to invoke it directly.
func builtinOf(t interface{ Fatalf(string, ...interface{}) }, cl *class.Class, symbols *symbol.Table, name string) bytecode.HostFunc {
	sym := symbols.Intern(name)
	ref, ok := cl.Globals.Get(sym)
	if !ok {
		t.Fatalf("class %s has no global member %q", cl.Name, name)
	}
	fv, ok := ref.Data.Function.(*class.FunctionValue)
	if ref.Data.Format != value.FmtFunction || !ok || fv == nil {
		t.Fatalf("member %q is not a function value", name)
	}
	for _, entry := range fv.Signatures {
		if entry.Handle != nil && entry.Handle.IsBuiltin {
			return entry.Handle.Builtin
		}
	}
	t.Fatalf("member %q has no builtin handle", name)
	return nil
}

func freeFunctionOf(t interface{ Fatalf(string, ...interface{}) }, pkg *class.Package, symbols *symbol.Table, name string) bytecode.HostFunc {
	sym := symbols.Intern(name)
	ref, ok := pkg.Global(sym)
	if !ok {
		t.Fatalf("package %s has no global %q", pkg.Path, name)
	}
	fv, ok := ref.Data.Function.(*class.FunctionValue)
	if ref.Data.Format != value.FmtFunction || !ok || fv == nil {
		t.Fatalf("global %q is not a function value", name)
	}
	for _, entry := range fv.Signatures {
		if entry.Handle != nil && entry.Handle.IsBuiltin {
			return entry.Handle.Builtin
		}
	}
	t.Fatalf("global %q has no builtin handle", name)
	return nil
}

func operatorOf(t interface{ Fatalf(string, ...interface{}) }, cl *class.Class, op class.Operator) bytecode.HostFunc {
	fv := cl.Operator(op)
	if fv == nil {
		t.Fatalf("class %s has no operator %v", cl.Name, op)
	}
	for _, e := range fv.Signatures {
		if e.Handle != nil && e.Handle.IsBuiltin {
			return e.Handle.Builtin
		}
	}
	t.Fatalf("operator %v has no builtin handle", op)
	return nil
}
