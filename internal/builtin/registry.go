// Package builtin implements spec §6.2's host-function registration
// path: "A host function is a C callable receiving the active Cursor.
// Registration via the class's create_builtin_member(operator_or_name,
// (arity, fn)) or module's create_builtin_method(type, arity,
// fn_or_source)." Each file groups one family of builtins and is
// grounded on the teacher's equivalent stdlib module, generalized from
// a direct VM builtin table into Handles registered against a Class.
package builtin

import (
	"mint/internal/bytecode"
	"mint/internal/class"
	"mint/internal/container"
	"mint/internal/gc"
	"mint/internal/symbol"
	"mint/internal/value"
)

// Registry is the builtin-method module named in spec §6.2
// ("module's create_builtin_method"): a scratch Module whose only
// purpose is to host native Handles, shared by every builtin family
// registered against a Runtime's classes. It also carries the GC so
// builtin bodies can allocate results the same way the dispatch loop
// does (spec §4.2's alloc<T> path), since HostContext itself only
// exposes the argument/stack surface.
type Registry struct {
	module  *bytecode.Module
	symbols *symbol.Table
	GC      *gc.Collector
}

func NewRegistry(symbols *symbol.Table, collector *gc.Collector) *Registry {
	return &Registry{module: bytecode.NewModule(-1, symbols), symbols: symbols, GC: collector}
}

// String allocates a Mint string Data the way Cursor.String does
// (spec §4.2 alloc<T>), for builtin bodies that don't have direct
// Cursor access.
func (r *Registry) String(s string) *value.Data {
	d := r.GC.Alloc(byte(container.MetaString))
	d.Format = value.FmtObject
	d.Object = container.NewString(s)
	return d
}

// Number allocates a Mint number Data.
func (r *Registry) Number(v float64) *value.Data {
	d := r.GC.Alloc(byte(container.MetaObject))
	d.Format = value.FmtNumber
	d.Number = v
	return d
}

// Boolean allocates a Mint boolean Data.
func (r *Registry) Boolean(v bool) *value.Data {
	d := r.GC.Alloc(byte(container.MetaObject))
	d.Format = value.FmtBoolean
	d.Boolean = v
	return d
}

// Array allocates a Mint array Data wrapping a.
func (r *Registry) Array(a *container.Array) *value.Data {
	d := r.GC.Alloc(byte(container.MetaArray))
	d.Format = value.FmtObject
	d.Object = a
	return d
}

func functionData(fv *class.FunctionValue) *value.Data {
	return &value.Data{Format: value.FmtFunction, Function: fv, Reachable: true}
}

// CreateBuiltinMember registers fn as a global (static) method named
// name on cl, with the given arity signature (spec §6.2
// create_builtin_member(operator_or_name, (arity, fn))). Builtins
// never carry instance state of their own, so they are always
// declared global rather than slotted (spec §4.4: "Members with
// global flag go into the globals table, not slotted").
func (r *Registry) CreateBuiltinMember(cl *class.Class, name string, arity class.Signature, fn bytecode.HostFunc) {
	h := r.module.MakeBuiltinHandle(cl.Package, fn)
	sym := r.symbols.Intern(name)
	fv := class.NewFunctionValue(name)
	fv.AddSignature(arity, h, nil)

	member := &class.MemberInfo{Name: sym, Offset: -1, Owner: cl, Default: functionData(fv), Flags: value.FlagGlobal}
	cl.Declare(member)
	cl.Globals.Set(sym, value.NewStrong(functionData(fv), value.FlagGlobal))
}

// CreateBuiltinOperator installs fn as cl's overload for op (used by
// a Registry in place of a scripted operator body).
func (r *Registry) CreateBuiltinOperator(cl *class.Class, op class.Operator, arity class.Signature, fn bytecode.HostFunc) {
	h := r.module.MakeBuiltinHandle(cl.Package, fn)
	fv := class.NewFunctionValue(op.String())
	fv.AddSignature(arity, h, nil)
	cl.SetOperator(op, fv)
}

// CreateFreeFunction registers fn as a package-level global function,
// for builtins (like uuid4 or format_bytes) that are not methods of
// any class (spec §6.2's module-level create_builtin_method variant).
func (r *Registry) CreateFreeFunction(pkg *class.Package, name string, arity class.Signature, fn bytecode.HostFunc) {
	h := r.module.MakeBuiltinHandle(pkg.Path, fn)
	sym := r.symbols.Intern(name)
	fv := class.NewFunctionValue(name)
	fv.AddSignature(arity, h, nil)
	pkg.SetGlobal(sym, value.NewStrong(functionData(fv), value.FlagGlobal))
}
