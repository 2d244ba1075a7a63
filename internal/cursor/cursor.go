// Package cursor implements the per-thread execution state described
// in spec §2/§3.7/§4.6: the instruction pointer into a Module, the
// value stack, the call stack of Frames, the retrieve-point stack for
// exceptions, and per-frame symbol tables. It also collects the small
// set of narrow interfaces (bytecode.HostContext, gc.Root,
// operator.Allocator/Invoker) that let the packages below it in the
// dependency graph (value, gc, bytecode, class, container, operator)
// stay ignorant of interp and scheduler above it.
package cursor

import (
	"mint/internal/bytecode"
	"mint/internal/class"
	"mint/internal/container"
	"mint/internal/errors"
	"mint/internal/gc"
	"mint/internal/symbol"
	"mint/internal/value"
)

// PendingCall bundles what InitCall/InitMemberCall/InitOperatorCall
// resolve and Call/CallMember/CallBuiltin consume (spec §4.6): which
// Handle to enter, the bound receiver (nil for free functions), and
// the already-evaluated argument list.
type PendingCall struct {
	Handle   *bytecode.Handle
	Self     *value.Data
	Args     []*value.Data
	Captures *symbol.Map[*symbol.Symbol, value.Reference]

	// IsConstructor marks a pending call produced by `new` (spec
	// §4.6): regardless of what the constructor body itself leaves on
	// the stack or returns, the expression's value is the constructed
	// instance (Self), not the constructor's own result.
	IsConstructor bool
}

// Printer is one output sink on a Cursor's printer stack (spec §9
// "Printer chain"). open_printer/close_printer push/pop; print writes
// to the top sink.
type Printer interface {
	Write(ref value.Reference)
}

// RetrievePoint is a saved unwind target for `raise` (spec §4.8): the
// sizes to truncate the value stack, call stack, and waiting-calls
// list back to, plus the catch-handler node offset.
type RetrievePoint struct {
	StackSize      int
	CallStackSize  int
	WaitingSize    int
	HandlerOffset  int
}

// Frame is the per-call record saved on call entry (spec §4.6): the
// caller's module/ip to resume at, a symbol table scoped to the
// callee's package, its fast locals and captures, the bound receiver,
// and whether it is a generator frame. It does not record the printer
// stack depth or any generator state.
type Frame struct {
	Module      *bytecode.Module
	ReturnIP    int
	Symbols     *symbol.Map[*symbol.Symbol, value.Reference]
	Fast        []value.Reference
	Captures    *symbol.Map[*symbol.Symbol, value.Reference]
	PackagePath string
	Self        *value.Data // bound receiver, or nil for free functions
	IsGenerator bool

	// IsConstructor marks a frame entered via `new` (spec §4.6): its
	// exit_call substitutes Self for whatever value the constructor
	// body leaves, so construction always yields the instance.
	IsConstructor bool
}

// Cursor is a single logical execution state bound to a thread
// (glossary "Cursor"). Exactly one Cursor runs bytecode at a time
// under the scheduler's GIL; a Scheduler owns one per Process.
type Cursor struct {
	GC      *gc.Collector
	Symbols *symbol.Table

	Module *bytecode.Module
	IP     int

	Stack   []value.Reference
	Frames  []*Frame
	Retrieve []RetrievePoint
	Printers []Printer

	// Call is supplied by internal/interp at construction: it runs a
	// resolved Handle to completion and returns the stack-top result.
	// Keeping it as an injected func, rather than an import, is what
	// lets cursor sit below interp in the dependency graph while still
	// letting the operator kernel's call_overload reach the dispatch
	// loop (spec §4.10(c)).
	Call func(h *bytecode.Handle, self *value.Data, args []*value.Data) (*value.Data, error)

	// Pending holds the most recent InitCall/InitMemberCall/InitOperatorCall
	// resolution, consumed by the following Call/CallMember/CallBuiltin
	// node (spec §4.6).
	Pending PendingCall

	// PendingCaptures accumulates init_capture/capture_symbol/capture_as/
	// capture_all results (spec §4.7 closures) until the next function
	// value is produced.
	PendingCaptures *symbol.Map[*symbol.Symbol, value.Reference]

	// GeneratorIterator is the buffer `yield` appends to for the
	// generator frame currently executing on this Cursor (spec §4.7).
	GeneratorIterator *container.Iterator

	// CurrentException is the active exception payload between raise
	// and the handler's catch binding, and across a nested re-raise to
	// a parent cursor (spec §4.8's init_exception/reset_exception).
	CurrentException *value.Data

	// Packages is shared across every Cursor in the Runtime (spec §4.4
	// nested-class/global package registration); CurrentPackage tracks
	// open_package/close_package nesting for this Cursor's execution.
	Packages     map[string]*class.Package
	PackageStack []*class.Package

	// ExecutingClass is the class whose method body is currently
	// running, used by visibility enforcement (spec §4.11); nil at
	// package scope.
	ExecutingClass *class.Class
}

func New(collector *gc.Collector, symbols *symbol.Table, packages map[string]*class.Package) *Cursor {
	c := &Cursor{GC: collector, Symbols: symbols, Packages: packages}
	collector.RegisterRoot(c)
	return c
}

// --- operator.Allocator ---

func (c *Cursor) Number(v float64) *value.Data {
	d := c.GC.Alloc(byte(container.MetaObject))
	d.Format = value.FmtNumber
	d.Number = v
	return d
}

func (c *Cursor) Boolean(v bool) *value.Data {
	d := c.GC.Alloc(byte(container.MetaObject))
	d.Format = value.FmtBoolean
	d.Boolean = v
	return d
}

func (c *Cursor) String(s string) *value.Data {
	d := c.GC.Alloc(byte(container.MetaString))
	d.Format = value.FmtObject
	d.Object = container.NewString(s)
	return d
}

func (c *Cursor) NewArray(a *container.Array) *value.Data {
	d := c.GC.Alloc(byte(container.MetaArray))
	d.Format = value.FmtObject
	d.Object = a
	return d
}

func (c *Cursor) NewHash(h *container.Hash) *value.Data {
	d := c.GC.Alloc(byte(container.MetaHash))
	d.Format = value.FmtObject
	d.Object = h
	return d
}

// NumberAllocFunc adapts Cursor.Number to container.Range's alloc
// callback signature (spec §4.10 range construction).
func (c *Cursor) NumberAllocFunc() func(float64) *value.Data { return c.Number }

// --- operator.Invoker ---

// CallOverload resolves op on owner's operator table and runs it via
// the injected Call func. handled reports whether an overload existed
// at all (so callers like equality fall back to identity comparison).
func (c *Cursor) CallOverload(owner *class.Class, op class.Operator, self *value.Data, args []*value.Data) (*value.Data, bool, error) {
	fn := owner.Operator(op)
	if fn == nil {
		return nil, false, nil
	}
	sig, entry, ok := fn.Resolve(len(args))
	if !ok {
		return nil, true, errors.NewArityMismatch("no matching signature for operator "+op.String(), errors.SourceLocation{})
	}
	_ = sig
	if c.Call == nil {
		return nil, true, errors.New(errors.InternalError, "cursor has no call dispatcher installed", errors.SourceLocation{})
	}
	result, err := c.Call(entry.Handle, self, args)
	return result, true, err
}

// --- bytecode.HostContext ---

func (c *Cursor) Push(d *value.Data) { c.Stack = append(c.Stack, value.NewWeak(d, value.FlagTemporary)) }

func (c *Cursor) Pop() *value.Data {
	n := len(c.Stack)
	if n == 0 {
		return value.None
	}
	top := c.Stack[n-1]
	c.Stack = c.Stack[:n-1]
	return top.Data
}

func (c *Cursor) Peek() *value.Data {
	n := len(c.Stack)
	if n == 0 {
		return value.None
	}
	return c.Stack[n-1].Data
}

// Arg and ArgCount implement bytecode.HostContext over the raw value
// stack: Arg(i) is the i-th value down from the top (None when no
// frame is active or i is out of range) and ArgCount is the whole
// stack depth. The interp dispatch loop does not hand a Cursor to
// builtins; it passes a context over the bound argument slice.
func (c *Cursor) Arg(i int) *value.Data {
	f := c.currentFrame()
	if f == nil {
		return value.None
	}
	idx := len(c.Stack) - 1 - i
	if idx < 0 || idx >= len(c.Stack) {
		return value.None
	}
	return c.Stack[idx].Data
}

func (c *Cursor) ArgCount() int { return len(c.Stack) }

// Self returns the current frame's bound receiver, or nil at package
// scope (spec §6.2).
func (c *Cursor) Self() *value.Data {
	f := c.currentFrame()
	if f == nil {
		return nil
	}
	return f.Self
}

func (c *Cursor) currentFrame() *Frame {
	if len(c.Frames) == 0 {
		return nil
	}
	return c.Frames[len(c.Frames)-1]
}

// CurrentFrame exposes the active frame to internal/interp.
func (c *Cursor) CurrentFrame() *Frame { return c.currentFrame() }

// CurrentPackage returns the innermost open_package entry, or nil at
// top level.
func (c *Cursor) CurrentPackage() *class.Package {
	if n := len(c.PackageStack); n > 0 {
		return c.PackageStack[n-1]
	}
	return nil
}

// ResolveSymbol implements spec §4.5's load_symbol lookup order: the
// current frame's locals, then its captures, then the current
// package's globals.
func (c *Cursor) ResolveSymbol(sym *symbol.Symbol) (value.Reference, bool) {
	if f := c.currentFrame(); f != nil {
		if ref, ok := f.Symbols.Get(sym); ok {
			return ref, true
		}
		if f.Captures != nil {
			if ref, ok := f.Captures.Get(sym); ok {
				return ref, true
			}
		}
	}
	if pkg := c.CurrentPackage(); pkg != nil {
		if ref, ok := pkg.Global(sym); ok {
			return ref, true
		}
	}
	return value.Reference{}, false
}

// StoreSymbol writes to the nearest scope that already binds sym,
// falling back to declaring it as a new frame-local (store_symbol with
// no prior declaration acts as a define, matching dynamically-typed
// scripting convention).
func (c *Cursor) StoreSymbol(sym *symbol.Symbol, d *value.Data) {
	if f := c.currentFrame(); f != nil {
		if _, ok := f.Symbols.Get(sym); ok {
			f.Symbols.Set(sym, value.NewWeak(d, value.FlagNone))
			return
		}
		if f.Captures != nil {
			if _, ok := f.Captures.Get(sym); ok {
				f.Captures.Set(sym, value.NewWeak(d, value.FlagNone))
				return
			}
		}
		f.Symbols.Set(sym, value.NewWeak(d, value.FlagNone))
		return
	}
	if pkg := c.CurrentPackage(); pkg != nil {
		pkg.SetGlobal(sym, value.NewStrong(d, value.FlagGlobal))
	}
}

// --- gc.Root ---

// Roots returns every Data this Cursor keeps alive directly: its value
// stack, every frame's symbol table, and any pending retrieve-point
// exception value (spec §4.1's strong-root enumeration).
func (c *Cursor) Roots() []*value.Data {
	var out []*value.Data
	for _, ref := range c.Stack {
		out = append(out, ref.Data)
	}
	for _, f := range c.Frames {
		if f.Symbols == nil {
			continue
		}
		f.Symbols.Range(func(_ *symbol.Symbol, ref value.Reference) bool {
			out = append(out, ref.Data)
			return true
		})
		if f.Self != nil {
			out = append(out, f.Self)
		}
		for _, ref := range f.Fast {
			out = append(out, ref.Data)
		}
	}
	if c.CurrentException != nil {
		out = append(out, c.CurrentException)
	}
	if c.Pending.Self != nil {
		out = append(out, c.Pending.Self)
	}
	for _, d := range c.Pending.Args {
		out = append(out, d)
	}
	return out
}

// PushFrame enters a call (spec §4.6): saves (module, ip) to resume at
// on exit_call and opens a fresh symbol table scoped to the callee.
func (c *Cursor) PushFrame(callee *bytecode.Module, packagePath string, self *value.Data, isGenerator bool, fastCount int, captures *symbol.Map[*symbol.Symbol, value.Reference]) {
	c.Frames = append(c.Frames, &Frame{
		Module:      c.Module,
		ReturnIP:    c.IP,
		Symbols:     symbol.NewSymbolMapping[value.Reference](),
		Fast:        make([]value.Reference, fastCount),
		Captures:    captures,
		PackagePath: packagePath,
		Self:        self,
		IsGenerator: isGenerator,
	})
	c.Module = callee
}

// PopFrame implements exit_call: restores the caller's (module, ip).
func (c *Cursor) PopFrame() *Frame {
	n := len(c.Frames)
	if n == 0 {
		return nil
	}
	f := c.Frames[n-1]
	c.Frames = c.Frames[:n-1]
	c.Module = f.Module
	c.IP = f.ReturnIP
	return f
}

// PushRetrieve implements set_retrieve_point (spec §4.8).
func (c *Cursor) PushRetrieve(handlerOffset int) {
	c.Retrieve = append(c.Retrieve, RetrievePoint{
		StackSize:     len(c.Stack),
		CallStackSize: len(c.Frames),
		HandlerOffset: handlerOffset,
	})
}

func (c *Cursor) PopRetrieve() (RetrievePoint, bool) {
	n := len(c.Retrieve)
	if n == 0 {
		return RetrievePoint{}, false
	}
	rp := c.Retrieve[n-1]
	c.Retrieve = c.Retrieve[:n-1]
	return rp, true
}

// Raise implements spec §4.8's unwind: pop frames/stack back to the
// nearest retrieve point, push the exception value, jump to its
// handler. Returns false if no retrieve point exists (the caller must
// then re-raise to a parent cursor or terminate the process).
func (c *Cursor) Raise(exception *value.Data) bool {
	rp, ok := c.PopRetrieve()
	if !ok {
		return false
	}
	for len(c.Frames) > rp.CallStackSize {
		c.PopFrame()
	}
	if rp.StackSize <= len(c.Stack) {
		c.Stack = c.Stack[:rp.StackSize]
	}
	c.Push(exception)
	c.IP = rp.HandlerOffset
	return true
}

func (c *Cursor) PushPrinter(p Printer) { c.Printers = append(c.Printers, p) }

func (c *Cursor) PopPrinter() {
	if n := len(c.Printers); n > 0 {
		c.Printers = c.Printers[:n-1]
	}
}

func (c *Cursor) Print(ref value.Reference) {
	if n := len(c.Printers); n > 0 {
		c.Printers[n-1].Write(ref)
	}
}
