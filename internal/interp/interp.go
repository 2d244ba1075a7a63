// Package interp implements the instruction dispatch loop (spec §4.5):
// it reads one Node at a time from the Cursor's current Module,
// advances the instruction pointer, and performs the corresponding
// action. Suspension happens naturally: Run returns to its caller (the
// scheduler) at a thread-quantum boundary, at module_end/exit_thread,
// or when an exception crosses the outermost retrieve point.
package interp

import (
	"mint/internal/bytecode"
	"mint/internal/callutil"
	"mint/internal/class"
	"mint/internal/container"
	"mint/internal/cursor"
	"mint/internal/errors"
	"mint/internal/operator"
	"mint/internal/symbol"
	"mint/internal/value"
)

// Signal reports why Run returned control to its caller.
type Signal int

const (
	SigQuantum Signal = iota // ran out of quantum; resumable
	SigModuleEnd
	SigExitThread
	SigExitExec
	SigYield
	SigGeneratorExit
	SigUnhandledException
)

// Program is the shared, read-only-after-load image every Cursor
// executes against (spec §2's "Scheduler owns one AbstractSyntaxTree"):
// every compiled Module indexed by ID, plus the package registry new
// Cursors are constructed to share.
type Program struct {
	Modules  map[int]*bytecode.Module
	Packages map[string]*class.Package
}

func NewProgram() *Program {
	return &Program{Modules: make(map[int]*bytecode.Module), Packages: make(map[string]*class.Package)}
}

func (p *Program) AddModule(m *bytecode.Module) { p.Modules[m.ID] = m }

func (p *Program) Package(path string) *class.Package {
	pkg, ok := p.Packages[path]
	if !ok {
		pkg = class.NewPackage(path)
		p.Packages[path] = pkg
	}
	return pkg
}

// Interp drives one Program's dispatch loop. It is stateless across
// Cursors; every piece of mutable execution state lives on the Cursor
// passed to Run.
type Interp struct {
	Program *Program
	Kernel  *operator.Kernel
}

func New(program *Program, kernel *operator.Kernel) *Interp {
	return &Interp{Program: program, Kernel: kernel}
}

// AttachCursor wires a freshly constructed Cursor's Call callback to
// this Interp, so the operator kernel's call_overload (spec §4.10(c))
// and ordinary bytecode calls both run through the same dispatch loop.
func (in *Interp) AttachCursor(cur *cursor.Cursor) {
	cur.Call = func(h *bytecode.Handle, self *value.Data, args []*value.Data) (*value.Data, error) {
		return in.Invoke(cur, h, self, args)
	}
}

// Invoke runs a resolved Handle to completion on cur and returns its
// result (spec §6.3 Scheduler.invoke). Used both for nested host calls
// and for operator-overload dispatch.
func (in *Interp) Invoke(cur *cursor.Cursor, h *bytecode.Handle, self *value.Data, args []*value.Data) (*value.Data, error) {
	if h.IsBuiltin {
		return h.Builtin(&argContext{cur: cur, args: args, self: self})
	}
	savedModule, savedIP := cur.Module, cur.IP
	savedFrameDepth := len(cur.Frames)

	cur.Module = in.Program.Modules[h.ModuleID]
	cur.IP = h.Offset
	cur.PushFrame(cur.Module, h.PackagePath, self, h.IsGenerator, h.FastSymbolCount, nil)
	for _, a := range args {
		cur.Push(a)
	}

	var result *value.Data
	for len(cur.Frames) > savedFrameDepth {
		// one node per Run, so the loop stops as soon as the invoked
		// frame has returned instead of running on past it
		sig, res, err := in.Run(cur, 1)
		if err != nil {
			cur.Module, cur.IP = savedModule, savedIP
			return nil, err
		}
		switch sig {
		case SigModuleEnd, SigExitThread, SigExitExec:
			result = res
			for len(cur.Frames) > savedFrameDepth {
				cur.PopFrame()
			}
		case SigUnhandledException:
			cur.Module, cur.IP = savedModule, savedIP
			return nil, errors.New(errors.InternalError, "unhandled exception inside nested invocation", errors.SourceLocation{})
		}
	}
	if result == nil {
		result = cur.Pop()
	}
	cur.Module, cur.IP = savedModule, savedIP
	return result, nil
}

// argContext adapts a plain argument slice to bytecode.HostContext for
// a nested builtin invocation (operator overloads, Scheduler.invoke),
// independent of whatever is currently on cur's value stack.
type argContext struct {
	cur  *cursor.Cursor
	args []*value.Data
	self *value.Data
}

func (a *argContext) Pop() *value.Data   { return a.cur.Pop() }
func (a *argContext) Push(d *value.Data) { a.cur.Push(d) }
func (a *argContext) Arg(i int) *value.Data {
	if i < 0 || i >= len(a.args) {
		return value.None
	}
	return a.args[i]
}
func (a *argContext) ArgCount() int      { return len(a.args) }
func (a *argContext) Self() *value.Data { return a.self }

// Run executes up to quantum Nodes on cur, starting from its current
// IP, returning the Signal that ended the run.
func (in *Interp) Run(cur *cursor.Cursor, quantum int) (Signal, *value.Data, error) {
	for i := 0; i < quantum; i++ {
		if cur.Module == nil || cur.IP >= cur.Module.End() {
			return SigModuleEnd, value.None, nil
		}
		node := cur.Module.At(cur.IP)
		cur.IP++

		sig, result, err := in.step(cur, node)
		if err != nil {
			if cur.Raise(in.wrapError(cur, err)) {
				continue
			}
			return SigUnhandledException, in.wrapError(cur, err), nil
		}
		if sig != SigQuantum {
			return sig, result, nil
		}
	}
	return SigQuantum, value.None, nil
}

func (in *Interp) wrapError(cur *cursor.Cursor, err error) *value.Data {
	return cur.String(err.Error())
}

func (in *Interp) readInt(cur *cursor.Cursor) int32 {
	n := cur.Module.At(cur.IP)
	cur.IP++
	return n.Int
}

func (in *Interp) readSymbol(cur *cursor.Cursor) *symbol.Symbol {
	n := cur.Module.At(cur.IP)
	cur.IP++
	return n.Sym
}

func (in *Interp) readConstant(cur *cursor.Cursor) *value.Data {
	n := cur.Module.At(cur.IP)
	cur.IP++
	return cur.Module.Constants[n.Idx]
}

func (in *Interp) readHandle(cur *cursor.Cursor) *bytecode.Handle {
	n := cur.Module.At(cur.IP)
	cur.IP++
	return cur.Module.Handles[n.Idx]
}

// step executes one opcode node, returning SigQuantum to keep running.
func (in *Interp) step(cur *cursor.Cursor, node bytecode.Node) (Signal, *value.Data, error) {
	switch node.Op {

	case bytecode.OpLoadConstant:
		d := in.readConstant(cur)
		if d.Format == value.FmtFunction && cur.PendingCaptures != nil {
			d = attachCaptures(d, cur.PendingCaptures)
			cur.PendingCaptures = nil
		}
		cur.Push(d)

	case bytecode.OpLoadFast:
		idx := in.readInt(cur)
		f := cur.CurrentFrame()
		if f == nil || int(idx) >= len(f.Fast) {
			cur.Push(value.None)
		} else {
			cur.Push(f.Fast[idx].Data)
		}

	case bytecode.OpStoreFast:
		idx := in.readInt(cur)
		v := cur.Pop()
		f := cur.CurrentFrame()
		if f != nil && int(idx) < len(f.Fast) {
			f.Fast[idx] = value.NewWeak(v, value.FlagNone)
		}

	case bytecode.OpLoadSymbol:
		sym := in.readSymbol(cur)
		ref, ok := cur.ResolveSymbol(sym)
		if !ok {
			return SigQuantum, nil, errors.NewNotFound("symbol "+sym.Name+" is undefined", errors.SourceLocation{})
		}
		cur.Push(ref.Data)

	case bytecode.OpStoreSymbol:
		sym := in.readSymbol(cur)
		v := cur.Pop()
		cur.StoreSymbol(sym, v)

	case bytecode.OpLoadMember:
		sym := in.readSymbol(cur)
		receiver := cur.Pop()
		d, err := in.loadMember(cur, receiver, sym)
		if err != nil {
			return SigQuantum, nil, err
		}
		cur.Push(d)

	case bytecode.OpStoreMember:
		sym := in.readSymbol(cur)
		v := cur.Pop()
		receiver := cur.Pop()
		if err := in.storeMember(cur, receiver, sym, v); err != nil {
			return SigQuantum, nil, err
		}

	case bytecode.OpLoadOperator:
		opIdx := in.readInt(cur)
		receiver := cur.Pop()
		cl := classOfData(receiver)
		if cl == nil {
			return SigQuantum, nil, errors.NewTypeMismatch("load_operator on non-object", errors.SourceLocation{})
		}
		fn := cl.Operator(class.Operator(opIdx))
		cur.Push(&value.Data{Format: value.FmtFunction, Function: fn, Reachable: true})

	case bytecode.OpLoadVar:
		sym := in.readSymbol(cur)
		f := cur.CurrentFrame()
		if f == nil || f.Captures == nil {
			cur.Push(value.None)
			break
		}
		ref, ok := f.Captures.Get(sym)
		if !ok {
			cur.Push(value.None)
			break
		}
		cur.Push(ref.Data)

	case bytecode.OpStoreVar:
		sym := in.readSymbol(cur)
		v := cur.Pop()
		f := cur.CurrentFrame()
		if f != nil && f.Captures != nil {
			f.Captures.Set(sym, value.NewWeak(v, value.FlagNone))
		}

	case bytecode.OpPop:
		cur.Pop()

	case bytecode.OpDup:
		cur.Push(cur.Peek())

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod,
		bytecode.OpEqual, bytecode.OpNotEqual, bytecode.OpLess, bytecode.OpLessEqual,
		bytecode.OpGreater, bytecode.OpGreaterEqual:
		rhs := cur.Pop()
		lhs := cur.Pop()
		result, err := in.Kernel.Binary(opcodeToOperator[node.Op], lhs, rhs)
		if err != nil {
			return SigQuantum, nil, err
		}
		cur.Push(result)

	case bytecode.OpBitAnd, bytecode.OpBitOr, bytecode.OpBitXor, bytecode.OpShiftLeft, bytecode.OpShiftRight:
		rhs := cur.Pop()
		lhs := cur.Pop()
		result, err := bitwise(cur, node.Op, lhs, rhs)
		if err != nil {
			return SigQuantum, nil, err
		}
		cur.Push(result)

	case bytecode.OpNegate, bytecode.OpNot:
		v := cur.Pop()
		result, err := in.Kernel.Unary(opcodeToOperator[node.Op], v)
		if err != nil {
			return SigQuantum, nil, err
		}
		cur.Push(result)

	case bytecode.OpBitNot:
		v := cur.Pop()
		cur.Push(cur.Number(float64(^int64(v.Number))))

	case bytecode.OpJump:
		target := in.readInt(cur)
		cur.IP = int(target)

	case bytecode.OpJumpZero:
		target := in.readInt(cur)
		v := cur.Pop()
		if !v.Truthy() {
			cur.IP = int(target)
		}

	case bytecode.OpCaseJump:
		target := in.readInt(cur)
		matchVal := cur.Pop()
		caseVal := cur.Pop()
		if in.Kernel != nil {
			eqResult, _ := in.Kernel.Binary(class.OpEqual, caseVal, matchVal)
			if eqResult != nil && eqResult.Truthy() {
				cur.IP = int(target)
			} else {
				cur.Push(matchVal)
			}
		}

	case bytecode.OpAndPreCheck:
		target := in.readInt(cur)
		if !cur.Peek().Truthy() {
			cur.IP = int(target)
		} else {
			cur.Pop()
		}

	case bytecode.OpOrPreCheck:
		target := in.readInt(cur)
		if cur.Peek().Truthy() {
			cur.IP = int(target)
		} else {
			cur.Pop()
		}

	case bytecode.OpRangeInit:
		inclusive := in.readInt(cur) != 0
		to := cur.Pop()
		from := cur.Pop()
		it := container.Range(from.Number, to.Number, inclusive, cur.Number)
		cur.Push(wrapIterator(cur, it))

	case bytecode.OpRangeNext, bytecode.OpFindNext:
		itData := cur.Pop()
		it := itData.Object.(*container.Iterator)
		ref, ok := it.Next()
		cur.Push(itData)
		if ok {
			cur.Push(ref.Data)
		} else {
			cur.Push(value.None)
		}

	case bytecode.OpRangeCheck, bytecode.OpFindCheck, bytecode.OpRangeIteratorCheck:
		itData := cur.Peek()
		it, ok := itData.Object.(*container.Iterator)
		cur.Push(cur.Boolean(ok && it.HasNext()))

	case bytecode.OpFindInit:
		haystack := cur.Pop()
		it, err := enumerate(haystack)
		if err != nil {
			return SigQuantum, nil, err
		}
		cur.Push(wrapIterator(cur, it))

	case bytecode.OpFindOp:
		predicate := cur.Pop()
		haystack := cur.Pop()
		result, err := in.findFirst(cur, haystack, predicate)
		if err != nil {
			return SigQuantum, nil, err
		}
		cur.Push(result)

	case bytecode.OpInOp:
		haystack := cur.Pop()
		needle := cur.Pop()
		result, err := in.Kernel.In(needle, haystack)
		if err != nil {
			return SigQuantum, nil, err
		}
		cur.Push(result)

	case bytecode.OpInitCall:
		argc := int(in.readInt(cur))
		args := popN(cur, argc)
		callee := cur.Pop()
		if err := in.resolveInitCall(cur, callee, args); err != nil {
			return SigQuantum, nil, err
		}

	case bytecode.OpInitMemberCall:
		sym := in.readSymbol(cur)
		argc := int(in.readInt(cur))
		args := popN(cur, argc)
		receiver := cur.Pop()
		if err := in.resolveMemberCall(cur, receiver, sym, args); err != nil {
			return SigQuantum, nil, err
		}

	case bytecode.OpInitOperatorCall:
		opIdx := in.readInt(cur)
		argc := int(in.readInt(cur))
		args := popN(cur, argc)
		receiver := cur.Pop()
		cl := classOfData(receiver)
		if cl == nil {
			return SigQuantum, nil, errors.NewTypeMismatch("init_operator_call on non-object", errors.SourceLocation{})
		}
		fn := cl.Operator(class.Operator(opIdx))
		if fn == nil {
			return SigQuantum, nil, errors.NewTypeMismatch("operator not overloaded on "+cl.Name, errors.SourceLocation{})
		}
		sig, entry, err := callutil.ResolveCall(fn, args)
		if err != nil {
			return SigQuantum, nil, err
		}
		bound := callutil.BindParameters(sig, args, func(it *container.Iterator) *value.Data { return wrapIterator(cur, it) })
		cur.Pending = cursor.PendingCall{Handle: entry.Handle, Self: receiver, Args: bound}

	case bytecode.OpCall, bytecode.OpCallMember, bytecode.OpCallBuiltin:
		pending := cur.Pending
		if pending.Handle == nil {
			return SigQuantum, nil, errors.New(errors.InternalError, "call with no pending handle", errors.SourceLocation{})
		}
		if pending.Handle.IsBuiltin {
			result, err := pending.Handle.Builtin(&argContext{cur: cur, args: pending.Args, self: pending.Self})
			if err != nil {
				return SigQuantum, nil, err
			}
			if pending.IsConstructor {
				result = pending.Self
			} else if result == nil {
				result = value.None
			}
			cur.Push(result)
			break
		}
		callee := in.Program.Modules[pending.Handle.ModuleID]
		cur.PushFrame(callee, pending.Handle.PackagePath, pending.Self, pending.Handle.IsGenerator, pending.Handle.FastSymbolCount, pending.Captures)
		cur.IP = pending.Handle.Offset
		cur.CurrentFrame().IsConstructor = pending.IsConstructor
		for _, a := range pending.Args {
			cur.Push(a)
		}

	case bytecode.OpExitCall:
		result := cur.Pop()
		frame := cur.CurrentFrame()
		if frame != nil && frame.IsConstructor && frame.Self != nil {
			result = frame.Self
		}
		cur.PopFrame()
		cur.Push(result)

	case bytecode.OpInitCapture:
		cur.PendingCaptures = symbol.NewSymbolMapping[value.Reference]()

	case bytecode.OpCaptureSymbol, bytecode.OpCaptureAs:
		sym := in.readSymbol(cur)
		if cur.PendingCaptures == nil {
			cur.PendingCaptures = symbol.NewSymbolMapping[value.Reference]()
		}
		if ref, ok := cur.ResolveSymbol(sym); ok {
			cur.PendingCaptures.Set(sym, ref.Clone())
		}

	case bytecode.OpCaptureAll:
		f := cur.CurrentFrame()
		if cur.PendingCaptures == nil {
			cur.PendingCaptures = symbol.NewSymbolMapping[value.Reference]()
		}
		if f != nil {
			f.Symbols.Range(func(s *symbol.Symbol, ref value.Reference) bool {
				cur.PendingCaptures.Set(s, ref.Clone())
				return true
			})
		}

	case bytecode.OpBeginGeneratorExpression:
		it := container.NewEagerIterator(nil)
		cur.GeneratorIterator = it
		cur.Push(wrapIterator(cur, it))

	case bytecode.OpEndGeneratorExpression:
		// marks the boundary of a generator-expression literal; the
		// iterator built since begin_generator_expression is already
		// on the stack from begin, nothing further to do here.

	case bytecode.OpYield:
		v := cur.Pop()
		if cur.GeneratorIterator != nil {
			cur.GeneratorIterator.Append(value.NewWeak(v, value.FlagNone))
		}
		return SigYield, v, nil

	case bytecode.OpYieldExpression:
		v := cur.Pop()
		if cur.GeneratorIterator != nil {
			cur.GeneratorIterator.Append(value.NewWeak(v, value.FlagNone))
		}
		cur.Push(value.None) // placeholder for the value a resumed `yield` expression evaluates to
		return SigYield, v, nil

	case bytecode.OpExitGenerator, bytecode.OpYieldExitGenerator:
		if cur.GeneratorIterator != nil {
			cur.GeneratorIterator.MarkExhausted()
		}
		return SigGeneratorExit, value.None, nil

	case bytecode.OpSetRetrievePoint:
		offset := in.readInt(cur)
		cur.PushRetrieve(int(offset))

	case bytecode.OpUnsetRetrievePoint:
		cur.PopRetrieve()

	case bytecode.OpRaise:
		exc := cur.Pop()
		cur.CurrentException = exc
		if !cur.Raise(exc) {
			return SigUnhandledException, exc, nil
		}

	case bytecode.OpInitException:
		if cur.CurrentException != nil {
			cur.Push(cur.CurrentException)
		} else {
			cur.Push(value.None)
		}

	case bytecode.OpResetException:
		cur.CurrentException = nil

	case bytecode.OpOpenPackage:
		sym := in.readSymbol(cur)
		pkg := in.Program.Package(sym.Name)
		cur.PackageStack = append(cur.PackageStack, pkg)

	case bytecode.OpClosePackage:
		if n := len(cur.PackageStack); n > 0 {
			cur.PackageStack = cur.PackageStack[:n-1]
		}

	case bytecode.OpRegisterClass:
		sym := in.readSymbol(cur)
		protoData := cur.Pop()
		obj, ok := protoData.Object.(*class.Object)
		if !ok {
			return SigQuantum, nil, errors.NewTypeMismatch("register_class with non-class prototype", errors.SourceLocation{})
		}
		if err := obj.Class.Generate(); err != nil {
			return SigQuantum, nil, err
		}
		if pkg := cur.CurrentPackage(); pkg != nil {
			pkg.RegisterClass(sym, obj.Class, protoData)
		}

	case bytecode.OpOpenPrinter:
		cur.PushPrinter(stdoutPrinter{})

	case bytecode.OpClosePrinter:
		cur.PopPrinter()

	case bytecode.OpPrint:
		v := cur.Pop()
		cur.Print(value.NewWeak(v, value.FlagNone))

	case bytecode.OpModuleEnd:
		return SigModuleEnd, value.None, nil

	case bytecode.OpExitThread:
		return SigExitThread, value.None, nil

	case bytecode.OpExitExec:
		return SigExitExec, value.None, nil

	default:
		return SigQuantum, nil, errors.New(errors.InternalError, "unimplemented opcode "+node.Op.String(), errors.SourceLocation{})
	}

	return SigQuantum, nil, nil
}

var opcodeToOperator = map[bytecode.OpCode]class.Operator{
	bytecode.OpAdd: class.OpAdd, bytecode.OpSub: class.OpSub, bytecode.OpMul: class.OpMul,
	bytecode.OpDiv: class.OpDiv, bytecode.OpMod: class.OpMod,
	bytecode.OpEqual: class.OpEqual, bytecode.OpNotEqual: class.OpNotEqual,
	bytecode.OpLess: class.OpLess, bytecode.OpLessEqual: class.OpLessEqual,
	bytecode.OpGreater: class.OpGreater, bytecode.OpGreaterEqual: class.OpGreaterEqual,
	bytecode.OpNegate: class.OpNegate, bytecode.OpNot: class.OpNot,
}

func bitwise(cur *cursor.Cursor, op bytecode.OpCode, lhs, rhs *value.Data) (*value.Data, error) {
	if lhs.Format != value.FmtNumber || rhs.Format != value.FmtNumber {
		return nil, errors.NewTypeMismatch("bitwise operator requires numbers", errors.SourceLocation{})
	}
	a, b := int64(lhs.Number), int64(rhs.Number)
	switch op {
	case bytecode.OpBitAnd:
		return cur.Number(float64(a & b)), nil
	case bytecode.OpBitOr:
		return cur.Number(float64(a | b)), nil
	case bytecode.OpBitXor:
		return cur.Number(float64(a ^ b)), nil
	case bytecode.OpShiftLeft:
		return cur.Number(float64(a << uint64(b))), nil
	case bytecode.OpShiftRight:
		return cur.Number(float64(a >> uint64(b))), nil
	}
	return nil, errors.NewTypeMismatch("unknown bitwise operator", errors.SourceLocation{})
}

func classOfData(d *value.Data) *class.Class {
	if d == nil || d.Format != value.FmtObject {
		return nil
	}
	if obj, ok := d.Object.(*class.Object); ok {
		return obj.Class
	}
	return nil
}

func popN(cur *cursor.Cursor, n int) []*value.Data {
	args := make([]*value.Data, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = cur.Pop()
	}
	return args
}

func wrapIterator(cur *cursor.Cursor, it *container.Iterator) *value.Data {
	d := cur.GC.Alloc(byte(container.MetaIterator))
	d.Format = value.FmtObject
	d.Object = it
	return d
}

func attachCaptures(fnData *value.Data, captures *symbol.Map[*symbol.Symbol, value.Reference]) *value.Data {
	fn, ok := fnData.Function.(*class.FunctionValue)
	if !ok {
		return fnData
	}
	cloned := class.NewFunctionValue(fn.Name)
	for sig, entry := range fn.Signatures {
		cloned.AddSignature(sig, entry.Handle, captures)
	}
	return &value.Data{Format: value.FmtFunction, Function: cloned, Reachable: true}
}

// resolveInitCall implements spec §4.6's init_call routing: a class
// prototype routes through `new` (construction, plus its `new`
// overload if declared); an instance routes through `()`; a Function
// resolves its signature table directly.
func (in *Interp) resolveInitCall(cur *cursor.Cursor, callee *value.Data, args []*value.Data) error {
	if callee.Format == value.FmtObject {
		if obj, ok := callee.Object.(*class.Object); ok {
			if obj.IsPrototype() {
				instance := obj.Class.Construct()
				instanceData := &value.Data{Format: value.FmtObject, Object: instance, Reachable: true}
				if ctor := obj.Class.Operator(class.OpNew); ctor != nil {
					sig, entry, err := callutil.ResolveCall(ctor, args)
					if err != nil {
						return err
					}
					bound := callutil.BindParameters(sig, args, func(it *container.Iterator) *value.Data { return wrapIterator(cur, it) })
					cur.Pending = cursor.PendingCall{Handle: entry.Handle, Self: instanceData, Args: bound, IsConstructor: true}
					return nil
				}
				cur.Pending = cursor.PendingCall{Handle: &bytecode.Handle{IsBuiltin: true, Builtin: func(bytecode.HostContext) (*value.Data, error) {
					return instanceData, nil
				}}, Self: instanceData, IsConstructor: true}
				return nil
			}
			call := obj.Class.Operator(class.OpCall)
			if call == nil {
				return errors.NewTypeMismatch("object of class "+obj.Class.Name+" is not callable", errors.SourceLocation{})
			}
			sig, entry, err := callutil.ResolveCall(call, args)
			if err != nil {
				return err
			}
			bound := callutil.BindParameters(sig, args, func(it *container.Iterator) *value.Data { return wrapIterator(cur, it) })
			cur.Pending = cursor.PendingCall{Handle: entry.Handle, Self: callee, Args: bound}
			return nil
		}
	}
	fn, ok := callee.Function.(*class.FunctionValue)
	if !ok {
		return errors.NewTypeMismatch("callee is not callable", errors.SourceLocation{})
	}
	sig, entry, err := callutil.ResolveCall(fn, args)
	if err != nil {
		return err
	}
	bound := callutil.BindParameters(sig, args, func(it *container.Iterator) *value.Data { return wrapIterator(cur, it) })
	cur.Pending = cursor.PendingCall{Handle: entry.Handle, Args: bound, Captures: entry.Captures}
	return nil
}

// resolveMemberCall implements init_member_call (spec §4.6): resolves
// the method by name, enforces visibility, and implicitly passes the
// receiver as `self` unless the member is global (static).
func (in *Interp) resolveMemberCall(cur *cursor.Cursor, receiver *value.Data, sym *symbol.Symbol, args []*value.Data) error {
	obj, ok := receiver.Object.(*class.Object)
	if !ok {
		return errors.NewTypeMismatch("init_member_call on non-object", errors.SourceLocation{})
	}
	m, ok := obj.Class.Members.Get(sym)
	if !ok {
		return errors.NewNotFound("method "+sym.Name+" not found on "+obj.Class.Name, errors.SourceLocation{})
	}
	if err := class.CheckAccess(m, cur.ExecutingClass, packagePathOf(obj.Class)); err != nil {
		return err
	}
	var memberData *value.Data
	if m.IsGlobal() {
		ref, _ := obj.Class.Globals.Get(sym)
		memberData = ref.Data
	} else {
		ref, _ := obj.Slot(m)
		memberData = ref.Data
	}
	fn, ok := memberData.Function.(*class.FunctionValue)
	if !ok {
		return errors.NewTypeMismatch(sym.Name+" is not callable on "+obj.Class.Name, errors.SourceLocation{})
	}
	sig, entry, err := callutil.ResolveCall(fn, args)
	if err != nil {
		return err
	}
	bound := callutil.BindParameters(sig, args, func(it *container.Iterator) *value.Data { return wrapIterator(cur, it) })
	self := receiver
	if m.IsGlobal() {
		self = nil
	}
	cur.Pending = cursor.PendingCall{Handle: entry.Handle, Self: self, Args: bound, Captures: entry.Captures}
	return nil
}

func (in *Interp) loadMember(cur *cursor.Cursor, receiver *value.Data, sym *symbol.Symbol) (*value.Data, error) {
	obj, ok := receiver.Object.(*class.Object)
	if !ok {
		return nil, errors.NewTypeMismatch("load_member on non-object", errors.SourceLocation{})
	}
	m, ok := obj.Class.Members.Get(sym)
	if !ok {
		return nil, errors.NewNotFound("member "+sym.Name+" not found on "+obj.Class.Name, errors.SourceLocation{})
	}
	if err := class.CheckAccess(m, cur.ExecutingClass, packagePathOf(obj.Class)); err != nil {
		return nil, err
	}
	if m.IsGlobal() {
		ref, _ := obj.Class.Globals.Get(sym)
		return ref.Data, nil
	}
	ref, ok := obj.Slot(m)
	if !ok {
		return nil, errors.NewNotFound("slot for "+sym.Name+" unavailable", errors.SourceLocation{})
	}
	return ref.Data, nil
}

func (in *Interp) storeMember(cur *cursor.Cursor, receiver *value.Data, sym *symbol.Symbol, val *value.Data) error {
	obj, ok := receiver.Object.(*class.Object)
	if !ok {
		return errors.NewTypeMismatch("store_member on non-object", errors.SourceLocation{})
	}
	m, ok := obj.Class.Members.Get(sym)
	if !ok {
		return errors.NewNotFound("member "+sym.Name+" not found on "+obj.Class.Name, errors.SourceLocation{})
	}
	if err := class.CheckAccess(m, cur.ExecutingClass, packagePathOf(obj.Class)); err != nil {
		return err
	}
	if m.IsGlobal() {
		obj.Class.Globals.Set(sym, value.NewWeak(val, m.Flags))
		return nil
	}
	if !obj.SetSlot(m, val) {
		return errors.NewNotFound("slot for "+sym.Name+" unavailable", errors.SourceLocation{})
	}
	return nil
}

func enumerate(haystack *value.Data) (*container.Iterator, error) {
	if haystack.Format != value.FmtObject {
		return nil, errors.NewTypeMismatch("cannot enumerate "+haystack.Format.String(), errors.SourceLocation{})
	}
	switch h := haystack.Object.(type) {
	case *container.Array:
		items := make([]value.Reference, len(h.Elements))
		copy(items, h.Elements)
		return container.NewEagerIterator(items), nil
	case *container.Hash:
		return container.NewEagerIterator(h.Keys()), nil
	case *container.String:
		return container.NewEagerIterator(nil), nil
	case *container.Iterator:
		return h, nil
	}
	return nil, errors.NewTypeMismatch("cannot enumerate this object", errors.SourceLocation{})
}

func (in *Interp) findFirst(cur *cursor.Cursor, haystack, predicate *value.Data) (*value.Data, error) {
	it, err := enumerate(haystack)
	if err != nil {
		return nil, err
	}
	fn, ok := predicate.Function.(*class.FunctionValue)
	if !ok || cur.Call == nil {
		return value.None, nil
	}
	for {
		ref, ok := it.Next()
		if !ok {
			return value.None, nil
		}
		sig, entry, rerr := callutil.ResolveCall(fn, []*value.Data{ref.Data})
		if rerr != nil {
			return nil, rerr
		}
		_ = sig
		result, cerr := cur.Call(entry.Handle, nil, []*value.Data{ref.Data})
		if cerr != nil {
			return nil, cerr
		}
		if result.Truthy() {
			return ref.Data, nil
		}
	}
}

// packagePathOf resolves the package a class was declared under, for
// spec §4.11's package-visibility check.
func packagePathOf(cl *class.Class) string { return cl.Package }

type stdoutPrinter struct{}

func (stdoutPrinter) Write(ref value.Reference) {
	s, ok := ref.Data.Object.(*container.String)
	if ok {
		print(s.Value)
		return
	}
}
