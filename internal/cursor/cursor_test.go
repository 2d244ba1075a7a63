package cursor

import (
	"testing"

	"mint/internal/bytecode"
	"mint/internal/class"
	"mint/internal/gc"
	"mint/internal/symbol"
	"mint/internal/value"
)

func newTestCursor() *Cursor {
	symbols := symbol.NewTable()
	collector := gc.New(nil)
	packages := map[string]*class.Package{}
	return New(collector, symbols, packages)
}

func TestPushPopPeek(t *testing.T) {
	c := newTestCursor()
	a := &value.Data{Format: value.FmtNumber, Number: 1}
	b := &value.Data{Format: value.FmtNumber, Number: 2}
	c.Push(a)
	c.Push(b)

	if c.Peek().Number != 2 {
		t.Fatalf("Peek() = %v, want 2", c.Peek().Number)
	}
	if got := c.Pop(); got.Number != 2 {
		t.Errorf("Pop() = %v, want 2", got.Number)
	}
	if got := c.Pop(); got.Number != 1 {
		t.Errorf("Pop() = %v, want 1", got.Number)
	}
}

func TestPopOnEmptyStackReturnsNone(t *testing.T) {
	c := newTestCursor()
	if got := c.Pop(); got != value.None {
		t.Errorf("Pop() on empty stack = %v, want value.None", got)
	}
}

func TestPushFramePopFrameRestoresIPAndModule(t *testing.T) {
	c := newTestCursor()
	caller := bytecode.NewModule(0, symbol.NewTable())
	callee := bytecode.NewModule(1, symbol.NewTable())
	c.Module = caller
	c.IP = 7

	c.PushFrame(callee, "pkg", nil, false, 0, nil)
	if c.Module != callee {
		t.Fatal("PushFrame should switch the current module to callee")
	}

	f := c.PopFrame()
	if f == nil {
		t.Fatal("PopFrame returned nil")
	}
	if c.Module != caller || c.IP != 7 {
		t.Errorf("PopFrame should restore caller module and IP 7, got module=%v ip=%d", c.Module, c.IP)
	}
}

func TestResolveSymbolOrderLocalsThenCapturesThenPackage(t *testing.T) {
	c := newTestCursor()
	table := symbol.NewTable()
	name := table.Intern("x")

	pkg := class.NewPackage("demo")
	pkg.SetGlobal(name, value.NewStrong(&value.Data{Format: value.FmtNumber, Number: 100}, value.FlagGlobal))
	c.PackageStack = append(c.PackageStack, pkg)

	// with no frame, resolves through the package
	ref, ok := c.ResolveSymbol(name)
	if !ok || ref.Data.Number != 100 {
		t.Fatalf("ResolveSymbol (package only) = %v, %v, want 100, true", ref.Data, ok)
	}

	captures := symbol.NewSymbolMapping[value.Reference]()
	captures.Set(name, value.NewWeak(&value.Data{Format: value.FmtNumber, Number: 200}, value.FlagNone))
	c.PushFrame(bytecode.NewModule(0, table), "demo", nil, false, 0, captures)

	// captures should now win over the package global
	ref, ok = c.ResolveSymbol(name)
	if !ok || ref.Data.Number != 200 {
		t.Fatalf("ResolveSymbol (captures over package) = %v, %v, want 200, true", ref.Data, ok)
	}

	// a frame-local binding should win over captures
	c.CurrentFrame().Symbols.Set(name, value.NewWeak(&value.Data{Format: value.FmtNumber, Number: 300}, value.FlagNone))
	ref, ok = c.ResolveSymbol(name)
	if !ok || ref.Data.Number != 300 {
		t.Fatalf("ResolveSymbol (locals over captures) = %v, %v, want 300, true", ref.Data, ok)
	}
}

func TestStoreSymbolDefinesNewFrameLocal(t *testing.T) {
	c := newTestCursor()
	table := symbol.NewTable()
	name := table.Intern("y")
	c.PushFrame(bytecode.NewModule(0, table), "demo", nil, false, 0, nil)

	c.StoreSymbol(name, &value.Data{Format: value.FmtNumber, Number: 5})
	ref, ok := c.ResolveSymbol(name)
	if !ok || ref.Data.Number != 5 {
		t.Fatalf("ResolveSymbol after StoreSymbol = %v, %v, want 5, true", ref.Data, ok)
	}
}

func TestRaiseUnwindsToRetrievePoint(t *testing.T) {
	c := newTestCursor()
	table := symbol.NewTable()
	c.Push(&value.Data{Format: value.FmtNumber, Number: 1})
	c.PushFrame(bytecode.NewModule(0, table), "demo", nil, false, 0, nil)
	c.PushRetrieve(42)
	c.Push(&value.Data{Format: value.FmtNumber, Number: 2})
	c.PushFrame(bytecode.NewModule(0, table), "demo", nil, false, 0, nil)

	exc := &value.Data{Format: value.FmtObject}
	if !c.Raise(exc) {
		t.Fatal("Raise should find the pushed retrieve point")
	}
	if c.IP != 42 {
		t.Errorf("IP after Raise = %d, want 42 (handler offset)", c.IP)
	}
	if len(c.Frames) != 1 {
		t.Errorf("Frames after Raise = %d, want 1 (unwound back to retrieve point)", len(c.Frames))
	}
	if c.Peek() != exc {
		t.Error("Raise should leave the exception value on top of the stack")
	}
}

func TestRaiseWithNoRetrievePointReturnsFalse(t *testing.T) {
	c := newTestCursor()
	if c.Raise(&value.Data{Format: value.FmtObject}) {
		t.Error("Raise with no retrieve point should return false")
	}
}

type recordingPrinter struct{ got []value.Reference }

func (p *recordingPrinter) Write(ref value.Reference) { p.got = append(p.got, ref) }

func TestPrinterStackWritesToTop(t *testing.T) {
	c := newTestCursor()
	outer := &recordingPrinter{}
	inner := &recordingPrinter{}
	c.PushPrinter(outer)
	c.PushPrinter(inner)

	c.Print(value.NewWeak(&value.Data{Format: value.FmtNumber, Number: 1}, value.FlagNone))
	if len(inner.got) != 1 || len(outer.got) != 0 {
		t.Error("Print should write to only the innermost printer")
	}

	c.PopPrinter()
	c.Print(value.NewWeak(&value.Data{Format: value.FmtNumber, Number: 2}, value.FlagNone))
	if len(outer.got) != 1 {
		t.Error("Print after PopPrinter should fall through to the next printer")
	}
}

func TestCallOverloadReportsUnhandledWhenOperatorMissing(t *testing.T) {
	c := newTestCursor()
	cl := class.NewClass("Empty", "pkg", 0)
	cl.Generate()

	_, handled, err := c.CallOverload(cl, class.OpAdd, nil, nil)
	if err != nil {
		t.Fatalf("CallOverload: %v", err)
	}
	if handled {
		t.Error("CallOverload should report handled=false when no overload is installed")
	}
}

func TestCallOverloadInvokesInjectedCall(t *testing.T) {
	c := newTestCursor()
	cl := class.NewClass("Vec", "pkg", 0)
	fn := class.NewFunctionValue("+")
	fn.AddSignature(class.Signature(1), &bytecode.Handle{}, nil)
	cl.SetOperator(class.OpAdd, fn)
	cl.Generate()

	want := &value.Data{Format: value.FmtNumber, Number: 9}
	c.Call = func(h *bytecode.Handle, self *value.Data, args []*value.Data) (*value.Data, error) {
		return want, nil
	}

	got, handled, err := c.CallOverload(cl, class.OpAdd, nil, []*value.Data{{Format: value.FmtNumber, Number: 1}})
	if err != nil {
		t.Fatalf("CallOverload: %v", err)
	}
	if !handled || got != want {
		t.Errorf("CallOverload = %v, %v, want the injected Call's result, true", got, handled)
	}
}

func TestRootsCollectsStackFramesAndException(t *testing.T) {
	c := newTestCursor()
	table := symbol.NewTable()
	stackVal := &value.Data{Format: value.FmtNumber, Number: 1}
	c.Push(stackVal)

	c.PushFrame(bytecode.NewModule(0, table), "demo", nil, false, 0, nil)
	localVal := &value.Data{Format: value.FmtNumber, Number: 2}
	c.CurrentFrame().Symbols.Set(table.Intern("z"), value.NewWeak(localVal, value.FlagNone))

	exc := &value.Data{Format: value.FmtObject}
	c.CurrentException = exc

	roots := c.Roots()
	found := map[*value.Data]bool{}
	for _, d := range roots {
		found[d] = true
	}
	if !found[stackVal] || !found[localVal] || !found[exc] {
		t.Error("Roots() should include the value stack, frame locals, and the current exception")
	}
}
