package bytecode

import (
	"mint/internal/symbol"
	"mint/internal/value"
)

// HostContext is the minimal surface a builtin (host) function needs
// from whatever Cursor is calling it (spec §6.2). Declaring it here,
// rather than importing the cursor package, is what lets bytecode sit
// below cursor/interp/scheduler in the dependency graph while still
// letting a Handle carry a native Go callback.
type HostContext interface {
	Pop() *value.Data
	Push(*value.Data)
	Arg(i int) *value.Data
	ArgCount() int
	// Self returns the bound receiver for a method-style builtin, or
	// nil for a free function / static call (spec §6.2).
	Self() *value.Data
}

// HostFunc is a registered builtin method body (spec §6.2).
type HostFunc func(ctx HostContext) (*value.Data, error)

// Handle identifies a callable entry point: either a bytecode offset
// within a Module, or a native HostFunc (spec §3.5, glossary "Handle").
type Handle struct {
	ModuleID        int
	Offset          int
	PackagePath     string
	FastSymbolCount int
	IsGenerator     bool

	IsBuiltin bool
	Builtin   HostFunc
}

// ModuleState mirrors spec §6.1's Module::Info.state.
type ModuleState byte

const (
	NotCompiled ModuleState = iota
	NotLoaded
	Ready
)

// Module owns a flat Node vector, its constant pool, its Handle table,
// and parallel DebugInfo (spec §3.7). The compiler is the only writer;
// the core only ever appends during load and reads thereafter.
type Module struct {
	ID        int
	Nodes     []Node
	Constants []*value.Data
	Handles   []*Handle
	Debug     []DebugInfo

	symbols     *symbol.Table
	handleIndex map[[2]int]int // (moduleID, offset) -> index into Handles, for find_handle
}

// Info is the compiler-to-core contract object (spec §6.1).
type Info struct {
	ID     int
	Module *Module
	Debug  []DebugInfo
	State  ModuleState
}

// NewModule constructs an empty Module sharing symbols with the rest
// of the program image (the Scheduler's AbstractSyntaxTree owns one
// symbol.Table for every Module it loads).
func NewModule(id int, symbols *symbol.Table) *Module {
	return &Module{
		ID:          id,
		symbols:     symbols,
		handleIndex: make(map[[2]int]int),
	}
}

// PushNode appends one Node and its debug position.
func (m *Module) PushNode(n Node, debug DebugInfo) int {
	offset := len(m.Nodes)
	m.Nodes = append(m.Nodes, n)
	m.Debug = append(m.Debug, debug)
	return offset
}

// PushNodes appends several Nodes sharing one debug position (e.g. an
// opcode plus its inline operands).
func (m *Module) PushNodes(debug DebugInfo, nodes ...Node) int {
	offset := len(m.Nodes)
	for _, n := range nodes {
		m.PushNode(n, debug)
	}
	return offset
}

// At returns the Node at offset.
func (m *Module) At(offset int) Node { return m.Nodes[offset] }

// End returns one past the last valid offset.
func (m *Module) End() int { return len(m.Nodes) }

// NextNodeOffset returns the offset the next PushNode call will use.
func (m *Module) NextNodeOffset() int { return len(m.Nodes) }

// MakeSymbol interns name in the program's shared symbol table.
func (m *Module) MakeSymbol(name string) *symbol.Symbol {
	return m.symbols.Intern(name)
}

// MakeConstant appends val to the constant pool and returns its index.
func (m *Module) MakeConstant(val *value.Data) int32 {
	m.Constants = append(m.Constants, val)
	return int32(len(m.Constants) - 1)
}

// MakeHandle returns the Handle for (moduleID, offset), creating it if
// this is the first request — make_handle is idempotent per §6.1.
func (m *Module) MakeHandle(packagePath string, moduleID, offset, fastSymbolCount int, isGenerator bool) *Handle {
	key := [2]int{moduleID, offset}
	if i, ok := m.handleIndex[key]; ok {
		return m.Handles[i]
	}
	h := &Handle{
		ModuleID:        moduleID,
		Offset:          offset,
		PackagePath:     packagePath,
		FastSymbolCount: fastSymbolCount,
		IsGenerator:     isGenerator,
	}
	m.handleIndex[key] = len(m.Handles)
	m.Handles = append(m.Handles, h)
	return h
}

// MakeBuiltinHandle registers a native HostFunc as a callable Handle
// (spec §6.2's registration path). Builtin handles have no (moduleID,
// offset) identity worth deduplicating on, so each call allocates one.
func (m *Module) MakeBuiltinHandle(packagePath string, fn HostFunc) *Handle {
	h := &Handle{PackagePath: packagePath, IsBuiltin: true, Builtin: fn}
	m.Handles = append(m.Handles, h)
	return h
}

// FindHandle looks up a previously created Handle by (moduleID, offset)
// without creating one.
func (m *Module) FindHandle(moduleID, offset int) (*Handle, bool) {
	i, ok := m.handleIndex[[2]int{moduleID, offset}]
	if !ok {
		return nil, false
	}
	return m.Handles[i], true
}

// GetDebugInfo returns the debug position for offset, or the zero
// value if out of range.
func (m *Module) GetDebugInfo(offset int) DebugInfo {
	if offset >= 0 && offset < len(m.Debug) {
		return m.Debug[offset]
	}
	return DebugInfo{}
}
