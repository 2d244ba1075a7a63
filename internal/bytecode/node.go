package bytecode

import "mint/internal/symbol"

// NodeTag identifies which inline-parameter field of a Node is live
// (spec §3.7: "one Node holds one of {opcode, small integer, Symbol*,
// Data* (constant pool entry), Reference*}").
type NodeTag byte

const (
	TagOpcode NodeTag = iota
	TagInt
	TagSymbol
	TagConstant
	TagHandle
)

// Node is one element of a Module's flat instruction vector. An
// opcode Node is always followed by however many operand Nodes that
// opcode consumes (the interp dispatch loop reads them with its
// readInt/readSymbol/readConstant/readHandle helpers);
// there is no separate operand-encoding scheme.
type Node struct {
	Tag NodeTag

	Op  OpCode        // valid when Tag == TagOpcode
	Int int32         // valid when Tag == TagInt
	Sym *symbol.Symbol // valid when Tag == TagSymbol
	Idx int32          // valid when Tag == TagConstant or TagHandle: pool/handle table index
}

func OpNode(op OpCode) Node        { return Node{Tag: TagOpcode, Op: op} }
func IntNode(v int32) Node         { return Node{Tag: TagInt, Int: v} }
func SymbolNode(s *symbol.Symbol) Node { return Node{Tag: TagSymbol, Sym: s} }
func ConstantNode(idx int32) Node  { return Node{Tag: TagConstant, Idx: idx} }
func HandleNode(idx int32) Node    { return Node{Tag: TagHandle, Idx: idx} }

// DebugInfo maps one Node offset back to a source position (spec §3.7).
type DebugInfo struct {
	Line     int
	Column   int
	File     string
	Function string
}
