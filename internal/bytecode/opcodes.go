// Package bytecode implements the compiler-to-core contract (spec §6.1):
// a flat vector of tagged Nodes, a constant pool, and Handles identifying
// callable entry points. The core only ever reads Nodes forward from an
// instruction pointer except where a jump Node redirects it (spec §6.1).
package bytecode

// OpCode enumerates the full instruction set of spec §4.5.
type OpCode byte

const (
	// Load / store: fast (slot-indexed local), symbol (name-indexed),
	// member (object field), operator (bound operator method value),
	// constant (constant pool), var (upvalue/capture fallback).
	OpLoadConstant OpCode = iota
	OpLoadFast
	OpStoreFast
	OpLoadSymbol
	OpStoreSymbol
	OpLoadMember
	OpStoreMember
	OpLoadOperator
	OpLoadVar
	OpStoreVar
	OpPop
	OpDup

	// Arithmetic / comparison / bitwise / unary.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpNegate
	OpNot
	OpBitNot

	// Control flow.
	OpJump
	OpJumpZero
	OpCaseJump
	OpAndPreCheck
	OpOrPreCheck

	// Range construction / iteration.
	OpRangeInit
	OpRangeNext
	OpRangeCheck
	OpRangeIteratorCheck

	// Find / in.
	OpFindOp
	OpFindInit
	OpFindNext
	OpFindCheck
	OpInOp

	// Call setup and dispatch.
	OpInitCall
	OpInitMemberCall
	OpInitOperatorCall
	OpCall
	OpCallMember
	OpCallBuiltin
	OpExitCall

	// Capture (closures).
	OpInitCapture
	OpCaptureSymbol
	OpCaptureAs
	OpCaptureAll

	// Generators.
	OpBeginGeneratorExpression
	OpEndGeneratorExpression
	OpYield
	OpYieldExpression
	OpExitGenerator
	OpYieldExitGenerator

	// Exceptions.
	OpSetRetrievePoint
	OpUnsetRetrievePoint
	OpRaise
	OpInitException
	OpResetException

	// Package / class.
	OpOpenPackage
	OpClosePackage
	OpRegisterClass

	// Printing.
	OpOpenPrinter
	OpClosePrinter
	OpPrint

	// Module / thread termination.
	OpModuleEnd
	OpExitThread
	OpExitExec
)

var opcodeNames = map[OpCode]string{
	OpLoadConstant: "load_constant", OpLoadFast: "load_fast", OpStoreFast: "store_fast",
	OpLoadSymbol: "load_symbol", OpStoreSymbol: "store_symbol",
	OpLoadMember: "load_member", OpStoreMember: "store_member",
	OpLoadOperator: "load_operator", OpLoadVar: "load_var", OpStoreVar: "store_var",
	OpPop: "pop", OpDup: "dup",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMod: "mod",
	OpBitAnd: "bit_and", OpBitOr: "bit_or", OpBitXor: "bit_xor",
	OpShiftLeft: "shift_left", OpShiftRight: "shift_right",
	OpEqual: "equal", OpNotEqual: "not_equal", OpLess: "less", OpLessEqual: "less_equal",
	OpGreater: "greater", OpGreaterEqual: "greater_equal",
	OpNegate: "negate", OpNot: "not", OpBitNot: "bit_not",
	OpJump: "jump", OpJumpZero: "jump_zero", OpCaseJump: "case_jump",
	OpAndPreCheck: "and_pre_check", OpOrPreCheck: "or_pre_check",
	OpRangeInit: "range_init", OpRangeNext: "range_next", OpRangeCheck: "range_check",
	OpRangeIteratorCheck: "range_iterator_check",
	OpFindOp: "find_op", OpFindInit: "find_init", OpFindNext: "find_next",
	OpFindCheck: "find_check", OpInOp: "in_op",
	OpInitCall: "init_call", OpInitMemberCall: "init_member_call",
	OpInitOperatorCall: "init_operator_call", OpCall: "call", OpCallMember: "call_member",
	OpCallBuiltin: "call_builtin", OpExitCall: "exit_call",
	OpInitCapture: "init_capture", OpCaptureSymbol: "capture_symbol",
	OpCaptureAs: "capture_as", OpCaptureAll: "capture_all",
	OpBeginGeneratorExpression: "begin_generator_expression",
	OpEndGeneratorExpression:   "end_generator_expression",
	OpYield: "yield", OpYieldExpression: "yield_expression",
	OpExitGenerator: "exit_generator", OpYieldExitGenerator: "yield_exit_generator",
	OpSetRetrievePoint: "set_retrieve_point", OpUnsetRetrievePoint: "unset_retrieve_point",
	OpRaise: "raise", OpInitException: "init_exception", OpResetException: "reset_exception",
	OpOpenPackage: "open_package", OpClosePackage: "close_package", OpRegisterClass: "register_class",
	OpOpenPrinter: "open_printer", OpClosePrinter: "close_printer", OpPrint: "print",
	OpModuleEnd: "module_end", OpExitThread: "exit_thread", OpExitExec: "exit_exec",
}

func (op OpCode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "unknown_opcode"
}
