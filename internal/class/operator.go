package class

// Operator enumerates every overloadable operator slot in a Class's
// operator table (spec §3.4, §4.10). The array is fixed-size and
// index-addressed rather than map-addressed, matching spec §9's design
// note: "represent a Class as (operator table[fixed size], member map,
// owner/slot info, ordered base list)".
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpNegate
	OpNot
	OpNew
	OpCall
	OpIndex
	OpSetIndex
	OpIn
	OpClone
	OpDelete
	OpToString
	OpToNumber
	OpToBoolean

	OperatorCount
)

var operatorNames = [OperatorCount]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEqual: "==", OpNotEqual: "!=", OpLess: "<", OpLessEqual: "<=",
	OpGreater: ">", OpGreaterEqual: ">=", OpNegate: "-@", OpNot: "!",
	OpNew: "new", OpCall: "()", OpIndex: "[]", OpSetIndex: "[]=",
	OpIn: "in", OpClone: "clone", OpDelete: "delete",
	OpToString: "toString", OpToNumber: "toNumber", OpToBoolean: "toBoolean",
}

func (op Operator) String() string {
	if int(op) >= 0 && op < OperatorCount {
		return operatorNames[op]
	}
	return "unknown_operator"
}
