// Package operator implements the table-driven semantics described in
// spec §4.10: for each (opcode, primary-type) pair, either compute
// directly, coerce the right-hand side and retry, dispatch to a class
// overload, or raise a type-mismatch error. The kernel never imports
// internal/cursor or internal/scheduler — it is handed everything it
// needs to allocate Data and invoke a script-level overload through
// the Allocator and Invoker interfaces below, the same narrow-interface
// layering used by internal/gc and internal/bytecode.
package operator

import (
	"strconv"
	"strings"

	"mint/internal/class"
	"mint/internal/container"
	"mint/internal/errors"
	"mint/internal/value"
)

// Allocator builds fresh, GC-registered Data values. internal/cursor
// supplies the concrete implementation (its Collector is the only
// thing that knows how to register new Data in the live list).
type Allocator interface {
	Number(float64) *value.Data
	Boolean(bool) *value.Data
	String(string) *value.Data
	NewArray(*container.Array) *value.Data
	NewHash(*container.Hash) *value.Data
}

// Invoker calls a resolved FunctionValue/Class overload synchronously
// and returns its result, or calls into `self`'s operator table by
// name. internal/cursor implements this against the dispatch loop.
type Invoker interface {
	CallOverload(owner *class.Class, op class.Operator, self *value.Data, args []*value.Data) (*value.Data, bool, error)
}

// Kernel is stateless apart from its Allocator/Invoker collaborators;
// a Runtime may share one Kernel across every Cursor (spec §9's
// "Runtime context" note — no package-level singleton).
type Kernel struct {
	Alloc  Allocator
	Invoke Invoker
}

func New(alloc Allocator, invoke Invoker) *Kernel {
	return &Kernel{Alloc: alloc, Invoke: invoke}
}

func classOf(d *value.Data) *class.Class {
	if d == nil || d.Format != value.FmtObject {
		return nil
	}
	if obj, ok := d.Object.(*class.Object); ok {
		return obj.Class
	}
	return nil
}

// Binary evaluates lhs `op` rhs (spec §4.10).
func (k *Kernel) Binary(op class.Operator, lhs, rhs *value.Data) (*value.Data, error) {
	switch op {
	case class.OpEqual, class.OpNotEqual:
		return k.equality(op, lhs, rhs)
	}

	if lhs.Format == value.FmtNumber {
		return k.numberBinary(op, lhs, rhs)
	}
	if lhs.Format == value.FmtBoolean {
		return k.booleanBinary(op, lhs, rhs)
	}
	if lhs.Format == value.FmtObject {
		if s, ok := lhs.Object.(*container.String); ok {
			return k.stringBinary(op, s, lhs, rhs)
		}
		if a, ok := lhs.Object.(*container.Array); ok {
			return k.arrayBinary(op, a, rhs)
		}
		if cl := classOf(lhs); cl != nil {
			return k.callOverload(cl, op, lhs, []*value.Data{rhs})
		}
	}
	if lhs.Format == value.FmtFunction {
		if fn, ok := lhs.Function.(*class.FunctionValue); ok {
			return k.functionBinary(op, fn, rhs)
		}
	}

	return nil, errors.NewTypeMismatch("operator "+op.String()+" undefined for "+lhs.Format.String(), errors.SourceLocation{})
}

func (k *Kernel) numberBinary(op class.Operator, lhs, rhs *value.Data) (*value.Data, error) {
	r, err := k.ToNumber(rhs)
	if err != nil {
		return nil, err
	}
	a, b := lhs.Number, r
	switch op {
	case class.OpAdd:
		return k.Alloc.Number(a + b), nil
	case class.OpSub:
		return k.Alloc.Number(a - b), nil
	case class.OpMul:
		return k.Alloc.Number(a * b), nil
	case class.OpDiv:
		if b == 0 {
			return nil, errors.NewOverflow("division by zero", errors.SourceLocation{})
		}
		return k.Alloc.Number(a / b), nil
	case class.OpMod:
		if b == 0 {
			return nil, errors.NewOverflow("modulo by zero", errors.SourceLocation{})
		}
		return k.Alloc.Number(float64(int64(a) % int64(b))), nil
	case class.OpLess:
		return k.Alloc.Boolean(a < b), nil
	case class.OpLessEqual:
		return k.Alloc.Boolean(a <= b), nil
	case class.OpGreater:
		return k.Alloc.Boolean(a > b), nil
	case class.OpGreaterEqual:
		return k.Alloc.Boolean(a >= b), nil
	}
	return nil, errors.NewTypeMismatch("operator "+op.String()+" undefined for number", errors.SourceLocation{})
}

func (k *Kernel) booleanBinary(op class.Operator, lhs, rhs *value.Data) (*value.Data, error) {
	b, err := k.ToBoolean(rhs)
	if err != nil {
		return nil, err
	}
	switch op {
	case class.OpAdd:
		return k.Alloc.Boolean(lhs.Boolean || b), nil
	case class.OpMul:
		return k.Alloc.Boolean(lhs.Boolean && b), nil
	}
	return nil, errors.NewTypeMismatch("operator "+op.String()+" undefined for boolean", errors.SourceLocation{})
}

func (k *Kernel) stringBinary(op class.Operator, s *container.String, lhsData, rhs *value.Data) (*value.Data, error) {
	switch op {
	case class.OpAdd:
		str, err := k.ToStringValue(rhs)
		if err != nil {
			return nil, err
		}
		return k.Alloc.String(s.Concat(container.NewString(str)).Value), nil
	case class.OpLess, class.OpLessEqual, class.OpGreater, class.OpGreaterEqual:
		other, ok := rhs.Object.(*container.String)
		if !ok {
			return nil, errors.NewTypeMismatch("cannot compare string to non-string", errors.SourceLocation{})
		}
		cmp := strings.Compare(s.Value, other.Value)
		switch op {
		case class.OpLess:
			return k.Alloc.Boolean(cmp < 0), nil
		case class.OpLessEqual:
			return k.Alloc.Boolean(cmp <= 0), nil
		case class.OpGreater:
			return k.Alloc.Boolean(cmp > 0), nil
		default:
			return k.Alloc.Boolean(cmp >= 0), nil
		}
	}
	_ = lhsData
	return nil, errors.NewTypeMismatch("operator "+op.String()+" undefined for string", errors.SourceLocation{})
}

func (k *Kernel) arrayBinary(op class.Operator, a *container.Array, rhs *value.Data) (*value.Data, error) {
	if op != class.OpAdd {
		return nil, errors.NewTypeMismatch("operator "+op.String()+" undefined for array", errors.SourceLocation{})
	}
	other, ok := rhs.Object.(*container.Array)
	if !ok {
		return nil, errors.NewTypeMismatch("cannot concatenate array with non-array", errors.SourceLocation{})
	}
	return k.Alloc.NewArray(a.Concat(other)), nil
}

// functionBinary implements spec §4.10's special case: `+` on two
// Functions merges their signature maps.
func (k *Kernel) functionBinary(op class.Operator, fn *class.FunctionValue, rhs *value.Data) (*value.Data, error) {
	if op != class.OpAdd {
		return nil, errors.NewTypeMismatch("operator "+op.String()+" undefined for function", errors.SourceLocation{})
	}
	other, ok := rhs.Function.(*class.FunctionValue)
	if !ok {
		return nil, errors.NewTypeMismatch("cannot merge function with non-function", errors.SourceLocation{})
	}
	merged := fn.Merge(other)
	return &value.Data{Format: value.FmtFunction, Function: merged, Reachable: true}, nil
}

// equality implements spec §4.10: none/null compare equal to
// themselves only; `==`/`!=` otherwise defer to value or overload
// comparison.
func (k *Kernel) equality(op class.Operator, lhs, rhs *value.Data) (*value.Data, error) {
	eq := k.rawEqual(lhs, rhs)
	if op == class.OpNotEqual {
		eq = !eq
	}
	return k.Alloc.Boolean(eq), nil
}

func (k *Kernel) rawEqual(lhs, rhs *value.Data) bool {
	if lhs.IsNone() || lhs.IsNull() || rhs.IsNone() || rhs.IsNull() {
		return (lhs.IsNone() && rhs.IsNone()) || (lhs.IsNull() && rhs.IsNull())
	}
	if lhs.Format != rhs.Format {
		return false
	}
	switch lhs.Format {
	case value.FmtNumber:
		return lhs.Number == rhs.Number
	case value.FmtBoolean:
		return lhs.Boolean == rhs.Boolean
	case value.FmtObject:
		if ls, ok := lhs.Object.(*container.String); ok {
			if rs, ok := rhs.Object.(*container.String); ok {
				return ls.Equal(rs)
			}
			return false
		}
		if cl := classOf(lhs); cl != nil && cl.Operator(class.OpEqual) != nil {
			result, handled, err := k.Invoke.CallOverload(cl, class.OpEqual, lhs, []*value.Data{rhs})
			if err == nil && handled && result != nil {
				return result.Truthy()
			}
		}
		return lhs.Object == rhs.Object
	default:
		return lhs == rhs
	}
}

// Unary evaluates `op operand` for unary operators (negate, not).
func (k *Kernel) Unary(op class.Operator, operand *value.Data) (*value.Data, error) {
	switch op {
	case class.OpNegate:
		if operand.Format == value.FmtNumber {
			return k.Alloc.Number(-operand.Number), nil
		}
		if cl := classOf(operand); cl != nil {
			return k.callOverload(cl, op, operand, nil)
		}
	case class.OpNot:
		b, err := k.ToBoolean(operand)
		if err != nil {
			return nil, err
		}
		return k.Alloc.Boolean(!b), nil
	}
	return nil, errors.NewTypeMismatch("operator "+op.String()+" undefined for "+operand.Format.String(), errors.SourceLocation{})
}

// In implements spec §4.10's `in` operator: on objects, prefer a
// one-argument `in` overload; otherwise fall back to enumeration via
// the container's native membership test.
func (k *Kernel) In(needle, haystack *value.Data) (*value.Data, error) {
	if cl := classOf(haystack); cl != nil && cl.Operator(class.OpIn) != nil {
		return k.callOverload(cl, class.OpIn, haystack, []*value.Data{needle})
	}
	if haystack.Format == value.FmtObject {
		switch h := haystack.Object.(type) {
		case *container.Array:
			for _, ref := range h.Elements {
				if k.rawEqual(needle, ref.Data) {
					return k.Alloc.Boolean(true), nil
				}
			}
			return k.Alloc.Boolean(false), nil
		case *container.Hash:
			_, ok := h.Get(needle)
			return k.Alloc.Boolean(ok), nil
		case *container.String:
			if ns, ok := needle.Object.(*container.String); ok {
				return k.Alloc.Boolean(strings.Contains(h.Value, ns.Value)), nil
			}
		}
	}
	return nil, errors.NewTypeMismatch("operator in undefined for "+haystack.Format.String(), errors.SourceLocation{})
}

func (k *Kernel) callOverload(cl *class.Class, op class.Operator, self *value.Data, args []*value.Data) (*value.Data, error) {
	fn := cl.Operator(op)
	if fn == nil {
		return nil, errors.NewTypeMismatch("operator "+op.String()+" undefined for "+cl.Name, errors.SourceLocation{})
	}
	result, _, err := k.Invoke.CallOverload(cl, op, self, args)
	return result, err
}

// ToNumber implements the `to_number` coercion (spec §4.10(b)): boolean
// -> 0/1, number unchanged, string -> parsed numeric prefix, object ->
// dispatch to `toNumber` overload else error.
func (k *Kernel) ToNumber(d *value.Data) (float64, error) {
	switch d.Format {
	case value.FmtNumber:
		return d.Number, nil
	case value.FmtBoolean:
		if d.Boolean {
			return 1, nil
		}
		return 0, nil
	case value.FmtObject:
		if s, ok := d.Object.(*container.String); ok {
			return parseNumericPrefix(s.Value), nil
		}
		if cl := classOf(d); cl != nil && cl.Operator(class.OpToNumber) != nil {
			result, err := k.callOverload(cl, class.OpToNumber, d, nil)
			if err != nil {
				return 0, err
			}
			return result.Number, nil
		}
	}
	return 0, errors.NewTypeMismatch("cannot convert "+d.Format.String()+" to number", errors.SourceLocation{})
}

func (k *Kernel) ToBoolean(d *value.Data) (bool, error) {
	if d.Format == value.FmtObject {
		if cl := classOf(d); cl != nil && cl.Operator(class.OpToBoolean) != nil {
			result, err := k.callOverload(cl, class.OpToBoolean, d, nil)
			if err != nil {
				return false, err
			}
			return result.Truthy(), nil
		}
	}
	return d.Truthy(), nil
}

func (k *Kernel) ToStringValue(d *value.Data) (string, error) {
	switch d.Format {
	case value.FmtNumber:
		return strconv.FormatFloat(d.Number, 'g', -1, 64), nil
	case value.FmtBoolean:
		if d.Boolean {
			return "true", nil
		}
		return "false", nil
	case value.FmtNone:
		return "none", nil
	case value.FmtNull:
		return "null", nil
	case value.FmtObject:
		if s, ok := d.Object.(*container.String); ok {
			return s.Value, nil
		}
		if cl := classOf(d); cl != nil && cl.Operator(class.OpToString) != nil {
			result, err := k.callOverload(cl, class.OpToString, d, nil)
			if err != nil {
				return "", err
			}
			if rs, ok := result.Object.(*container.String); ok {
				return rs.Value, nil
			}
		}
	}
	return "", errors.NewTypeMismatch("cannot convert "+d.Format.String()+" to string", errors.SourceLocation{})
}

func parseNumericPrefix(s string) float64 {
	i := 0
	n := len(s)
	for i < n && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	start := i
	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}
	sawDigit := false
	for i < n && s[i] >= '0' && s[i] <= '9' {
		i++
		sawDigit = true
	}
	if i < n && s[i] == '.' {
		i++
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
			sawDigit = true
		}
	}
	if !sawDigit {
		return 0
	}
	f, err := strconv.ParseFloat(s[start:i], 64)
	if err != nil {
		return 0
	}
	return f
}

// Index implements subscript read (spec B1: out-of-range raises).
func (k *Kernel) Index(receiver, idx *value.Data) (*value.Data, error) {
	if cl := classOf(receiver); cl != nil && cl.Operator(class.OpIndex) != nil {
		return k.callOverload(cl, class.OpIndex, receiver, []*value.Data{idx})
	}
	if receiver.Format != value.FmtObject {
		return nil, errors.NewTypeMismatch("cannot index "+receiver.Format.String(), errors.SourceLocation{})
	}
	switch r := receiver.Object.(type) {
	case *container.Array:
		i := int(idx.Number)
		ref, ok := r.At(i)
		if !ok {
			return nil, errors.NewNotFound("array index out of range", errors.SourceLocation{})
		}
		return ref.Data, nil
	case *container.String:
		i := int(idx.Number)
		sub, ok := r.At(i)
		if !ok {
			return nil, errors.NewNotFound("string index out of range", errors.SourceLocation{})
		}
		return k.Alloc.String(sub.Value), nil
	case *container.Hash:
		ref, ok := r.Get(idx)
		if !ok {
			return nil, errors.NewNotFound("key not found in hash", errors.SourceLocation{})
		}
		return ref.Data, nil
	}
	return nil, errors.NewTypeMismatch("cannot index this object", errors.SourceLocation{})
}

// SetIndex implements subscript write.
func (k *Kernel) SetIndex(receiver, idx, val *value.Data) error {
	if cl := classOf(receiver); cl != nil && cl.Operator(class.OpSetIndex) != nil {
		_, err := k.callOverload(cl, class.OpSetIndex, receiver, []*value.Data{idx, val})
		return err
	}
	if receiver.Format != value.FmtObject {
		return errors.NewTypeMismatch("cannot index-assign "+receiver.Format.String(), errors.SourceLocation{})
	}
	switch r := receiver.Object.(type) {
	case *container.Array:
		if !r.Set(int(idx.Number), val) {
			return errors.NewNotFound("array index out of range", errors.SourceLocation{})
		}
		return nil
	case *container.Hash:
		r.Set(idx, val)
		return nil
	}
	return errors.NewTypeMismatch("cannot index-assign this object", errors.SourceLocation{})
}

// Clone implements the `clone` operator (spec R3): objects whose class
// disables copying raise; otherwise a shallow pointwise copy, or the
// class's own `clone` overload if declared.
func (k *Kernel) Clone(d *value.Data) (*value.Data, error) {
	cl := classOf(d)
	if cl == nil {
		return d, nil
	}
	if fn := cl.Operator(class.OpClone); fn != nil {
		return k.callOverload(cl, class.OpClone, d, nil)
	}
	if !cl.IsCopyable {
		return nil, errors.NewTypeMismatch("class "+cl.Name+" is not copyable", errors.SourceLocation{})
	}
	obj, ok := d.Object.(*class.Object)
	if !ok {
		return d, nil
	}
	clone := &class.Object{Class: obj.Class, Slots: make([]value.Reference, len(obj.Slots))}
	copy(clone.Slots, obj.Slots)
	return &value.Data{Format: value.FmtObject, Object: clone, Reachable: true}, nil
}
