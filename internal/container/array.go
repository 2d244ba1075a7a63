package container

import "mint/internal/value"

// Array is Mint's builtin dynamic array. Elements are weak references
// into the array's own backing slice — the Array itself, reachable via
// a strong reference elsewhere (a stack slot or an Object slot), is
// what keeps its elements alive (spec §3.2, §4.1).
type Array struct {
	Elements []value.Reference
}

func NewArray() *Array { return &Array{} }

func NewArrayFromData(items []*value.Data) *Array {
	a := &Array{Elements: make([]value.Reference, len(items))}
	for i, d := range items {
		a.Elements[i] = value.NewWeak(d, value.FlagNone)
	}
	return a
}

func (a *Array) Len() int { return len(a.Elements) }

// At returns element i, or ok=false if out of range (spec B1: empty
// array `[]` raises out-of-range).
func (a *Array) At(i int) (value.Reference, bool) {
	if i < 0 || i >= len(a.Elements) {
		return value.Reference{}, false
	}
	return a.Elements[i], true
}

func (a *Array) Set(i int, d *value.Data) bool {
	if i < 0 || i >= len(a.Elements) {
		return false
	}
	a.Elements[i] = value.NewWeak(d, value.FlagNone)
	return true
}

func (a *Array) Push(d *value.Data) {
	a.Elements = append(a.Elements, value.NewWeak(d, value.FlagNone))
}

func (a *Array) Pop() (value.Reference, bool) {
	n := len(a.Elements)
	if n == 0 {
		return value.Reference{}, false
	}
	last := a.Elements[n-1]
	a.Elements = a.Elements[:n-1]
	return last, true
}

// Concat returns a new Array combining both operand's elements
// (operator `+` on two arrays, spec §4.10).
func (a *Array) Concat(other *Array) *Array {
	out := &Array{Elements: make([]value.Reference, 0, len(a.Elements)+len(other.Elements))}
	out.Elements = append(out.Elements, a.Elements...)
	out.Elements = append(out.Elements, other.Elements...)
	return out
}

// Trace yields every element Data to the collector's mark function
// (spec §4.2 object-graph traversal).
func (a *Array) Trace(mark func(*value.Data)) {
	for _, ref := range a.Elements {
		mark(ref.Data)
	}
}
