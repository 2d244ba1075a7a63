package container

import (
	"testing"

	"mint/internal/value"
)

func num(v float64) *value.Data { return &value.Data{Format: value.FmtNumber, Number: v} }

func TestArrayPushAtLen(t *testing.T) {
	a := NewArray()
	a.Push(num(1))
	a.Push(num(2))
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	ref, ok := a.At(1)
	if !ok || ref.Data.Number != 2 {
		t.Errorf("At(1) = %v, %v, want 2, true", ref.Data, ok)
	}
}

// B1: indexing an empty array is out of range, not a panic.
func TestArrayAtEmptyOutOfRange(t *testing.T) {
	a := NewArray()
	if _, ok := a.At(0); ok {
		t.Error("At(0) on an empty array should report out of range")
	}
}

func TestArraySetOutOfRange(t *testing.T) {
	a := NewArray()
	a.Push(num(1))
	if a.Set(5, num(2)) {
		t.Error("Set(5, ...) on a length-1 array should fail")
	}
	if !a.Set(0, num(9)) {
		t.Fatal("Set(0, ...) should succeed")
	}
	ref, _ := a.At(0)
	if ref.Data.Number != 9 {
		t.Errorf("At(0) after Set = %v, want 9", ref.Data.Number)
	}
}

func TestArrayPop(t *testing.T) {
	a := NewArray()
	a.Push(num(1))
	a.Push(num(2))
	ref, ok := a.Pop()
	if !ok || ref.Data.Number != 2 {
		t.Fatalf("Pop() = %v, %v, want 2, true", ref.Data, ok)
	}
	if a.Len() != 1 {
		t.Errorf("Len() after Pop = %d, want 1", a.Len())
	}
	a.Pop()
	if _, ok := a.Pop(); ok {
		t.Error("Pop() on an empty array should report false")
	}
}

func TestArrayConcatDoesNotMutateOperands(t *testing.T) {
	a := NewArrayFromData([]*value.Data{num(1), num(2)})
	b := NewArrayFromData([]*value.Data{num(3)})
	c := a.Concat(b)
	if c.Len() != 3 {
		t.Fatalf("Concat length = %d, want 3", c.Len())
	}
	if a.Len() != 2 || b.Len() != 1 {
		t.Error("Concat mutated an operand array")
	}
}
