package container

import (
	"testing"

	"mint/internal/value"
)

func str(s string) *value.Data {
	return &value.Data{Format: value.FmtObject, Object: NewString(s)}
}

func TestHashSetGet(t *testing.T) {
	h := NewHash()
	h.Set(str("a"), num(1))
	h.Set(str("b"), num(2))

	ref, ok := h.Get(str("a"))
	if !ok || ref.Data.Number != 1 {
		t.Errorf("Get(a) = %v, %v, want 1, true", ref.Data, ok)
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestHashSetOverwritesExisting(t *testing.T) {
	h := NewHash()
	h.Set(str("a"), num(1))
	h.Set(str("a"), num(2))
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (overwrite, not insert)", h.Len())
	}
	ref, _ := h.Get(str("a"))
	if ref.Data.Number != 2 {
		t.Errorf("Get(a) after overwrite = %v, want 2", ref.Data.Number)
	}
}

func TestHashDelete(t *testing.T) {
	h := NewHash()
	h.Set(str("a"), num(1))
	if !h.Delete(str("a")) {
		t.Fatal("Delete(a) = false, want true")
	}
	if _, ok := h.Get(str("a")); ok {
		t.Error("Get(a) after Delete should miss")
	}
	if h.Delete(str("a")) {
		t.Error("Delete(a) twice should report false the second time")
	}
}

func TestHashKeysValuesInsertionOrder(t *testing.T) {
	h := NewHash()
	h.Set(str("first"), num(1))
	h.Set(str("second"), num(2))
	h.Set(str("third"), num(3))
	h.Delete(str("second"))

	keys := h.Keys()
	if len(keys) != 2 {
		t.Fatalf("Keys() len = %d, want 2", len(keys))
	}
	gotFirst := keys[0].Data.Object.(*String).Value
	gotSecond := keys[1].Data.Object.(*String).Value
	if gotFirst != "first" || gotSecond != "third" {
		t.Errorf("Keys() = [%s, %s], want [first, third]", gotFirst, gotSecond)
	}
}

func TestHashKeyOfNumbersAndBooleansByValue(t *testing.T) {
	a := KeyOf(num(1))
	b := KeyOf(num(1))
	if a != b {
		t.Error("KeyOf(1) should equal KeyOf(1)")
	}
	trueKey := KeyOf(&value.Data{Format: value.FmtBoolean, Boolean: true})
	falseKey := KeyOf(&value.Data{Format: value.FmtBoolean, Boolean: false})
	if trueKey == falseKey {
		t.Error("KeyOf(true) should not equal KeyOf(false)")
	}
}

func TestHashKeyOfObjectsByIdentity(t *testing.T) {
	d1 := &value.Data{Format: value.FmtObject, Object: NewArray()}
	d2 := &value.Data{Format: value.FmtObject, Object: NewArray()}
	if KeyOf(d1) == KeyOf(d2) {
		t.Error("two distinct non-string objects should not hash equal")
	}
}

func TestHashTraceVisitsLiveEntriesOnly(t *testing.T) {
	h := NewHash()
	h.Set(str("keep"), num(1))
	h.Set(str("gone"), num(2))
	h.Delete(str("gone"))

	var seen []*value.Data
	h.Trace(func(d *value.Data) { seen = append(seen, d) })
	if len(seen) != 2 { // one key + one value for the surviving entry
		t.Errorf("Trace visited %d Data, want 2 (key+value of the live entry)", len(seen))
	}
}
