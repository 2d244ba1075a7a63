package class

import "mint/internal/value"

// Object holds a pointer to its Class metadata and, for a live
// instance, a heap-allocated slot array laid out at the offsets
// described by Class.Slots. slots == nil means this Object is a class
// prototype (spec §3.3): used for metaclass operations like `new` and
// `global` member access, never constructed via `new`.
type Object struct {
	Class *Class
	Slots []value.Reference
}

// NewPrototype builds the class-prototype Object for c (spec §3.3).
func NewPrototype(c *Class) *Object {
	return &Object{Class: c}
}

// Construct builds a live instance, copying the class's slot default
// values into a fresh slot array (spec §3.3 "construct() copies the
// class's slot-default values into the slot array").
func (c *Class) Construct() *Object {
	obj := &Object{Class: c, Slots: make([]value.Reference, len(c.Slots))}
	for i, m := range c.Slots {
		def := m.Default
		if def == nil {
			def = value.None
		}
		obj.Slots[i] = value.NewWeak(def, m.Flags)
	}
	return obj
}

// IsPrototype reports whether this Object represents the type itself
// rather than a live instance.
func (o *Object) IsPrototype() bool { return o.Slots == nil }

// Slot returns the slot Reference at the member's offset. Callers are
// expected to have already checked visibility (spec §4.11).
func (o *Object) Slot(m *MemberInfo) (value.Reference, bool) {
	if o.Slots == nil || m.Offset < 0 || m.Offset >= len(o.Slots) {
		return value.Reference{}, false
	}
	return o.Slots[m.Offset], true
}

func (o *Object) SetSlot(m *MemberInfo, d *value.Data) bool {
	if o.Slots == nil || m.Offset < 0 || m.Offset >= len(o.Slots) {
		return false
	}
	o.Slots[m.Offset] = value.NewWeak(d, m.Flags)
	return true
}

// Trace yields every instance slot's Data (spec §4.1: "every Object
// slot indirectly via the Object itself").
func (o *Object) Trace(mark func(*value.Data)) {
	for _, s := range o.Slots {
		mark(s.Data)
	}
}
