package value

import "fmt"

// Kind distinguishes the two reference disciplines of spec §3.2.
type Kind byte

const (
	KindStrong Kind = iota
	KindWeak
)

// Reference is a value type pairing a Data pointer with access Flags.
// Strong references participate in refcounting and may register as GC
// roots; Weak references do neither and rely on an enclosing strong
// owner (the value stack slot, or the Object that holds them as member
// slots) to keep the Data alive (spec §3.2).
type Reference struct {
	Data  *Data
	Flags Flags
	Kind  Kind
}

// Retain increments the refcount if this is a strong reference over a
// non-immortal Data. Acquiring a weak reference never touches refcount.
func (r *Reference) Retain() {
	if r.Kind != KindStrong || r.Data == nil || r.Data.immortal() {
		return
	}
	r.Data.Refcount++
}

// Release decrements the refcount of a strong reference. It does not
// free the Data itself — spec §4.2 makes Collector.Collect the only
// place storage is reclaimed; Release just makes the Data eligible.
func (r *Reference) Release() {
	if r.Kind != KindStrong || r.Data == nil || r.Data.immortal() {
		return
	}
	if r.Data.Refcount > 0 {
		r.Data.Refcount--
	}
}

// NewStrong builds a strong reference over d, retaining it.
func NewStrong(d *Data, flags Flags) Reference {
	r := Reference{Data: d, Flags: flags, Kind: KindStrong}
	r.Retain()
	return r
}

// NewWeak builds a weak reference over d. No refcount change.
func NewWeak(d *Data, flags Flags) Reference {
	return Reference{Data: d, Flags: flags, Kind: KindWeak}
}

// Clone duplicates the reference, retaining the underlying Data again
// if this is a strong reference (spec §4.1: "Cloning a strong reference
// increments the underlying refcount").
func (r Reference) Clone() Reference {
	out := r
	out.Retain()
	return out
}

// MoveData rebinds this reference's Data pointer to other's, honoring
// the const_address invariant (spec §3.2): a const_address reference's
// Data pointer may only be changed while it still points at None.
func (r *Reference) MoveData(other *Data) error {
	if r.Flags.Has(FlagConstAddress) && r.Data != nil && !r.Data.IsNone() {
		return fmt.Errorf("cannot rebind const_address reference: already initialized")
	}
	if r.Kind == KindStrong {
		old := r.Data
		r.Data = other
		r.Retain()
		if old != nil && !old.immortal() && old.Refcount > 0 {
			old.Refcount--
		}
	} else {
		r.Data = other
	}
	return nil
}

// IsWritable reports whether the reference's contents may be mutated
// in place (spec §3.2: const_value references forbid this).
func (r Reference) IsWritable() bool {
	return !r.Flags.Has(FlagConstValue)
}
