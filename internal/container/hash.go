package container

import (
	"fmt"

	"mint/internal/symbol"
	"mint/internal/value"
)

// HashKey is a comparable projection of a value.Data usable as a Go
// map / symbol.Map key. Object keys are compared by identity (pointer),
// matching Mint's reference semantics for anything that isn't a
// primitive.
type HashKey struct {
	format value.Format
	num    float64
	boo    bool
	str    string
	ptr    interface{}
}

// KeyOf derives the HashKey for d. Strings hash by content (value
// equality); everything else that isn't a number/boolean hashes by
// object identity.
func KeyOf(d *value.Data) HashKey {
	if d == nil {
		return HashKey{format: value.FmtNull}
	}
	k := HashKey{format: d.Format}
	switch d.Format {
	case value.FmtNumber:
		k.num = d.Number
	case value.FmtBoolean:
		k.boo = d.Boolean
	case value.FmtObject:
		if s, ok := d.Object.(*String); ok {
			k.format = value.FmtObject
			k.str = "str:" + s.Value
		} else {
			k.ptr = d.Object
		}
	default:
		k.ptr = d
	}
	return k
}

func hashKeyHasher(k HashKey) uint64 {
	h := symbol.FNV1a64(fmt.Sprintf("%d|%v|%v|%s|%p", k.format, k.num, k.boo, k.str, k.ptr))
	return h
}

// Hash is Mint's builtin hash table: an insertion-ordered map from
// Data key to Data value (order preserved for deterministic `keys`/
// `values` enumeration, matching the teacher's map-as-ordered-slice
// texture while still offering O(1) lookup via symbol.Map).
type Hash struct {
	index *symbol.Map[HashKey, int]
	keys  []value.Reference
	vals  []value.Reference
	tomb  []bool
}

func NewHash() *Hash {
	return &Hash{index: symbol.New[HashKey, int](hashKeyHasher)}
}

func (h *Hash) Len() int {
	n := 0
	for _, t := range h.tomb {
		if !t {
			n++
		}
	}
	return n
}

func (h *Hash) Get(key *value.Data) (value.Reference, bool) {
	i, ok := h.index.Get(KeyOf(key))
	if !ok || h.tomb[i] {
		return value.Reference{}, false
	}
	return h.vals[i], true
}

func (h *Hash) Set(key, val *value.Data) {
	k := KeyOf(key)
	if i, ok := h.index.Get(k); ok && !h.tomb[i] {
		h.vals[i] = value.NewWeak(val, value.FlagNone)
		return
	}
	h.keys = append(h.keys, value.NewWeak(key, value.FlagNone))
	h.vals = append(h.vals, value.NewWeak(val, value.FlagNone))
	h.tomb = append(h.tomb, false)
	h.index.Set(k, len(h.keys)-1)
}

func (h *Hash) Delete(key *value.Data) bool {
	k := KeyOf(key)
	i, ok := h.index.Get(k)
	if !ok || h.tomb[i] {
		return false
	}
	h.tomb[i] = true
	h.index.Delete(k)
	return true
}

// Keys returns live keys in insertion order.
func (h *Hash) Keys() []value.Reference {
	out := make([]value.Reference, 0, len(h.keys))
	for i, t := range h.tomb {
		if !t {
			out = append(out, h.keys[i])
		}
	}
	return out
}

// Values returns live values in insertion order.
func (h *Hash) Values() []value.Reference {
	out := make([]value.Reference, 0, len(h.vals))
	for i, t := range h.tomb {
		if !t {
			out = append(out, h.vals[i])
		}
	}
	return out
}

// Trace yields every live key and value Data (spec §4.2: "traversal of
// Object slots... iterator contents").
func (h *Hash) Trace(mark func(*value.Data)) {
	for i, t := range h.tomb {
		if t {
			continue
		}
		mark(h.keys[i].Data)
		mark(h.vals[i].Data)
	}
}
