package class

import (
	"mint/internal/bytecode"
	"mint/internal/symbol"
	"mint/internal/value"
)

// Signature is a Function dispatch key (spec §3.5): a positive N means
// "exactly N parameters"; a negative value encodes a variadic with
// (-N - 1) required parameters and the rest collected into an iterator.
type Signature int

func (s Signature) IsVariadic() bool { return s < 0 }

// Required returns the number of required parameters regardless of
// variadic-ness.
func (s Signature) Required() int {
	if s < 0 {
		return int(-s) - 1
	}
	return int(s)
}

// Accepts reports whether argc actual arguments satisfy this signature
// (spec P6: exact match, or variadic with required <= argc).
func (s Signature) Accepts(argc int) bool {
	if s >= 0 {
		return int(s) == argc
	}
	return s.Required() <= argc
}

// SignatureEntry is one per-arity dispatch table row (spec §3.5).
type SignatureEntry struct {
	Handle   *bytecode.Handle
	Captures *symbol.Map[*symbol.Symbol, value.Reference] // nil: no closure captures
}

// FunctionValue is a map from Signature to SignatureEntry (spec §3.5).
type FunctionValue struct {
	Name       string
	Signatures map[Signature]*SignatureEntry
}

func NewFunctionValue(name string) *FunctionValue {
	return &FunctionValue{Name: name, Signatures: make(map[Signature]*SignatureEntry)}
}

func (f *FunctionValue) AddSignature(sig Signature, h *bytecode.Handle, captures *symbol.Map[*symbol.Symbol, value.Reference]) {
	f.Signatures[sig] = &SignatureEntry{Handle: h, Captures: captures}
}

// Resolve picks the signature for a call with argc arguments (spec
// §4.6 init_call / P6): an exact match wins; otherwise the lowest-arity
// variadic signature whose required count is <= argc.
func (f *FunctionValue) Resolve(argc int) (Signature, *SignatureEntry, bool) {
	if entry, ok := f.Signatures[Signature(argc)]; ok {
		return Signature(argc), entry, true
	}
	best := Signature(0)
	var bestEntry *SignatureEntry
	found := false
	for sig, entry := range f.Signatures {
		if !sig.IsVariadic() {
			continue
		}
		if sig.Required() > argc {
			continue
		}
		if !found || sig.Required() < best.Required() {
			best, bestEntry, found = sig, entry, true
		}
	}
	return best, bestEntry, found
}

// Merge implements the `+` operator's special case on Functions (spec
// §4.10: "+ on functions merges their signature maps"). Later entries
// win on signature collision.
func (f *FunctionValue) Merge(other *FunctionValue) *FunctionValue {
	out := NewFunctionValue(f.Name)
	for sig, e := range f.Signatures {
		out.Signatures[sig] = e
	}
	for sig, e := range other.Signatures {
		out.Signatures[sig] = e
	}
	return out
}

// Trace yields every captured Reference's Data across every signature.
func (f *FunctionValue) Trace(mark func(*value.Data)) {
	for _, e := range f.Signatures {
		if e.Captures == nil {
			continue
		}
		e.Captures.Range(func(_ *symbol.Symbol, ref value.Reference) bool {
			mark(ref.Data)
			return true
		})
	}
}
