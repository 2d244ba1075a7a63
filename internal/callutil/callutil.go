// Package callutil implements the argument-arity and parameter-binding
// helpers spec §2 calls out as their own component ("Memory tool /
// operator helpers ... Argument arity, parameter binding, extra-args
// iterator packing"): resolving a FunctionValue signature against an
// actual argument count, and packing the excess arguments of a
// variadic call into a trailing iterator (spec §4.6, B4).
package callutil

import (
	"strconv"

	"mint/internal/class"
	"mint/internal/container"
	"mint/internal/errors"
	"mint/internal/value"
)

// ResolveCall picks the signature for a call with len(args) actual
// arguments, matching spec P6: exact match wins; otherwise the lowest-
// arity variadic signature whose required count is <= argc.
func ResolveCall(fn *class.FunctionValue, args []*value.Data) (class.Signature, *class.SignatureEntry, error) {
	sig, entry, ok := fn.Resolve(len(args))
	if !ok {
		return 0, nil, errors.NewArityMismatch("no signature of "+fn.Name+" accepts "+strconv.Itoa(len(args))+" arguments", errors.SourceLocation{})
	}
	return sig, entry, nil
}

// BindParameters splits args into the required positional slice plus,
// for a variadic signature, a trailing Iterator Data packing whatever
// is left over (spec §4.6: "excess args are packed into an iterator
// pushed as the last argument"; B4: zero excess still yields an empty
// iterator, never a nil one).
func BindParameters(sig class.Signature, args []*value.Data, allocIterator func(*container.Iterator) *value.Data) []*value.Data {
	required := sig.Required()
	if !sig.IsVariadic() {
		return args
	}
	bound := make([]*value.Data, 0, required+1)
	if required > len(args) {
		required = len(args)
	}
	bound = append(bound, args[:required]...)

	extra := args[required:]
	items := make([]value.Reference, len(extra))
	for i, d := range extra {
		items[i] = value.NewWeak(d, value.FlagNone)
	}
	it := container.NewEagerIterator(items)
	bound = append(bound, allocIterator(it))
	return bound
}
