package callutil

import (
	"testing"

	"mint/internal/class"
	"mint/internal/container"
	"mint/internal/value"
)

func num(n float64) *value.Data { return &value.Data{Format: value.FmtNumber, Number: n} }

func TestResolveCallExactArityMatch(t *testing.T) {
	fn := class.NewFunctionValue("f")
	fn.AddSignature(class.Signature(2), nil, nil)

	sig, entry, err := ResolveCall(fn, []*value.Data{num(1), num(2)})
	if err != nil {
		t.Fatalf("ResolveCall: %v", err)
	}
	if sig != class.Signature(2) || entry == nil {
		t.Errorf("ResolveCall = %v, %v, want exact match on 2", sig, entry)
	}
}

func TestResolveCallNoMatchIsArityMismatch(t *testing.T) {
	fn := class.NewFunctionValue("f")
	fn.AddSignature(class.Signature(2), nil, nil)

	if _, _, err := ResolveCall(fn, []*value.Data{num(1)}); err == nil {
		t.Error("ResolveCall with no matching arity should error")
	}
}

func TestResolveCallPrefersExactOverVariadic(t *testing.T) {
	fn := class.NewFunctionValue("f")
	fn.AddSignature(class.Signature(-1), nil, nil) // variadic, 0 required
	fn.AddSignature(class.Signature(2), nil, nil)  // exact 2

	sig, _, err := ResolveCall(fn, []*value.Data{num(1), num(2)})
	if err != nil {
		t.Fatalf("ResolveCall: %v", err)
	}
	if sig != class.Signature(2) {
		t.Errorf("ResolveCall should prefer the exact-arity signature, got %v", sig)
	}
}

func TestResolveCallFallsBackToVariadicWhenNoExactMatch(t *testing.T) {
	fn := class.NewFunctionValue("f")
	fn.AddSignature(class.Signature(-2), nil, nil) // variadic, 1 required

	sig, entry, err := ResolveCall(fn, []*value.Data{num(1), num(2), num(3)})
	if err != nil {
		t.Fatalf("ResolveCall: %v", err)
	}
	if !sig.IsVariadic() || entry == nil {
		t.Errorf("ResolveCall should fall back to the variadic signature, got %v", sig)
	}
}

func allocIter(it *container.Iterator) *value.Data {
	return &value.Data{Format: value.FmtObject, Object: it}
}

func TestBindParametersNonVariadicPassesArgsThrough(t *testing.T) {
	args := []*value.Data{num(1), num(2)}
	bound := BindParameters(class.Signature(2), args, allocIter)
	if len(bound) != 2 {
		t.Fatalf("BindParameters non-variadic len = %d, want 2", len(bound))
	}
}

func TestBindParametersVariadicPacksExtraIntoIterator(t *testing.T) {
	args := []*value.Data{num(1), num(2), num(3)}
	bound := BindParameters(class.Signature(-2), args, allocIter) // 1 required

	if len(bound) != 2 {
		t.Fatalf("BindParameters variadic len = %d, want 2 (1 required + 1 iterator)", len(bound))
	}
	it, ok := bound[1].Object.(*container.Iterator)
	if !ok {
		t.Fatal("last bound argument should be an Iterator Data")
	}
	count := 0
	for it.HasNext() {
		it.Next()
		count++
	}
	if count != 2 {
		t.Errorf("packed iterator yielded %d items, want 2", count)
	}
}

// B4: zero excess arguments still yields an empty iterator, not nil.
func TestBindParametersVariadicWithNoExcessYieldsEmptyIterator(t *testing.T) {
	args := []*value.Data{num(1)}
	bound := BindParameters(class.Signature(-2), args, allocIter) // 1 required, 0 excess

	if len(bound) != 2 {
		t.Fatalf("BindParameters len = %d, want 2", len(bound))
	}
	it, ok := bound[1].Object.(*container.Iterator)
	if !ok {
		t.Fatal("trailing argument should be an Iterator Data even with no excess")
	}
	if it.HasNext() {
		t.Error("iterator packed from zero excess args should be empty")
	}
}

func TestBindParametersVariadicRequiredExceedsArgsDoesNotPanic(t *testing.T) {
	args := []*value.Data{num(1)}
	bound := BindParameters(class.Signature(-3), args, allocIter) // 2 required, only 1 given
	if len(bound) != 2 {
		t.Fatalf("BindParameters len = %d, want 2", len(bound))
	}
}
