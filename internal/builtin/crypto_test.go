package builtin

import (
	"testing"

	"mint/internal/class"
	"mint/internal/container"
	"mint/internal/value"
)

func strData(s string) *value.Data {
	return &value.Data{Format: value.FmtObject, Object: container.NewString(s)}
}

func TestRegisterCryptoSignAndVerifyRoundTrip(t *testing.T) {
	r, _ := newTestRegistry()
	pkg := class.NewPackage("demo")
	r.RegisterCrypto(pkg)

	cl, ok := pkg.Classes.Get(r.symbols.Intern("Signer"))
	if !ok {
		t.Fatal("RegisterCrypto should declare a Signer class")
	}

	newFn := operatorOf(t, cl, class.OpNew)
	obj := cl.Construct()
	ctx := &fakeHostContext{self: &value.Data{Format: value.FmtObject, Object: obj}}
	if _, err := newFn(ctx); err != nil {
		t.Fatalf("new Signer(): %v", err)
	}

	pubKeyFn := builtinOf(t, cl, r.symbols, "public_key")
	pub, err := pubKeyFn(ctx)
	if err != nil {
		t.Fatalf("public_key: %v", err)
	}

	signFn := builtinOf(t, cl, r.symbols, "sign")
	message := strData("attack at dawn")
	sig, err := signFn(&fakeHostContext{self: ctx.self, args: []*value.Data{message}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	verifyFn := builtinOf(t, cl, r.symbols, "verify")
	verifyArgs := []*value.Data{
		message,
		sig,
		pub,
	}
	got, err := verifyFn(&fakeHostContext{self: ctx.self, args: verifyArgs})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !got.Boolean {
		t.Error("verify should accept a signature produced by sign with the matching public key")
	}

	tamperedArgs := []*value.Data{
		strData("a different message"),
		sig,
		pub,
	}
	got, err = verifyFn(&fakeHostContext{self: ctx.self, args: tamperedArgs})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Boolean {
		t.Error("verify should reject a signature over a different message")
	}
}
