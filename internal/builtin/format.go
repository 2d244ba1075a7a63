// format.go registers byte-count/number formatting builtins on top of
// dustin/go-humanize, grounded on the same "format helper" shape the
// teacher exposes through its stdlib packages (internal/stdlib)
// generalized to three free functions a script calls directly rather
// than a method on a format object — Mint has no bytes/number class of
// its own for this to live on.
package builtin

import (
	"github.com/dustin/go-humanize"

	"mint/internal/bytecode"
	"mint/internal/class"
	"mint/internal/container"
	"mint/internal/value"
)

// RegisterFormat installs `format_bytes(n)`, `format_comma(n)` and
// `format_ordinal(n)` as free functions under pkg.
func (r *Registry) RegisterFormat(pkg *class.Package) {
	r.CreateFreeFunction(pkg, "format_bytes", 1, func(ctx bytecode.HostContext) (*value.Data, error) {
		n, err := numberArg(ctx, 0)
		if err != nil {
			return nil, err
		}
		return r.String(humanize.Bytes(uint64(n))), nil
	})

	r.CreateFreeFunction(pkg, "format_comma", 1, func(ctx bytecode.HostContext) (*value.Data, error) {
		n, err := numberArg(ctx, 0)
		if err != nil {
			return nil, err
		}
		return r.String(humanize.Comma(int64(n))), nil
	})

	r.CreateFreeFunction(pkg, "format_ordinal", 1, func(ctx bytecode.HostContext) (*value.Data, error) {
		n, err := numberArg(ctx, 0)
		if err != nil {
			return nil, err
		}
		return r.String(humanize.Ordinal(int(n))), nil
	})
}

func numberArg(ctx bytecode.HostContext, i int) (float64, error) {
	d := ctx.Arg(i)
	if d == nil || d.Format != value.FmtNumber {
		return 0, typeMismatch("expected a number argument")
	}
	return d.Number, nil
}

func stringArg(ctx bytecode.HostContext, i int) (string, error) {
	d := ctx.Arg(i)
	if d == nil || d.Format != value.FmtObject {
		return "", typeMismatch("expected a string argument")
	}
	s, ok := d.Object.(*container.String)
	if !ok {
		return "", typeMismatch("expected a string argument")
	}
	return s.Value, nil
}
