// core.go registers the small set of identity/debug builtins spec
// §6.2 groups under "standard-library builtin functions the core
// exposes a registration interface for": a free function generating a
// process-unique identity tag. google/uuid is already load-bearing in
// internal/scheduler (Process.ID); exposing it to scripts as a single
// free function keeps both uses on the same dependency instead of
// reaching for math/rand or a hand-rolled counter here too.
package builtin

import (
	"github.com/google/uuid"

	"mint/internal/bytecode"
	"mint/internal/class"
	"mint/internal/value"
)

// RegisterCore installs `uuid4()` into pkg: a zero-argument free
// function returning a fresh random identity string, for scripts that
// need a debug tag or correlation id distinct from the language's own
// Symbol identity.
func (r *Registry) RegisterCore(pkg *class.Package) {
	r.CreateFreeFunction(pkg, "uuid4", 0, func(ctx bytecode.HostContext) (*value.Data, error) {
		return r.String(uuid.New().String()), nil
	})
}
