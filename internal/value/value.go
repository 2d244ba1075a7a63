// Package value implements Mint's tagged-union runtime value (spec §3.1)
// and the GC bookkeeping every such value carries. It is the lowest
// layer of the runtime core: internal/gc operates on the exported
// bookkeeping fields here without value needing to import gc back.
package value

// Format is the tag of a Data's active field (spec §3.1).
type Format byte

const (
	FmtNone Format = iota
	FmtNull
	FmtNumber
	FmtBoolean
	FmtObject
	FmtPackage
	FmtFunction
)

func (f Format) String() string {
	switch f {
	case FmtNone:
		return "none"
	case FmtNull:
		return "null"
	case FmtNumber:
		return "number"
	case FmtBoolean:
		return "boolean"
	case FmtObject:
		return "object"
	case FmtPackage:
		return "package"
	case FmtFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Data is one runtime value plus the bookkeeping the garbage collector
// needs to keep it alive or reclaim it (spec §3.1). Object/Package/Function
// are typed as interface{} here to avoid an import cycle with the class
// and container packages that describe their shapes (*class.Object,
// *class.Package, *class.FunctionValue); callers type-assert through the
// accessor helpers below.
type Data struct {
	Format  Format
	Number  float64
	Boolean bool
	Object  interface{} // *class.Object, *container.String, *container.Array, *container.Hash, *container.Iterator
	Package interface{} // *class.Package
	Function interface{} // *class.FunctionValue

	// GC bookkeeping (spec §3.1, §4.2). Refcount is adjusted by
	// Reference's Retain/Release/MoveData in this package; the
	// collector in internal/gc does not consult it when sweeping.
	Refcount   int64
	Reachable  bool
	Collected  bool
	PoolTag    byte // metatype this Data was allocated from, for pool recycling

	gcPrev *Data // intrusive live-list links
	gcNext *Data
}

// GCLinks exposes the intrusive live-list pointers to internal/gc.
// A plain pair of accessor methods is used instead of exported fields
// so the linked-list discipline (only gc touches these) is documented
// by the accessor, not just by convention.
func (d *Data) GCLinks() (prev, next *Data)       { return d.gcPrev, d.gcNext }
func (d *Data) SetGCLinks(prev, next *Data)       { d.gcPrev, d.gcNext = prev, next }

// None and Null are process-wide sentinels. None is the "uninitialized"
// value used by the const_address invariant (spec §3.2); Null is the
// script-visible null literal. Both are immortal: refcount operations
// on them are no-ops.
var None = &Data{Format: FmtNone, Reachable: true}
var Null = &Data{Format: FmtNull, Reachable: true}

func (d *Data) IsNone() bool { return d == None || d.Format == FmtNone }
func (d *Data) IsNull() bool { return d == Null || d.Format == FmtNull }

func (d *Data) immortal() bool { return d == None || d == Null }

// Truthy implements Mint's boolean coercion for control-flow opcodes:
// none and null are false, zero is false, empty containers are left to
// the operator kernel (it knows about Array/Hash/String shapes); here
// we only resolve the primitive cases.
func (d *Data) Truthy() bool {
	if d == nil {
		return false
	}
	switch d.Format {
	case FmtNone, FmtNull:
		return false
	case FmtBoolean:
		return d.Boolean
	case FmtNumber:
		return d.Number != 0
	default:
		return true
	}
}
