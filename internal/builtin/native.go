package builtin

import (
	"mint/internal/class"
	"mint/internal/container"
	"mint/internal/value"
)

// Native is the payload a LIBOBJECT instance's `_native` slot points
// at: a host-side resource (a websocket connection, a database
// handle) that has no meaningful representation as a Mint container,
// tagged with a kind string so builtin methods can assert they were
// handed the right sort of handle (spec §3.4's LIBOBJECT metatype:
// "used by the operator kernel to bypass vtable lookup" is moot here
// since these have no overloaded operators, but the tag still guards
// against one builtin class's methods running on another's instance).
type Native struct {
	Kind  string
	Value interface{}
}

func nativeData(kind string, v interface{}) *value.Data {
	return &value.Data{Format: value.FmtObject, Object: &Native{Kind: kind, Value: v}, Reachable: true}
}

// NewLibObjectClass declares a LIBOBJECT metatype class in pkg with a
// single instance slot ("_native") that host construction/methods use
// to stash a Native handle (spec §3.4's metatype list: "OBJECT,
// STRING, REGEX, ARRAY, HASH, ITERATOR, LIBRARY, LIBOBJECT"). Returns
// the class and the MemberInfo for that slot.
func (r *Registry) NewLibObjectClass(pkg *class.Package, name string) (*class.Class, *class.MemberInfo) {
	cl := class.NewClass(name, pkg.Path, container.MetaLibObject)
	slot := &class.MemberInfo{Name: r.symbols.Intern("_native"), Offset: 0, Flags: value.FlagNone}
	cl.Declare(slot)
	if err := cl.Generate(); err != nil {
		panic("builtin: " + name + ": " + err.Error())
	}
	pkg.RegisterClass(r.symbols.Intern(name), cl, &value.Data{Format: value.FmtObject, Object: class.NewPrototype(cl), Reachable: true})
	return cl, slot
}

// selfNative fetches the Native stashed on ctx.Self()'s `_native` slot
// and checks its Kind matches.
func selfNative(ctx selfContext, slot *class.MemberInfo, kind string) (*Native, error) {
	self := ctx.Self()
	if self == nil {
		return nil, typeMismatch("expected a bound receiver")
	}
	obj, ok := self.Object.(*class.Object)
	if !ok {
		return nil, typeMismatch("expected a " + kind + " instance")
	}
	ref, ok := obj.Slot(slot)
	if !ok || ref.Data == nil || ref.Data.Object == nil {
		return nil, typeMismatch(kind + " is not initialized")
	}
	n, ok := ref.Data.Object.(*Native)
	if !ok || n.Kind != kind {
		return nil, typeMismatch("expected a " + kind + " instance")
	}
	return n, nil
}

func setSelfNative(ctx selfContext, slot *class.MemberInfo, n *Native) error {
	self := ctx.Self()
	if self == nil {
		return typeMismatch("expected a bound receiver")
	}
	obj, ok := self.Object.(*class.Object)
	if !ok {
		return typeMismatch("expected an instance")
	}
	obj.SetSlot(slot, nativeData(n.Kind, n.Value))
	return nil
}

// selfContext is the subset of bytecode.HostContext builtin method
// bodies need to reach their receiver.
type selfContext interface {
	Self() *value.Data
}
