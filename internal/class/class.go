package class

import (
	"fmt"

	"mint/internal/container"
	"mint/internal/errors"
	"mint/internal/symbol"
	"mint/internal/value"
)

// Class is the runtime type descriptor for the OBJECT metatype (spec
// §3.4). It carries its own declared members plus, once generate() has
// run, the full linearized view inherited from its Bases: a flat slot
// list, a merged member map, and a resolved operator table.
type Class struct {
	Name      string
	Package   string
	Metatype  container.Metatype
	Bases     []*Class
	Operators [OperatorCount]*FunctionValue

	// Members holds every member this class can see after
	// linearization (own + inherited), keyed by interned name.
	Members *symbol.Map[*symbol.Symbol, *MemberInfo]
	Globals *symbol.Map[*symbol.Symbol, value.Reference]

	// Slots is the flat, offset-ordered instance layout produced by
	// generate(); index i corresponds to Object.Slots[i].
	Slots []*MemberInfo

	IsCopyable bool
	generated  bool

	// declared holds only the members introduced directly on this
	// class, before base adoption; generate() consumes it.
	declared []*MemberInfo
}

func NewClass(name, pkg string, metatype container.Metatype) *Class {
	return &Class{
		Name:       name,
		Package:    pkg,
		Metatype:   metatype,
		Members:    symbol.NewSymbolMapping[*MemberInfo](),
		Globals:    symbol.NewSymbolMapping[value.Reference](),
		IsCopyable: true,
	}
}

func (c *Class) Declare(m *MemberInfo) {
	m.Owner = c
	c.declared = append(c.declared, m)
}

func (c *Class) AddBase(base *Class) { c.Bases = append(c.Bases, base) }

// generate performs the idempotent linearization pass described in
// spec §4.4: adopt every base's slots and operators before laying out
// this class's own declared members, rejecting incompatible overrides
// and final-method overrides, and disabling copy when any base (or
// this class) disables it.
func (c *Class) generate() error {
	if c.generated {
		return nil
	}
	c.generated = true

	for _, base := range c.Bases {
		if err := base.generate(); err != nil {
			return err
		}
		if !base.IsCopyable {
			c.IsCopyable = false
		}
		for _, m := range base.Slots {
			if existing, ok := c.Members.Get(m.Name); ok {
				if existing.Owner == m.Owner {
					// same member reached through another base path
					// (diamond): keep the slot already adopted.
					continue
				}
				if existing.Flags.Has(value.FlagFinal) {
					return errors.New(errors.Visibility,
						fmt.Sprintf("cannot override final member %q", m.Name.Name), errors.SourceLocation{})
				}
			}
			adopted := &MemberInfo{Name: m.Name, Offset: len(c.Slots), Owner: m.Owner, Default: m.Default, Flags: m.Flags}
			c.Members.Set(m.Name, adopted)
			c.Slots = append(c.Slots, adopted)
		}
		for op := Operator(0); op < OperatorCount; op++ {
			if base.Operators[op] != nil {
				if c.Operators[op] == nil {
					c.Operators[op] = base.Operators[op]
				} else {
					c.Operators[op] = c.Operators[op].Merge(base.Operators[op])
				}
			}
		}
		base.Globals.Range(func(name *symbol.Symbol, ref value.Reference) bool {
			if _, exists := c.Globals.Get(name); !exists {
				c.Globals.Set(name, ref)
			}
			return true
		})
	}

	for _, m := range c.declared {
		if m.IsGlobal() {
			c.Members.Set(m.Name, m)
			continue
		}
		if existing, ok := c.Members.Get(m.Name); ok {
			if existing.Flags.Has(value.FlagFinal) {
				return errors.New(errors.Visibility,
					fmt.Sprintf("cannot override final member %q", m.Name.Name), errors.SourceLocation{})
			}
			if !m.Flags.Has(value.FlagOverride) && existing.Owner != c {
				return errors.New(errors.Visibility,
					fmt.Sprintf("member %q overrides a base member without override flag", m.Name.Name), errors.SourceLocation{})
			}
			m.Offset = existing.Offset
			c.Slots[m.Offset] = m
			c.Members.Set(m.Name, m)
			continue
		}
		m.Offset = len(c.Slots)
		c.Members.Set(m.Name, m)
		c.Slots = append(c.Slots, m)
	}

	if !c.IsCopyable {
		// propagate: a class with a non-copyable base (or itself
		// marked so) never allows clone().
		c.IsCopyable = false
	}
	return nil
}

// Generate runs linearization if it hasn't already, exposed so the
// class loader can trigger it once all bases are registered.
func (c *Class) Generate() error { return c.generate() }

// SetOperator installs fn as the overload for op, generated lazily is
// not required here: operators are set before Generate() merges bases.
func (c *Class) SetOperator(op Operator, fn *FunctionValue) { c.Operators[op] = fn }

func (c *Class) Operator(op Operator) *FunctionValue { return c.Operators[op] }

// IsSubclassOf reports whether c derives from target through any
// linearized base chain, including itself.
func (c *Class) IsSubclassOf(target *Class) bool {
	if c == target {
		return true
	}
	for _, b := range c.Bases {
		if b.IsSubclassOf(target) {
			return true
		}
	}
	return false
}

// CheckAccess enforces spec §4.11's visibility rule for a member
// access attempted from code executing in class `from` (nil if at
// package scope outside any class) belonging to package `fromPkg`.
func CheckAccess(m *MemberInfo, from *Class, fromPkg string) error {
	switch m.Flags.Visibility() {
	case value.Public:
		return nil
	case value.Protected:
		if from != nil && from.IsSubclassOf(m.Owner) {
			return nil
		}
	case value.Private:
		if from == m.Owner {
			return nil
		}
	case value.PackageScope:
		if fromPkg == m.Owner.Package {
			return nil
		}
	}
	return errors.NewVisibilityViolation(m.Name.Name, errors.SourceLocation{})
}

func (c *Class) Trace(mark func(*value.Data)) {
	for _, op := range c.Operators {
		if op != nil {
			op.Trace(mark)
		}
	}
	c.Globals.Range(func(_ *symbol.Symbol, ref value.Reference) bool {
		mark(ref.Data)
		return true
	})
}
