package class

import (
	"mint/internal/symbol"
	"mint/internal/value"
)

// Package holds the globals and nested classes declared under one
// compiled unit's package path (spec §3.4/§4.4: "a nested class
// registers itself as a global of its enclosing package").
type Package struct {
	Path    string
	Globals *symbol.Map[*symbol.Symbol, value.Reference]
	Classes *symbol.Map[*symbol.Symbol, *Class]
}

func NewPackage(path string) *Package {
	return &Package{
		Path:    path,
		Globals: symbol.NewSymbolMapping[value.Reference](),
		Classes: symbol.NewSymbolMapping[*Class](),
	}
}

// RegisterClass adds c as both a nested class and a global binding
// under name, so `Package.Name` resolves the class object itself.
func (p *Package) RegisterClass(name *symbol.Symbol, c *Class, proto *value.Data) {
	p.Classes.Set(name, c)
	p.Globals.Set(name, value.NewStrong(proto, value.FlagGlobal|value.FlagConstAddress))
}

func (p *Package) SetGlobal(name *symbol.Symbol, ref value.Reference) {
	p.Globals.Set(name, ref)
}

func (p *Package) Global(name *symbol.Symbol) (value.Reference, bool) {
	return p.Globals.Get(name)
}

// Trace yields every global's Data; nested classes are reached via
// their prototype Data already held in Globals, so no separate walk
// over Classes is required.
func (p *Package) Trace(mark func(*value.Data)) {
	p.Globals.Range(func(_ *symbol.Symbol, ref value.Reference) bool {
		mark(ref.Data)
		return true
	})
}
