package symbol

import "sync"

// Symbol is an interned name (spec §3.8). Two Symbols with the same
// Name are always the same pointer, so callers may compare Symbols by
// identity instead of string equality once interned.
type Symbol struct {
	Name string
	id   uint32
}

// Table interns Symbols for one Runtime. Intern takes the Table's own
// mutex, so concurrent Intern calls are safe without external locking.
type Table struct {
	mu      sync.Mutex
	byName  map[string]*Symbol
	nextID  uint32
}

func NewTable() *Table {
	return &Table{byName: make(map[string]*Symbol)}
}

// Intern returns the canonical Symbol for name, creating it on first
// use.
func (t *Table) Intern(name string) *Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.byName[name]; ok {
		return s
	}
	s := &Symbol{Name: name, id: t.nextID}
	t.nextID++
	t.byName[name] = s
	return s
}

// SymbolHasher hashes a *Symbol by the FNV-1a hash of its Name, mixed
// with the sequential id its Table assigned at interning. The name is
// hashed again on every call.
func SymbolHasher(s *Symbol) uint64 {
	if s == nil {
		return 0
	}
	return FNV1a64(s.Name) ^ uint64(s.id)*0x100000001b3
}

// NewSymbolMapping constructs a SymbolMapping[V] keyed by *Symbol —
// the mapping described in spec §3.8, used for member tables, globals,
// and package contents.
func NewSymbolMapping[V any]() *Map[*Symbol, V] {
	return New[*Symbol, V](SymbolHasher)
}
