package class

import (
	"mint/internal/symbol"
	"mint/internal/value"
)

// MemberInfo describes one declared member (spec §3.4): its slot
// offset (or -1 for globals), the class that introduced it, its
// default value, and its access Flags.
type MemberInfo struct {
	Name    *symbol.Symbol
	Offset  int // -1 for globals (spec §4.4: "global flag go into the globals table, not slotted")
	Owner   *Class
	Default *value.Data
	Flags   value.Flags
}

func (m *MemberInfo) IsGlobal() bool { return m.Offset < 0 }
