// Package container implements Mint's builtin container metatypes:
// string, array, hash, iterator, and a thin regex wrapper (spec §2.6,
// §3.4 "metatype tag"). These are the payloads value.Data.Object points
// at when value.Data.Format == FmtObject and the owning Class's
// Metatype is one of the container tags below.
package container

import "unicode/utf8"

// Metatype tags a Class's built-in representation, letting the
// operator kernel bypass method-table lookup for primitive container
// operations (spec §3.4, glossary "Metatype").
type Metatype byte

const (
	MetaObject Metatype = iota
	MetaString
	MetaRegex
	MetaArray
	MetaHash
	MetaIterator
	MetaLibrary
	MetaLibObject
)

// String is Mint's immutable builtin string. Indexing is codepoint
// (rune) addressed, never byte addressed (spec B2): each element is
// one Unicode codepoint, so multi-byte UTF-8 sequences act as a
// single unit under subscript, length, and iteration.
type String struct {
	Value string

	// runes is computed lazily and cached: most strings are never
	// indexed, so paying the O(n) decode cost at indexing time (once)
	// beats paying it on every construction.
	runes []rune
}

func NewString(s string) *String { return &String{Value: s} }

func (s *String) decoded() []rune {
	if s.runes == nil {
		s.runes = []rune(s.Value)
	}
	return s.runes
}

// Len returns the codepoint count, not the byte count.
func (s *String) Len() int { return utf8.RuneCountInString(s.Value) }

// At returns the codepoint at i as a single-rune String, or ok=false
// if i is out of range (spec B2, B1-style boundary check).
func (s *String) At(i int) (*String, bool) {
	r := s.decoded()
	if i < 0 || i >= len(r) {
		return nil, false
	}
	return NewString(string(r[i])), true
}

// Substring returns the codepoint range [from, to).
func (s *String) Substring(from, to int) (*String, bool) {
	r := s.decoded()
	if from < 0 || to > len(r) || from > to {
		return nil, false
	}
	return NewString(string(r[from:to])), true
}

// Concat returns a new String; Mint strings are immutable value-like
// objects (operator `+` always allocates).
func (s *String) Concat(other *String) *String {
	return NewString(s.Value + other.Value)
}

func (s *String) Equal(other *String) bool { return s.Value == other.Value }
