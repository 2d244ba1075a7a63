package container

import "mint/internal/value"

// GeneratorState is an opaque marker for whatever the scheduler package
// stores as a generator's saved resumption state (spec §3.6, §4.7).
// container cannot import scheduler (scheduler sits above cursor, which
// sits above container) so it only carries the pointer around.
type GeneratorState interface {
	Resume(out chan<- value.Reference) (done bool)
}

// Iterator holds a finite sequence context: an eagerly-enumerated deque
// of References (array/hash-keys/string-codepoints/range), or a
// generator resumption token (spec §3.6).
type Iterator struct {
	buffer    []value.Reference
	pos       int
	exhausted bool

	generator GeneratorState
}

// NewEagerIterator wraps a pre-computed sequence (array contents, hash
// keys, string codepoints, a range's members).
func NewEagerIterator(items []value.Reference) *Iterator {
	return &Iterator{buffer: items}
}

// NewGeneratorIterator wraps a generator's saved-state resumption
// handle (spec §4.7): buffer is filled lazily as Next pulls from it.
func NewGeneratorIterator(g GeneratorState) *Iterator {
	return &Iterator{generator: g}
}

// HasNext reports whether another element is available without
// consuming it.
func (it *Iterator) HasNext() bool {
	if it.pos < len(it.buffer) {
		return true
	}
	if it.generator == nil || it.exhausted {
		return false
	}
	return it.pullGenerator()
}

func (it *Iterator) pullGenerator() bool {
	ch := make(chan value.Reference, 1)
	done := it.generator.Resume(ch)
	select {
	case v := <-ch:
		it.buffer = append(it.buffer, v)
		return true
	default:
		if done {
			it.exhausted = true
		}
		return false
	}
}

// Next returns the next element (spec opcodes iter_next / range_next
// / find_next all bottom out here).
func (it *Iterator) Next() (value.Reference, bool) {
	if !it.HasNext() {
		return value.Reference{}, false
	}
	v := it.buffer[it.pos]
	it.pos++
	return v, true
}

// Append adds a value to the buffer directly — used by `yield`, which
// appends to the generator's own iterator rather than pulling from it
// (spec §4.7).
func (it *Iterator) Append(v value.Reference) {
	it.buffer = append(it.buffer, v)
}

func (it *Iterator) MarkExhausted() { it.exhausted = true }
func (it *Iterator) Exhausted() bool {
	return it.exhausted && it.pos >= len(it.buffer)
}

// Trace yields every buffered element.
func (it *Iterator) Trace(mark func(*value.Data)) {
	for _, ref := range it.buffer {
		mark(ref.Data)
	}
}

// Range builds the inclusive/exclusive integer sequence of spec §4.10
// (`..` inclusive, `...` exclusive) and §B3 (`0..0` -> [0], `0...0` -> []).
// alloc is supplied by the caller (the Cursor's number allocator) so
// every member Data is still registered with the owning Collector —
// container has no Collector of its own to allocate from.
func Range(from, to float64, inclusive bool, alloc func(float64) *value.Data) *Iterator {
	var items []value.Reference
	if inclusive {
		for v := from; v <= to; v++ {
			items = append(items, value.NewWeak(alloc(v), value.FlagNone))
		}
	} else {
		for v := from; v < to; v++ {
			items = append(items, value.NewWeak(alloc(v), value.FlagNone))
		}
	}
	return NewEagerIterator(items)
}
