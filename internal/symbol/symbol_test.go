package symbol

import "testing"

func TestInternReturnsSamePointer(t *testing.T) {
	table := NewTable()
	a := table.Intern("foo")
	b := table.Intern("foo")
	if a != b {
		t.Fatalf("Intern(%q) returned distinct pointers: %p != %p", "foo", a, b)
	}
	if c := table.Intern("bar"); c == a {
		t.Fatalf("Intern(%q) aliased Intern(%q)'s Symbol", "bar", "foo")
	}
}

func TestSymbolMappingGetSetDelete(t *testing.T) {
	table := NewTable()
	m := NewSymbolMapping[int]()

	foo := table.Intern("foo")
	bar := table.Intern("bar")

	m.Set(foo, 1)
	m.Set(bar, 2)

	if v, ok := m.Get(foo); !ok || v != 1 {
		t.Errorf("Get(foo) = %d, %v, want 1, true", v, ok)
	}
	if !m.Delete(bar) {
		t.Errorf("Delete(bar) = false, want true")
	}
	if _, ok := m.Get(bar); ok {
		t.Errorf("Get(bar) after Delete should miss")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestSymbolMappingUpdateInPlace(t *testing.T) {
	table := NewTable()
	m := NewSymbolMapping[string]()
	key := table.Intern("x")
	m.Set(key, "first")
	m.Set(key, "second")
	if v, _ := m.Get(key); v != "second" {
		t.Errorf("Get(x) = %q, want %q", v, "second")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (update, not insert)", m.Len())
	}
}

func TestSymbolMappingGrowsAndSurvivesResize(t *testing.T) {
	table := NewTable()
	m := NewSymbolMapping[int]()
	symbols := make([]*Symbol, 0, 500)
	for i := 0; i < 500; i++ {
		s := table.Intern(string(rune('a')) + itoa(i))
		symbols = append(symbols, s)
		m.Set(s, i)
	}
	if m.Len() != 500 {
		t.Fatalf("Len() = %d, want 500", m.Len())
	}
	for i, s := range symbols {
		if v, ok := m.Get(s); !ok || v != i {
			t.Fatalf("Get(symbol %d) = %d, %v, want %d, true", i, v, ok, i)
		}
	}
}

// P4: the robin-hood invariant never lets a probe distance grow
// unbounded even under many insertions/deletions that would skew a
// naive linear-probe table.
func TestMaxProbeDistanceStaysBounded(t *testing.T) {
	table := NewTable()
	m := NewSymbolMapping[int]()
	for i := 0; i < 1000; i++ {
		m.Set(table.Intern("key"+itoa(i)), i)
	}
	for i := 0; i < 1000; i += 2 {
		m.Delete(table.Intern("key" + itoa(i)))
	}
	for i := 0; i < 1000; i++ {
		m.Set(table.Intern("refill"+itoa(i)), i)
	}
	if d := m.MaxProbeDistance(); d > maxDistance {
		t.Errorf("MaxProbeDistance() = %d, exceeds maxDistance %d", d, maxDistance)
	}
}

func TestRangeVisitsEveryEntry(t *testing.T) {
	table := NewTable()
	m := NewSymbolMapping[int]()
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		m.Set(table.Intern(k), v)
	}
	got := map[string]int{}
	m.Range(func(key *Symbol, val int) bool {
		got[key.Name] = val
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("Range visited %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Range missed or mis-valued %q: got %d, want %d", k, got[k], v)
		}
	}
}

func TestFNV1a64Deterministic(t *testing.T) {
	if FNV1a64("hello") != FNV1a64("hello") {
		t.Error("FNV1a64 not deterministic for the same input")
	}
	if FNV1a64("hello") == FNV1a64("world") {
		t.Error("FNV1a64(\"hello\") collided with FNV1a64(\"world\") unexpectedly")
	}
}

// itoa avoids importing strconv just to build unique test key suffixes.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
