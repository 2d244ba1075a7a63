// Package gc implements Mint's garbage collector: reference counting
// for the common acyclic case, with a periodic clear/mark/sweep pass
// to reclaim reference cycles (spec §3.1, §4.2, §9 "Cyclic object
// references"). Reachable Data for the mark phase is discovered by
// walking every registered Root's current root set and then following
// Traceable.Trace from there — this stands in for the source's mix of
// "every frame's symbol table, every global, every in-flight function
// value, every Object slot, every value-stack element" (spec §4.1).
package gc

import (
	"sync"

	"mint/internal/value"
)

// Traceable is implemented by any Data payload (Object, Function,
// Iterator, ...) that holds further References the collector must
// follow to find everything reachable from it.
type Traceable interface {
	Trace(mark func(*value.Data))
}

// Root is registered with the Collector by anything that owns a set of
// strong references the collector must treat as always-reachable:
// a Cursor (value stack + symbol table + frames), the global data
// table, or an in-flight host call holding a function value.
type Root interface {
	Roots() []*value.Data
}

// pool recycles Data allocations for one metatype so repeated
// alloc/free of the same shape doesn't thrash the Go allocator.
type pool struct {
	free []*value.Data
}

func (p *pool) get() *value.Data {
	if n := len(p.free); n > 0 {
		d := p.free[n-1]
		p.free = p.free[:n-1]
		*d = value.Data{}
		return d
	}
	return &value.Data{}
}

func (p *pool) put(d *value.Data) {
	if len(p.free) < 4096 {
		p.free = append(p.free, d)
	}
}

// Stats summarizes one Collect() invocation.
type Stats struct {
	LiveBefore int
	Freed      int
	LiveAfter  int
}

// Collector owns the live list, per-metatype pools, and the root
// registry. It is not a singleton (spec §9 "Global mutable state"):
// callers construct one Collector per Runtime and thread it through
// every core operation explicitly.
type Collector struct {
	mu    sync.Mutex // guarded under the GIL in practice; kept for standalone tests
	pools [256]pool
	live  *value.Data // head of the intrusive live list
	count int
	roots map[Root]struct{}

	onCollect func(Stats)
	finalize  func(d *value.Data)
}

// New constructs an empty Collector. onCollect, if non-nil, is invoked
// after every Collect() call with summary statistics — wired to the
// Scheduler's diagnostic logger.
func New(onCollect func(Stats)) *Collector {
	return &Collector{
		roots:     make(map[Root]struct{}),
		onCollect: onCollect,
	}
}

// SetFinalizer installs the hook invoked for every Data the sweep
// reclaims, before its storage is returned to the pool. The scheduler
// installs this to inspect d.Object's class for a `delete` operator and,
// if present, schedule a destructor task (spec §4.2, §4.9 create_destructor)
// rather than running it inline on the collecting thread.
func (c *Collector) SetFinalizer(fn func(d *value.Data)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finalize = fn
}

// Alloc allocates a Data of the given PoolTag (metatype), registers it
// in the live list, and returns it with Refcount 0. Callers wrap it in
// a value.Reference immediately via value.NewStrong to retain it.
func (c *Collector) Alloc(poolTag byte) *value.Data {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.pools[poolTag].get()
	d.PoolTag = poolTag
	c.registerData(d)
	return d
}

// registerData threads d onto the front of the live list.
func (c *Collector) registerData(d *value.Data) {
	d.SetGCLinks(nil, c.live)
	if c.live != nil {
		_, lnext := c.live.GCLinks()
		c.live.SetGCLinks(d, lnext)
	}
	c.live = d
	c.count++
}

// unregisterData unthreads d from the live list.
func (c *Collector) unregisterData(d *value.Data) {
	prev, next := d.GCLinks()
	if prev != nil {
		pprev, _ := prev.GCLinks()
		prev.SetGCLinks(pprev, next)
	} else {
		c.live = next
	}
	if next != nil {
		_, nnext := next.GCLinks()
		next.SetGCLinks(prev, nnext)
	}
	d.SetGCLinks(nil, nil)
	c.count--
}

// RegisterRoot adds a root provider to the traversal set.
func (c *Collector) RegisterRoot(r Root) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roots[r] = struct{}{}
}

// UnregisterRoot removes a root provider (e.g. a Cursor whose thread
// has exited).
func (c *Collector) UnregisterRoot(r Root) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.roots, r)
}

// LiveCount reports how many Data are currently tracked, for tests
// asserting P1/P2.
func (c *Collector) LiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Collect runs one clear/mark/sweep cycle (spec §4.2). It is explicitly
// invoked by the scheduler at thread-pop time and at interpreter
// safepoints — there is no allocation-triggered invocation.
func (c *Collector) Collect() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.count

	// 1. clear all reachability bits.
	for d := c.live; d != nil; {
		d.Reachable = false
		_, next := d.GCLinks()
		d = next
	}

	// 2. mark roots and everything reachable from them.
	var worklist []*value.Data
	mark := func(d *value.Data) {
		if d == nil || d.Reachable {
			return
		}
		d.Reachable = true
		worklist = append(worklist, d)
	}
	for r := range c.roots {
		for _, d := range r.Roots() {
			mark(d)
		}
	}
	for len(worklist) > 0 {
		d := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		traceChild := func(child interface{}) {
			if t, ok := child.(Traceable); ok {
				t.Trace(mark)
			}
		}
		traceChild(d.Object)
		traceChild(d.Package)
		traceChild(d.Function)
	}

	// 3. sweep: anything still unreachable is garbage, whether it is
	// acyclic driftwood whose refcount already hit zero or an orphaned
	// reference cycle (refcount > 0 only from its own members). Both
	// are unreachable from every registered root, which is the only
	// fact the sweep actually needs.
	var freed int
	d := c.live
	for d != nil {
		_, next := d.GCLinks()
		if !d.Reachable {
			d.Collected = true
			if c.finalize != nil {
				c.finalize(d)
			}
			c.unregisterData(d)
			c.pools[d.PoolTag].put(d)
			freed++
		}
		d = next
	}

	stats := Stats{LiveBefore: before, Freed: freed, LiveAfter: c.count}
	if c.onCollect != nil {
		c.onCollect(stats)
	}
	return stats
}
