package scheduler

import "sync"

// gil is the single global interpreter lock serializing bytecode
// execution (spec §4.9): "the GIL uses a counter+condition-variable
// strategy so fairness is maintained" once more than one thread is
// registered. Tickets are handed out in acquire order and served in
// that same order, so a thread that has been waiting longest always
// wakes next instead of racing a newcomer for the mutex.
type gil struct {
	mu      sync.Mutex
	cond    *sync.Cond
	held    bool
	next    uint64
	serving uint64
}

func newGIL() *gil {
	g := &gil{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *gil) acquire() {
	g.mu.Lock()
	ticket := g.next
	g.next++
	for g.held || ticket != g.serving {
		g.cond.Wait()
	}
	g.held = true
	g.mu.Unlock()
}

func (g *gil) release() {
	g.mu.Lock()
	g.held = false
	g.serving++
	g.cond.Broadcast()
	g.mu.Unlock()
}
