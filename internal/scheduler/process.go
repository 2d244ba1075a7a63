package scheduler

import (
	"sync"

	"github.com/google/uuid"

	"mint/internal/bytecode"
	"mint/internal/cursor"
	"mint/internal/value"
)

// State is a Process's position in its lifecycle (spec §2 glossary
// "Process").
type State int

const (
	StateReady State = iota
	StateRunning
	StateWaiting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Process owns one Cursor and the entry point it was configured to
// run (spec §2: "a ThreadPool of Process instances. Each Process owns
// a Cursor"). ID uses google/uuid rather than a sequential counter
// (SPEC_FULL.md's scheduler process-id wiring). Destructor and
// exception handling create no Process and take no id.
type Process struct {
	ID     uuid.UUID
	Cursor *cursor.Cursor
	Entry  *bytecode.Handle
	Self   *value.Data
	Args   []*value.Data

	State  State
	Result *value.Data
	Err    error
	Done   chan struct{}
}

func newProcess(cur *cursor.Cursor, entry *bytecode.Handle, self *value.Data, args []*value.Data) *Process {
	return &Process{
		ID:     uuid.New(),
		Cursor: cur,
		Entry:  entry,
		Self:   self,
		Args:   args,
		State:  StateReady,
		Done:   make(chan struct{}),
	}
}

// ThreadPool is the id -> Process registry (spec §4.9: "The ThreadPool
// ... is guarded by its own mutex, acquired only when threads
// enter/leave the pool or the pool is iterated").
type ThreadPool struct {
	mu        sync.RWMutex
	processes map[uuid.UUID]*Process
}

func newThreadPool() *ThreadPool {
	return &ThreadPool{processes: map[uuid.UUID]*Process{}}
}

func (tp *ThreadPool) register(p *Process) {
	tp.mu.Lock()
	tp.processes[p.ID] = p
	tp.mu.Unlock()
}

func (tp *ThreadPool) unregister(id uuid.UUID) {
	tp.mu.Lock()
	delete(tp.processes, id)
	tp.mu.Unlock()
}

func (tp *ThreadPool) get(id uuid.UUID) (*Process, bool) {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	p, ok := tp.processes[id]
	return p, ok
}

func (tp *ThreadPool) len() int {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return len(tp.processes)
}

func (tp *ThreadPool) each(fn func(*Process)) {
	tp.mu.RLock()
	snapshot := make([]*Process, 0, len(tp.processes))
	for _, p := range tp.processes {
		snapshot = append(snapshot, p)
	}
	tp.mu.RUnlock()
	for _, p := range snapshot {
		fn(p)
	}
}
