// Package scheduler implements the cooperative multi-thread runtime
// described in spec §2/§4.9: a ThreadPool of Processes, each owning a
// Cursor, serialized by a single global interpreter lock that a
// Process holds for one quantum at a time and releases only at the
// quantum boundary (a call does not release it); periodic Collect
// runs between quanta. It is
// grounded on the teacher's internal/concurrency package (worker
// pools built from context.WithCancel + sync.WaitGroup + atomic
// counters over channel-dispatched jobs) generalized from an
// independent job-queue abstraction to the GIL-serialized Cursor
// scheduler the spec describes, plus golang.org/x/sync/errgroup for
// create_async's future (SPEC_FULL.md's domain-stack wiring: the
// teacher hand-rolls futures with WaitGroup, errgroup is the
// idiomatic replacement once one is already in the corpus).
package scheduler

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mint/internal/bytecode"
	"mint/internal/callutil"
	"mint/internal/class"
	"mint/internal/cursor"
	"mint/internal/gc"
	"mint/internal/interp"
	"mint/internal/runtimecfg"
	"mint/internal/symbol"
	"mint/internal/value"
)

// Future resolves with the final stack-top value of a create_async
// process (spec §6.3 `create_async(cursor) -> future<WeakReference>`).
type Future struct {
	group   *errgroup.Group
	process *Process
}

// Wait blocks until the async process terminates and returns its
// final stack-top, or the error that aborted it.
func (f *Future) Wait() (*value.Data, error) {
	if err := f.group.Wait(); err != nil {
		return nil, err
	}
	return f.process.Result, f.process.Err
}

// Scheduler owns the program image's shared Cursor-construction
// inputs (GC, symbol table, package registry), the dispatch loop, the
// GIL, and the ThreadPool (spec §2: "A Scheduler owns one
// AbstractSyntaxTree ... and a ThreadPool of Process instances").
type Scheduler struct {
	Interp  *interp.Interp
	GC      *gc.Collector
	Symbols *symbol.Table
	Config  *runtimecfg.Config

	gil  *gil
	pool *ThreadPool

	queueMu sync.Mutex
	queue   []*Process

	running atomic.Bool
	status  atomic.Int64

	quanta atomic.Int64
}

// New builds a Scheduler. The caller has already wired in.Kernel and
// in.Program with every module/package the run will need.
func New(in *interp.Interp, collector *gc.Collector, symbols *symbol.Table, cfg *runtimecfg.Config) *Scheduler {
	if cfg == nil {
		cfg = runtimecfg.Default()
	}
	s := &Scheduler{
		Interp:  in,
		GC:      collector,
		Symbols: symbols,
		Config:  cfg,
		gil:     newGIL(),
		pool:    newThreadPool(),
	}
	collector.SetFinalizer(s.finalize)
	return s
}

// NewCursor builds a Cursor sharing this Scheduler's GC, symbol table,
// and package registry, with its Call callback wired to the Scheduler's
// Interp (spec §4.4: cursors share a GC and SymbolMappings are only
// ever read concurrently, written under the GIL).
func (s *Scheduler) NewCursor(packages map[string]*class.Package) *cursor.Cursor {
	cur := cursor.New(s.GC, s.Symbols, packages)
	s.Interp.AttachCursor(cur)
	return cur
}

// Configure enqueues a Process to run when Run is called (spec §4.9
// "run(): drain the configured-process queue"). It does not start
// execution.
func (s *Scheduler) Configure(cur *cursor.Cursor, entry *bytecode.Handle, self *value.Data, args []*value.Data) *Process {
	p := newProcess(cur, entry, self, args)
	s.pool.register(p)
	s.queueMu.Lock()
	s.queue = append(s.queue, p)
	s.queueMu.Unlock()
	return p
}

func (s *Scheduler) dequeue() (*Process, bool) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	p := s.queue[0]
	s.queue = s.queue[1:]
	return p, true
}

// Run drains the configured-process queue: for each one, attach as
// the main thread and run to termination or exit, then drain again
// (spec §4.9). It returns once the queue is empty; it does not wait
// for threads started by CreateThread or CreateAsync.
func (s *Scheduler) Run() int {
	s.running.Store(true)
	for s.running.Load() {
		p, ok := s.dequeue()
		if !ok {
			break
		}
		s.runToCompletion(p)
	}
	return int(s.status.Load())
}

// runToCompletion drives one Process's Cursor, holding the GIL only
// for the duration of each quantum (spec §4.9's "cooperative yield at
// each exec() quantum"; §4.2's "collect() is explicitly invoked ... at
// interpreter safepoints").
func (s *Scheduler) runToCompletion(p *Process) {
	p.State = StateRunning
	p.Cursor.Module = s.Interp.Program.Modules[p.Entry.ModuleID]
	p.Cursor.IP = p.Entry.Offset

	for {
		if !s.running.Load() {
			p.State = StateTerminated
			close(p.Done)
			return
		}

		s.gil.acquire()
		sig, result, err := s.Interp.Run(p.Cursor, s.Config.QuantumSize)
		s.gil.release()

		if n := s.quanta.Add(1); s.Config.CollectAfterQuanta > 0 && n%int64(s.Config.CollectAfterQuanta) == 0 {
			s.GC.Collect()
		}

		switch sig {
		case interp.SigModuleEnd, interp.SigExitThread, interp.SigExitExec:
			// Run reports None for these signals; the process's result is
			// its final stack top.
			p.Result, p.Err = p.Cursor.Peek(), err
			p.State = StateTerminated
			s.pool.unregister(p.ID)
			close(p.Done)
			return
		case interp.SigUnhandledException:
			s.reportFatal(p.Cursor, result, err)
			p.Err = err
			p.State = StateTerminated
			s.pool.unregister(p.ID)
			close(p.Done)
			return
		default:
			if err != nil {
				s.reportFatal(p.Cursor, nil, err)
				p.Err = err
				p.State = StateTerminated
				s.pool.unregister(p.ID)
				close(p.Done)
				return
			}
			runtime.Gosched()
		}
	}
}

// CreateThread spawns an OS thread (a goroutine contending for the
// GIL) running entry to completion and returns its Process id (spec
// §6.3 create_thread). The GIL's fairness ticketing means a thread
// created while others are busy is served in arrival order.
func (s *Scheduler) CreateThread(cur *cursor.Cursor, entry *bytecode.Handle, self *value.Data, args []*value.Data) uuid.UUID {
	p := newProcess(cur, entry, self, args)
	s.pool.register(p)
	go s.runToCompletion(p)
	runtime.Gosched()
	return p.ID
}

// CreateAsync spawns a thread like CreateThread but returns a Future
// resolved with the Process's final stack-top (spec §6.3
// create_async).
func (s *Scheduler) CreateAsync(cur *cursor.Cursor, entry *bytecode.Handle, self *value.Data, args []*value.Data) *Future {
	p := newProcess(cur, entry, self, args)
	s.pool.register(p)

	var g errgroup.Group
	g.Go(func() error {
		s.runToCompletion(p)
		return p.Err
	})
	return &Future{group: &g, process: p}
}

// CreateDestructor invokes owner's delete method on self in a fresh
// Cursor, running it to completion before returning (spec §6.3
// create_destructor). It runs in the calling goroutine and starts no
// separate thread. It is the body installed as the GC's finalizer via
// finalize below.
func (s *Scheduler) CreateDestructor(owner *class.Class, member *class.FunctionValue, self *value.Data) error {
	cur := s.NewCursor(s.sharedPackages())
	sig, entry, err := callutil.ResolveCall(member, nil)
	if err != nil {
		return err
	}
	_ = sig
	_, err = s.Interp.Invoke(cur, entry.Handle, self, nil)
	return err
}

func (s *Scheduler) sharedPackages() map[string]*class.Package {
	return s.Interp.Program.Packages
}

// finalize is wired to gc.Collector's sweep (spec §4.9: destructor
// tasks execute in the creating thread's context before the thread's
// stack is torn down; here, synchronously during the sweep that
// collects the object). Objects without a `delete` operator are
// swept silently.
func (s *Scheduler) finalize(d *value.Data) {
	obj, ok := d.Object.(*class.Object)
	if !ok || obj.IsPrototype() {
		return
	}
	dtor := obj.Class.Operator(class.OpDelete)
	if dtor == nil {
		return
	}
	if err := s.CreateDestructor(obj.Class, dtor, d); err != nil && s.Config.Logger != nil {
		s.Config.Logger.Printf("mint: destructor for %s failed: %v", obj.Class.Name, err)
	}
}

// CreateException raises exception into cur's own nearest retrieve
// point; when cur has none, it reports the exception through
// reportFatal (logger, OnFatalError, exit status 1). It runs
// synchronously, has no notion of a parent cursor, and does not stop
// cur's process.
func (s *Scheduler) CreateException(cur *cursor.Cursor, exception *value.Data) {
	if cur.Raise(exception) {
		return
	}
	s.reportFatal(cur, exception, nil)
}

// reportFatal prints the exception/error and invokes the configured
// fatal-error callback with a backtrace (spec §7: "a host embedder can
// install an error callback invoked before abort, receiving the
// message and a backtrace").
func (s *Scheduler) reportFatal(cur *cursor.Cursor, exception *value.Data, err error) {
	message := "unhandled exception"
	if err != nil {
		message = err.Error()
	} else if exception != nil {
		message = fmt.Sprintf("uncaught exception: %v", exception.Number)
	}
	stack := s.backtrace(cur)
	if s.Config.OnFatalError != nil {
		s.Config.OnFatalError(message, stack)
	}
	if s.Config.Logger != nil {
		s.Config.Logger.Printf("mint: %s", message)
	}
	s.status.Store(1)
}

func (s *Scheduler) backtrace(cur *cursor.Cursor) []bytecode.DebugInfo {
	trace := make([]bytecode.DebugInfo, 0, len(cur.Frames)+1)
	if cur.Module != nil {
		trace = append(trace, cur.Module.GetDebugInfo(cur.IP))
	}
	for i := len(cur.Frames) - 1; i >= 0; i-- {
		f := cur.Frames[i]
		if f.Module != nil {
			trace = append(trace, f.Module.GetDebugInfo(f.ReturnIP))
		}
	}
	return trace
}

// ResumeGenerator drives a suspended generator Cursor for one more
// quantum (spec §6.3/§4.7 create_generator): the SavedState
// simplification means resuming a generator is just re-entering Run
// on the same Cursor the previous yield suspended, rather than
// restoring a separate snapshot structure. It does not change the
// running state of the calling thread, so it acquires the GIL
// directly rather than going through a Process.
func (s *Scheduler) ResumeGenerator(gen *cursor.Cursor) (interp.Signal, *value.Data, error) {
	s.gil.acquire()
	defer s.gil.release()
	return s.Interp.Run(gen, s.Config.QuantumSize)
}

// Invoke runs function_ref to completion within the calling thread
// and returns its result (spec §6.3 `invoke(function_ref, args...)`).
func (s *Scheduler) Invoke(cur *cursor.Cursor, h *bytecode.Handle, self *value.Data, args []*value.Data) (*value.Data, error) {
	s.gil.acquire()
	defer s.gil.release()
	return s.Interp.Invoke(cur, h, self, args)
}

// Exit atomically flags every thread to stop at its next safepoint
// (spec §6.3/§4.9 `exit(status)`). Destructors and exception tasks
// already running still finish; there is no per-thread cancel.
func (s *Scheduler) Exit(status int) {
	s.running.Store(false)
	s.status.Store(int64(status))
	if s.Config.OnExit != nil {
		s.Config.OnExit(status)
	}
}

// Status returns the exit status most recently recorded by Exit or a
// fatal error.
func (s *Scheduler) Status() int { return int(s.status.Load()) }

// ThreadCount reports how many Processes are currently registered
// (running or ready), for tests and diagnostics.
func (s *Scheduler) ThreadCount() int { return s.pool.len() }

// Process looks up a registered Process by id.
func (s *Scheduler) Process(id uuid.UUID) (*Process, bool) { return s.pool.get(id) }
