// Package runtimecfg holds the Scheduler's tunables (quantum size,
// stack/frame limits, GC trigger policy) and the host-embedder hooks
// described in spec §6.3/§7 (exit callback, fatal-error callback). It
// follows the teacher's flat-struct-with-functional-options style
// (see the teacher's vm.NewVM constructor) rather than pulling in a
// config-file library the teacher never reached for at this layer.
package runtimecfg

import (
	"log"

	"mint/internal/bytecode"
)

// Logger is satisfied by *log.Logger; the teacher has no logging
// dependency at this layer and neither does this module (see
// SPEC_FULL.md §1).
type Logger interface {
	Printf(format string, args ...interface{})
}

// Config bundles every Scheduler tunable (spec §4.9/§5).
type Config struct {
	// QuantumSize is the number of nodes executed per exec() call
	// before the scheduler considers yielding the GIL (spec §5: "N
	// instructions configurable, default one node per iteration for
	// debuggability").
	QuantumSize int

	MaxStackDepth int
	MaxFrames     int

	// CollectAfterQuanta triggers a Collect() every N scheduled
	// quanta across the ThreadPool; 0 disables the automatic trigger
	// (spec §4.2: "no automatic trigger on allocation" — this is the
	// scheduler-driven safepoint trigger instead).
	CollectAfterQuanta int

	Logger Logger

	// OnFatalError is invoked before a fatal runtime error aborts its
	// thread (spec §7: "a host embedder can install an error callback
	// invoked before abort, receiving the message and a backtrace").
	OnFatalError func(message string, stack []bytecode.DebugInfo)

	// OnExit is called with the final status when the scheduler's
	// exit(status) completes (spec §6.3 add_exit_callback).
	OnExit func(status int)
}

type Option func(*Config)

func WithQuantumSize(n int) Option { return func(c *Config) { c.QuantumSize = n } }

func WithStackLimits(maxStack, maxFrames int) Option {
	return func(c *Config) { c.MaxStackDepth, c.MaxFrames = maxStack, maxFrames }
}

func WithCollectAfterQuanta(n int) Option { return func(c *Config) { c.CollectAfterQuanta = n } }

func WithLogger(l Logger) Option { return func(c *Config) { c.Logger = l } }

func WithFatalErrorCallback(fn func(message string, stack []bytecode.DebugInfo)) Option {
	return func(c *Config) { c.OnFatalError = fn }
}

func WithExitCallback(fn func(status int)) Option { return func(c *Config) { c.OnExit = fn } }

// Default matches the teacher's zero-config happy path: one node per
// quantum, generous stack/frame limits, GC triggered every 64 quanta,
// diagnostics to the standard logger.
func Default(opts ...Option) *Config {
	c := &Config{
		QuantumSize:        1,
		MaxStackDepth:      4096,
		MaxFrames:          1024,
		CollectAfterQuanta: 64,
		Logger:             log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
