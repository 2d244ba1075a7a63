// cmd/mint is a demo host harness: it wires together the runtime core
// package by package the way an embedder would (symbol table, GC,
// program image, operator kernel, scheduler), registers the demo
// builtin families, hand-assembles one Module exercising a couple of
// host calls, and runs it to completion. It is deliberately not a
// compiler front-end or REPL — those are out of scope here, unlike
// the teacher's cmd/sentra which is exactly that.
package main

import (
	"fmt"
	"log"
	"os"

	"mint/internal/builtin"
	"mint/internal/bytecode"
	"mint/internal/cursor"
	"mint/internal/gc"
	"mint/internal/interp"
	"mint/internal/operator"
	"mint/internal/runtimecfg"
	"mint/internal/scheduler"
	"mint/internal/symbol"
	"mint/internal/value"
)

const packagePath = "demo"

func main() {
	symbols := symbol.NewTable()

	collector := gc.New(func(stats gc.Stats) {
		log.Printf("mint: gc pass live_before=%d freed=%d live_after=%d", stats.LiveBefore, stats.Freed, stats.LiveAfter)
	})

	program := interp.NewProgram()
	pkg := program.Package(packagePath)

	registry := builtin.NewRegistry(symbols, collector)
	registry.RegisterCore(pkg)
	registry.RegisterFormat(pkg)
	registry.RegisterNet(pkg)
	registry.RegisterDB(pkg)
	registry.RegisterCrypto(pkg)

	mainCursor := cursor.New(collector, symbols, program.Packages)
	kernel := operator.New(mainCursor, mainCursor)
	in := interp.New(program, kernel)
	in.AttachCursor(mainCursor)

	cfg := runtimecfg.Default(runtimecfg.WithExitCallback(func(status int) {
		fmt.Printf("\nmint: exited with status %d\n", status)
	}))
	sched := scheduler.New(in, collector, symbols, cfg)

	module := assembleDemo(program, symbols)
	entry := module.MakeHandle(packagePath, module.ID, 0, 0, false)
	sched.Configure(mainCursor, entry, nil, nil)

	os.Exit(sched.Run())
}

// assembleDemo hand-assembles a Module calling two registered
// builtins (spec §6.1's compiler-to-core contract: the compiler is
// the only writer of a Module's Node vector; this stands in for one)
// and printing their results:
//
//	open_package demo
//	load_symbol uuid4 ; init_call 0 ; call ; open_printer ; print ; close_printer
//	load_symbol format_comma ; load_constant 1234567 ; init_call 1 ; call ; open_printer ; print ; close_printer
//	close_package
//	module_end
func assembleDemo(program *interp.Program, symbols *symbol.Table) *bytecode.Module {
	m := bytecode.NewModule(0, symbols)
	program.AddModule(m)

	at := bytecode.DebugInfo{File: "demo", Function: "main"}

	m.PushNodes(at, bytecode.OpNode(bytecode.OpOpenPackage), bytecode.SymbolNode(m.MakeSymbol(packagePath)))

	m.PushNodes(at, bytecode.OpNode(bytecode.OpLoadSymbol), bytecode.SymbolNode(m.MakeSymbol("uuid4")))
	m.PushNodes(at, bytecode.OpNode(bytecode.OpInitCall), bytecode.IntNode(0))
	m.PushNode(bytecode.OpNode(bytecode.OpCall), at)
	m.PushNode(bytecode.OpNode(bytecode.OpOpenPrinter), at)
	m.PushNode(bytecode.OpNode(bytecode.OpPrint), at)
	m.PushNode(bytecode.OpNode(bytecode.OpClosePrinter), at)

	count := m.MakeConstant(&value.Data{Format: value.FmtNumber, Number: 1234567, Reachable: true})
	m.PushNodes(at, bytecode.OpNode(bytecode.OpLoadSymbol), bytecode.SymbolNode(m.MakeSymbol("format_comma")))
	m.PushNodes(at, bytecode.OpNode(bytecode.OpLoadConstant), bytecode.ConstantNode(count))
	m.PushNodes(at, bytecode.OpNode(bytecode.OpInitCall), bytecode.IntNode(1))
	m.PushNode(bytecode.OpNode(bytecode.OpCall), at)
	m.PushNode(bytecode.OpNode(bytecode.OpOpenPrinter), at)
	m.PushNode(bytecode.OpNode(bytecode.OpPrint), at)
	m.PushNode(bytecode.OpNode(bytecode.OpClosePrinter), at)

	m.PushNode(bytecode.OpNode(bytecode.OpClosePackage), at)
	m.PushNode(bytecode.OpNode(bytecode.OpModuleEnd), at)

	return m
}
