// Package errors implements the fatal-runtime-error side of Mint's
// error model (spec §7): type mismatch, arity mismatch, visibility
// violation, overflow, and not-found all surface as a *MintError that
// aborts the owning thread. Script-raised exceptions (`raise X`) are
// a different animal — they carry a value.Reference and propagate
// through retrieve points (see internal/scheduler), never through
// this package.
package errors

import (
	"fmt"
	"strings"
)

// Kind classifies a fatal runtime error.
type Kind string

const (
	TypeMismatch   Kind = "TypeMismatch"
	ArityMismatch  Kind = "ArityMismatch"
	Visibility     Kind = "VisibilityViolation"
	Overflow       Kind = "Overflow"
	NotFound       Kind = "NotFound"
	InternalError  Kind = "InternalError"
)

// SourceLocation pinpoints a node offset back to source.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// StackFrame is one entry of a backtrace snapshot taken at the point
// a MintError was raised.
type StackFrame struct {
	Function string
	File     string
	Line     int
	Column   int
}

// MintError is a fatal runtime error (spec §7). It is distinct from a
// script-level exception: nothing catches a MintError with `try`/`catch`,
// it unwinds the whole thread and, via the scheduler's exit callback,
// the process.
type MintError struct {
	Kind      Kind
	Message   string
	Location  SourceLocation
	CallStack []StackFrame
	Source    string
}

func (e *MintError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))

	if e.Location.File != "" {
		sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n",
			e.Location.File, e.Location.Line, e.Location.Column))

		if e.Source != "" {
			sb.WriteString(fmt.Sprintf("\n  %d | %s\n", e.Location.Line, e.Source))
			sb.WriteString(fmt.Sprintf("  %s", strings.Repeat(" ", len(fmt.Sprintf("%d | ", e.Location.Line)))))
			if e.Location.Column > 0 {
				sb.WriteString(strings.Repeat(" ", e.Location.Column-1))
			}
			sb.WriteString("^\n")
		}
	}

	if len(e.CallStack) > 0 {
		sb.WriteString("\nCall Stack:\n")
		for _, frame := range e.CallStack {
			if frame.Function != "" {
				sb.WriteString(fmt.Sprintf("  at %s (%s:%d:%d)\n",
					frame.Function, frame.File, frame.Line, frame.Column))
			} else {
				sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n",
					frame.File, frame.Line, frame.Column))
			}
		}
	}

	return sb.String()
}

func New(kind Kind, message string, loc SourceLocation) *MintError {
	return &MintError{Kind: kind, Message: message, Location: loc}
}

func NewTypeMismatch(message string, loc SourceLocation) *MintError {
	return New(TypeMismatch, message, loc)
}

func NewArityMismatch(message string, loc SourceLocation) *MintError {
	return New(ArityMismatch, message, loc)
}

func NewVisibilityViolation(message string, loc SourceLocation) *MintError {
	return New(Visibility, message, loc)
}

func NewOverflow(message string, loc SourceLocation) *MintError {
	return New(Overflow, message, loc)
}

func NewNotFound(message string, loc SourceLocation) *MintError {
	return New(NotFound, message, loc)
}

func (e *MintError) WithSource(source string) *MintError {
	e.Source = source
	return e
}

func (e *MintError) WithStack(stack []StackFrame) *MintError {
	e.CallStack = stack
	return e
}

func (e *MintError) AddStackFrame(function, file string, line, column int) *MintError {
	e.CallStack = append(e.CallStack, StackFrame{
		Function: function,
		File:     file,
		Line:     line,
		Column:   column,
	})
	return e
}
