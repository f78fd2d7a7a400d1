package vm

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wisp-lang/wisp/internal/isa"
)

// RuntimeError is a failure raised while executing bytecode: an arithmetic
// error, a missing field, an out-of-range index, a borrow violation, or an
// explicit `panic` (spec.md §4.6 "Runtime errors carry the failing
// instruction's source span"). It wraps the underlying cause with
// github.com/pkg/errors so a host embedding the VM can print a stack trace,
// the way jcorbin-gothird's interpreter annotates evaluation errors with
// position info.
type RuntimeError struct {
	Func   string
	Offset int32
	Span   isa.Span
	Err    error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s (%s:%d-%d): %v", e.Func, e.Span.File, e.Span.Start, e.Span.End, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// runtimeErrorf builds a RuntimeError rooted at the frame's current
// instruction, annotated with a stack trace via errors.WithStack.
func (f *Frame) runtimeErrorf(format string, args ...any) error {
	var span isa.Span
	if int(f.pc) < len(f.m.unit.Spans) {
		span = f.m.unit.Spans[f.pc]
	}

	return &RuntimeError{
		Func:   f.meta.Name,
		Offset: f.pc,
		Span:   span,
		Err:    errors.WithStack(fmt.Errorf(format, args...)),
	}
}
