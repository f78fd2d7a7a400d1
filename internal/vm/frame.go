package vm

import (
	"github.com/wisp-lang/wisp/internal/bytecode"
	"github.com/wisp-lang/wisp/internal/isa"
	"github.com/wisp-lang/wisp/internal/value"
)

// Frame is one activation of a function: its operand stack, local-slot array,
// captured-cell array, and program counter into the owning Machine's flat
// code array. Frame implements value.Suspended directly, so a Generator,
// Future, or Stream built from a call simply holds the Frame that produced
// it (spec.md §4.6 "calling convention").
type Frame struct {
	m        *Machine
	meta     bytecode.FuncMeta
	pc       int32
	stack    []value.Value
	locals   []value.Value
	captures []*value.Cell

	started     bool
	closed      bool
	suspendedAt string // "" or "yield"
}

// Resume runs the frame until it returns, yields, or errors; an `await` is
// driven to completion inside the loop and never suspends the frame. input is
// ignored on the very first call; on resumption from a `yield` it becomes the
// result of the `yield` expression itself, letting a caller feed values back
// into a generator.
func (f *Frame) Resume(input value.Value) (value.Value, bool, error) {
	if f.closed {
		return value.Value{}, false, f.runtimeErrorf("resume called on a closed frame")
	}

	if f.suspendedAt == "yield" {
		f.push(input)
	}

	f.started = true
	f.suspendedAt = ""

	for {
		if int(f.pc) >= len(f.m.unit.Code) {
			f.closed = true
			return value.Value{}, true, f.runtimeErrorf("fell off the end of the function without a return")
		}

		instr := f.m.unit.Code[f.pc]

		switch instr.Op {
		case isa.RETURN:
			v, err := f.pop()
			f.closed = true

			if err != nil {
				return value.Value{}, true, err
			}

			return v, true, nil

		case isa.YIELD:
			v, err := f.pop()
			if err != nil {
				f.closed = true
				return value.Value{}, true, err
			}

			f.pc++
			f.suspendedAt = "yield"

			return v, false, nil

		case isa.AWAIT:
			// value.Generator.Resume (which Stream inherits) treats any
			// non-done Resume as a produced yield, with no way to tell a
			// pending await apart from an actual yield. So a function's own
			// await points cannot suspend *this* frame the way yield does;
			// instead AWAIT drives the awaited future to completion here,
			// polling its inner frame synchronously. True concurrency across
			// independently-scheduled futures still comes from the host
			// scheduler round-robining Poll() on distinct top-level futures;
			// this only forbids a single function from yielding control back
			// to that scheduler mid-await.
			v, err := f.pop()
			if err != nil {
				f.closed = true
				return value.Value{}, true, err
			}

			if v.Kind() != value.KindFuture {
				f.closed = true
				return value.Value{}, true, f.runtimeErrorf("await: %v is not a future", v.Kind())
			}

			fut := v.Future()

			for fut.State != value.FutureReady {
				if err := fut.Poll(); err != nil {
					f.closed = true
					return value.Value{}, true, err
				}
			}

			if fut.Err != nil {
				f.closed = true
				return value.Value{}, true, fut.Err
			}

			f.push(fut.Result)
			f.pc++

		case isa.JUMP:
			f.pc = instr.A

		case isa.JUMPIFTRUE:
			v, err := f.pop()
			if err != nil {
				f.closed = true
				return value.Value{}, true, err
			}

			if v.Truthy() {
				f.pc = instr.A
			} else {
				f.pc++
			}

		case isa.JUMPIFFALSE:
			v, err := f.pop()
			if err != nil {
				f.closed = true
				return value.Value{}, true, err
			}

			if !v.Truthy() {
				f.pc = instr.A
			} else {
				f.pc++
			}

		case isa.PROPAGATE:
			v, err := f.pop()
			if err != nil {
				f.closed = true
				return value.Value{}, true, err
			}

			if value.IsErr(v) {
				f.closed = true
				return v, true, nil
			}

			f.push(v.Variant().Payload[0])
			f.pc++

		default:
			if err := f.step(instr); err != nil {
				f.closed = true
				return value.Value{}, true, err
			}

			f.pc++
		}
	}
}

// Close cancels a suspended frame (spec.md §5 "Cancellation"). It never runs
// destructor protocols on locals still live at the suspension point, since
// the language has no `drop` control-flow construct of its own; a host that
// registers a `drop` protocol handler for a type is responsible for invoking
// it before discarding the last reference.
func (f *Frame) Close() error {
	f.closed = true
	return nil
}

func (f *Frame) push(v value.Value) { f.stack = append(f.stack, v) }

func (f *Frame) pop() (value.Value, error) {
	if len(f.stack) == 0 {
		return value.Value{}, f.runtimeErrorf("stack underflow")
	}

	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]

	return v, nil
}

func (f *Frame) peek() (value.Value, error) {
	if len(f.stack) == 0 {
		return value.Value{}, f.runtimeErrorf("stack underflow")
	}

	return f.stack[len(f.stack)-1], nil
}

func (f *Frame) popN(n int32) ([]value.Value, error) {
	if n < 0 || int(n) > len(f.stack) {
		return nil, f.runtimeErrorf("stack underflow: need %d values, have %d", n, len(f.stack))
	}

	start := len(f.stack) - int(n)
	out := append([]value.Value(nil), f.stack[start:]...)
	f.stack = f.stack[:start]

	return out, nil
}

// readLocal reads slot A's current value. Non-negative A addresses this
// frame's own locals; negative A addresses a captured cell, per the
// convention lowerClosure/lowerIdent use: -(slot+1).
func (f *Frame) readLocal(a int32) (value.Value, error) {
	if a >= 0 {
		if int(a) >= len(f.locals) {
			return value.Value{}, f.runtimeErrorf("local slot %d out of range (have %d)", a, len(f.locals))
		}

		return f.locals[a], nil
	}

	idx := -(a + 1)
	if int(idx) >= len(f.captures) {
		return value.Value{}, f.runtimeErrorf("capture slot %d out of range (have %d)", idx, len(f.captures))
	}

	return f.captures[idx].Value, nil
}

func (f *Frame) writeLocal(a int32, v value.Value) error {
	if a >= 0 {
		if int(a) >= len(f.locals) {
			return f.runtimeErrorf("local slot %d out of range (have %d)", a, len(f.locals))
		}

		f.locals[a] = v

		return nil
	}

	idx := -(a + 1)
	if int(idx) >= len(f.captures) {
		return f.runtimeErrorf("capture slot %d out of range (have %d)", idx, len(f.captures))
	}

	f.captures[idx].Value = v

	return nil
}
