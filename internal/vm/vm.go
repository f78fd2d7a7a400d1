// Package vm executes an assembled bytecode.Unit: a stack machine dispatching
// wisp's 43 opcodes (spec.md §4.5, §4.6), backed by the value package's
// tagged Value representation and protocol table.
//
// The instruction cycle is grounded directly on the teacher's own
// fetch/decode/execute loop (internal/vm/exec.go's LC3.Step), generalized
// from a fixed six-stage register-machine cycle to a variable-arity stack
// machine: Frame.Resume plays the role of Step, dispatching by opcode
// instead of by addressing mode. Call frames replace the teacher's single
// flat register file, and RETURN/YIELD/AWAIT suspension replaces the
// teacher's interrupt-servicing loop as the mechanism for a Step-like
// function call to not run its callee to completion.
package vm

import (
	"github.com/wisp-lang/wisp/internal/bytecode"
	"github.com/wisp-lang/wisp/internal/isa"
	"github.com/wisp-lang/wisp/internal/items"
	"github.com/wisp-lang/wisp/internal/log"
	"github.com/wisp-lang/wisp/internal/value"
)

// Machine is one loaded, runnable bytecode.Unit plus the host's registered
// protocol overrides (spec.md §9: "the module registry is per-VM-instance").
type Machine struct {
	unit      *bytecode.Unit
	protocols *value.Protocols
	log       *log.Logger

	funcByOffset map[int32]bytecode.FuncMeta
	isGenerator  map[int32]bool
}

// Option configures a Machine at construction, the wisp analogue of the
// teacher's vm.OptionFn (internal/vm/vm.go).
type Option func(*Machine)

// WithLogger overrides the Machine's logger; the default is
// log.DefaultLogger(), which writes formatted records to standard error.
func WithLogger(l *log.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithProtocols installs a protocol table built by internal/module's impl
// registration, so operator overloads and custom iterators dispatch.
func WithProtocols(p *value.Protocols) Option {
	return func(m *Machine) { m.protocols = p }
}

// New loads unit for execution, precomputing the offset-indexed function
// table and which functions ever yield (so calling one returns a Generator
// or Stream instead of running to completion).
func New(unit *bytecode.Unit, opts ...Option) *Machine {
	m := &Machine{
		unit:         unit,
		protocols:    value.NewProtocols(),
		log:          log.DefaultLogger(),
		funcByOffset: make(map[int32]bytecode.FuncMeta, len(unit.Funcs)),
		isGenerator:  make(map[int32]bool, len(unit.Funcs)),
	}

	for _, f := range unit.Funcs {
		m.funcByOffset[f.Offset] = f
	}

	for _, f := range unit.Funcs {
		m.isGenerator[f.Offset] = containsYield(unit, f)
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func containsYield(unit *bytecode.Unit, f bytecode.FuncMeta) bool {
	end := int32(len(unit.Code))

	for _, other := range unit.Funcs {
		if other.Offset > f.Offset && other.Offset < end {
			end = other.Offset
		}
	}

	for i := f.Offset; i < end; i++ {
		if unit.Code[i].Op == isa.YIELD {
			return true
		}
	}

	return false
}

// RunMain invokes the unit's script-mode entry point (spec.md §6), erroring
// if the unit was not compiled in script mode.
func (m *Machine) RunMain() (value.Value, error) {
	if !m.unit.HasMain {
		return value.Value{}, errNoMain
	}

	return m.Call(m.unit.MainHash, nil)
}

// Call invokes a top-level function or impl method by its declared item
// hash, the entry point a host embedding the VM uses to invoke script code
// (spec.md §9 "Host embedding").
func (m *Machine) Call(hash items.Hash, args []value.Value) (value.Value, error) {
	idx, ok := m.unit.FuncByHash[hash]
	if !ok {
		return value.Value{}, errUnknownFunc(hash)
	}

	return m.invoke(m.unit.Funcs[idx], nil, args)
}

// callByOffset calls a function already resolved to an absolute code offset,
// the form CALL/LOADITEM/MAKECLOSURE operands take after assembly.
func (m *Machine) callByOffset(offset int32, captures []*value.Cell, args []value.Value) (value.Value, error) {
	meta, ok := m.funcByOffset[offset]
	if !ok {
		return value.Value{}, errUnknownOffset(offset)
	}

	return m.invoke(meta, captures, args)
}

// callValue invokes a first-class function value: a closure, a bound
// top-level function, or a host-registered native.
func (m *Machine) callValue(callee value.Value, args []value.Value) (value.Value, error) {
	if callee.Kind() != value.KindFunction {
		return value.Value{}, errNotCallable(callee.Kind())
	}

	fn := callee.Function()
	if fn.Native != nil {
		return fn.Native(args)
	}

	return m.callByOffset(int32(fn.Hash), fn.Captures, args)
}

// invoke runs meta synchronously if it is a plain function, or wraps a fresh,
// not-yet-started Frame as a Future/Generator/Stream if it is async and/or
// contains a yield (spec.md §4.6 "calling an async fn returns a Future
// immediately; calling a fn containing yield returns a Generator").
func (m *Machine) invoke(meta bytecode.FuncMeta, captures []*value.Cell, args []value.Value) (value.Value, error) {
	frame := m.newFrame(meta, captures, args)

	async := meta.IsAsync
	gen := m.isGenerator[meta.Offset]

	switch {
	case async && gen:
		return value.NewStream(frame), nil
	case async:
		return value.NewFuture(frame), nil
	case gen:
		return value.NewGenerator(frame), nil
	}

	result, done, err := frame.Resume(value.Unit)
	if err != nil {
		return value.Value{}, err
	}

	if !done {
		return value.Value{}, frame.runtimeErrorf("function suspended without being async or a generator")
	}

	return result, nil
}

func (m *Machine) newFrame(meta bytecode.FuncMeta, captures []*value.Cell, args []value.Value) *Frame {
	locals := make([]value.Value, meta.NumLocals)
	copy(locals, args)

	return &Frame{
		m:        m,
		meta:     meta,
		pc:       meta.Offset,
		locals:   locals,
		captures: captures,
		stack:    make([]value.Value, 0, 8),
	}
}
