package vm

import (
	"github.com/wisp-lang/wisp/internal/isa"
	"github.com/wisp-lang/wisp/internal/value"
)

// step executes every opcode that neither transfers control nor suspends the
// frame (those are handled directly in Frame.Resume's loop, since they need
// to return out of it). Every case here either pushes exactly the values the
// lowerer expects on success or returns a non-nil error, leaving pc
// advancement to the caller.
func (f *Frame) step(instr isa.Instruction) error {
	switch instr.Op {
	case isa.PUSH:
		f.push(value.Int(int64(instr.A)))
		return nil

	case isa.POP:
		_, err := f.pop()
		return err

	case isa.DUP:
		v, err := f.peek()
		if err != nil {
			return err
		}

		f.push(v)

		return nil

	case isa.COPY:
		if instr.A < 0 || int(instr.A) >= len(f.stack) {
			return f.runtimeErrorf("copy: depth %d out of range", instr.A)
		}

		f.push(f.stack[len(f.stack)-1-int(instr.A)])

		return nil

	case isa.SWAP:
		if len(f.stack) < 2 {
			return f.runtimeErrorf("swap: stack underflow")
		}

		n := len(f.stack)
		f.stack[n-1], f.stack[n-2] = f.stack[n-2], f.stack[n-1]

		return nil

	case isa.ADD:
		return f.binary(value.ProtoAdd, f.add)
	case isa.SUB:
		return f.binary(value.ProtoSub, f.sub)
	case isa.MUL:
		return f.binary(value.ProtoMul, f.mul)
	case isa.DIV:
		return f.binary(value.ProtoDiv, f.div)
	case isa.REM:
		return f.binary(value.ProtoRem, f.rem)
	case isa.EQ:
		return f.binary(value.ProtoEq, eqPrim)
	case isa.NEQ:
		if err := f.binary(value.ProtoEq, eqPrim); err != nil {
			return err
		}

		return f.not()
	case isa.CMP:
		return f.binary(value.ProtoCmp, cmpPrim)
	case isa.NEG:
		return f.neg()
	case isa.NOT:
		return f.not()

	case isa.BUILDTUPLE:
		return f.buildTuple(instr.A)
	case isa.BUILDVECTOR:
		return f.buildVector(instr.A)
	case isa.BUILDOBJECT:
		return f.buildObject(instr.A)
	case isa.BUILDSTRUCT:
		return f.buildStruct(instr.A, instr.B)
	case isa.BUILDVARIANT:
		return f.buildVariant(instr.A, instr.B, instr.C)
	case isa.BUILDRANGE:
		return f.buildRange(instr.A)

	case isa.LOADLOCAL:
		v, err := f.readLocal(instr.A)
		if err != nil {
			return err
		}

		f.push(v)

		return nil

	case isa.STORELOCAL:
		v, err := f.pop()
		if err != nil {
			return err
		}

		return f.writeLocal(instr.A, v)

	case isa.LOADFIELD:
		recv, err := f.pop()
		if err != nil {
			return err
		}

		name, err := f.name(instr.A)
		if err != nil {
			return err
		}

		v, err := f.loadField(recv, name)
		if err != nil {
			return err
		}

		f.push(v)

		return nil

	case isa.STOREFIELD:
		v, err := f.pop()
		if err != nil {
			return err
		}

		recv, err := f.pop()
		if err != nil {
			return err
		}

		name, err := f.name(instr.A)
		if err != nil {
			return err
		}

		return f.storeField(recv, name, v)

	case isa.LOADINDEX:
		idx, err := f.pop()
		if err != nil {
			return err
		}

		coll, err := f.pop()
		if err != nil {
			return err
		}

		v, err := f.loadIndex(coll, idx)
		if err != nil {
			return err
		}

		f.push(v)

		return nil

	case isa.STOREINDEX:
		v, err := f.pop()
		if err != nil {
			return err
		}

		idx, err := f.pop()
		if err != nil {
			return err
		}

		coll, err := f.pop()
		if err != nil {
			return err
		}

		return f.storeIndex(coll, idx, v)

	case isa.LOADCONST:
		if instr.A < 0 || int(instr.A) >= len(f.m.unit.Constants) {
			return f.runtimeErrorf("loadconst: index %d out of range", instr.A)
		}

		f.push(f.m.unit.Constants[instr.A])

		return nil

	case isa.LOADITEM:
		return f.loadItem(instr.A)

	case isa.ITERFROM:
		v, err := f.pop()
		if err != nil {
			return err
		}

		it, err := f.intoIter(v)
		if err != nil {
			return err
		}

		f.push(it)

		return nil

	case isa.ITERNEXT:
		v, err := f.pop()
		if err != nil {
			return err
		}

		next, err := f.iterNext(v)
		if err != nil {
			return err
		}

		f.push(next)

		return nil

	case isa.CAPTURE:
		return f.capture(instr.A)

	case isa.MAKECLOSURE:
		return f.makeClosure(instr.A, instr.B)

	case isa.CALL:
		return f.call(instr.A, instr.B)

	case isa.CALLNATIVE:
		return f.callNative(instr.A, instr.B)

	case isa.PANIC:
		v, err := f.pop()
		if err != nil {
			return err
		}

		return f.runtimeErrorf("panic: %v", v)

	default:
		return f.runtimeErrorf("unimplemented opcode %v", instr.Op)
	}
}

func (f *Frame) name(idx int32) (string, error) {
	if idx < 0 || int(idx) >= len(f.m.unit.Names) {
		return "", f.runtimeErrorf("name index %d out of range", idx)
	}

	return f.m.unit.Names[idx], nil
}
