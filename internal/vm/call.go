package vm

import (
	"github.com/wisp-lang/wisp/internal/value"
)

func (f *Frame) capture(src int32) error {
	v, err := f.readLocal(src)
	if err != nil {
		return err
	}

	cell := &value.Cell{Value: v}
	f.push(value.NewOpaque(cell))

	return nil
}

func (f *Frame) makeClosure(offset, numCaptures int32) error {
	raw, err := f.popN(numCaptures)
	if err != nil {
		return err
	}

	captures := make([]*value.Cell, len(raw))

	for i, rv := range raw {
		cell, ok := rv.Opaque().Host.(*value.Cell)
		if !ok {
			return f.runtimeErrorf("makeclosure: malformed capture operand")
		}

		captures[i] = cell
	}

	meta, ok := f.m.funcByOffset[offset]
	if !ok {
		return f.runtimeErrorf("makeclosure: no function at offset %d", offset)
	}

	f.push(value.NewClosure(uintptr(offset), meta.Name, captures))

	return nil
}

func (f *Frame) loadItem(offset int32) error {
	meta, ok := f.m.funcByOffset[offset]
	if !ok {
		return f.runtimeErrorf("loaditem: no function at offset %d", offset)
	}

	f.push(value.NewClosure(uintptr(offset), meta.Name, nil))

	return nil
}

func (f *Frame) call(offset, numArgs int32) error {
	args, err := f.popN(numArgs)
	if err != nil {
		return err
	}

	result, err := f.m.callByOffset(offset, nil, args)
	if err != nil {
		return err
	}

	f.push(result)

	return nil
}

// callNative implements CALLNATIVE, which covers two call shapes depending on
// nameIdx: a dynamic call through a first-class function value (nameIdx ==
// -1, callee already on the stack below its args) or a method call dispatched
// by name against the receiver's type (nameIdx >= 0, receiver is the first of
// the count values popped).
func (f *Frame) callNative(nameIdx, count int32) error {
	if nameIdx < 0 {
		args, err := f.popN(count)
		if err != nil {
			return err
		}

		callee, err := f.pop()
		if err != nil {
			return err
		}

		result, err := f.m.callValue(callee, args)
		if err != nil {
			return err
		}

		f.push(result)

		return nil
	}

	all, err := f.popN(count)
	if err != nil {
		return err
	}

	if len(all) == 0 {
		return f.runtimeErrorf("callnative: method call with no receiver")
	}

	if int(nameIdx) >= len(f.m.unit.Names) {
		return f.runtimeErrorf("callnative: name index %d out of range", nameIdx)
	}

	name := f.m.unit.Names[nameIdx]

	result, err := f.m.callMethod(all[0], name, all)
	if err != nil {
		return err
	}

	f.push(result)

	return nil
}

// callMethod resolves a method by name against recv's type, first through
// the unit's declared impl blocks (Methods), then a small set of built-in
// methods on the primitive/composite kinds (spec.md §7 "the standard library
// exposes a handful of methods directly on built-in values"). args includes
// recv as args[0].
func (m *Machine) callMethod(recv value.Value, name string, args []value.Value) (value.Value, error) {
	if methods, ok := m.unit.Methods[recv.TypeHash()]; ok {
		if hash, ok := methods[name]; ok {
			idx, ok := m.unit.FuncByHash[hash]
			if !ok {
				return value.Value{}, errUnknownFunc(hash)
			}

			return m.invoke(m.unit.Funcs[idx], nil, args)
		}
	}

	if result, ok, err := builtinMethod(recv, name, args); ok {
		return result, err
	}

	return value.Value{}, errNoMethod(recv.Kind(), name)
}
