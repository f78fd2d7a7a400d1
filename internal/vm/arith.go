package vm

import (
	"github.com/wisp-lang/wisp/internal/value"
)

// binary dispatches a two-operand opcode: it checks for a registered protocol
// handler on the left operand's type first, falling back to prim only when
// none is registered (spec.md §4.6 "operators dispatch through the protocol
// table before falling back to built-in primitive behavior").
func (f *Frame) binary(proto value.Protocol, prim func(a, b value.Value) (value.Value, error)) error {
	b, err := f.pop()
	if err != nil {
		return err
	}

	a, err := f.pop()
	if err != nil {
		return err
	}

	if h, ok := f.m.protocols.Lookup(a.TypeHash(), proto); ok {
		result, err := h.Native([]value.Value{a, b})
		if err != nil {
			return f.runtimeErrorf("%s: %v", proto, err)
		}

		f.push(result)

		return nil
	}

	result, err := prim(a, b)
	if err != nil {
		return f.runtimeErrorf("%v", err)
	}

	f.push(result)

	return nil
}

func (f *Frame) add(a, b value.Value) (value.Value, error) {
	switch {
	case a.Kind() == value.KindInt && b.Kind() == value.KindInt:
		return value.Int(a.Int() + b.Int()), nil
	case a.Kind() == value.KindFloat && b.Kind() == value.KindFloat:
		return value.Float(a.Float() + b.Float()), nil
	case a.Kind() == value.KindString && b.Kind() == value.KindString:
		return value.String(a.Str() + b.Str()), nil
	default:
		return value.Value{}, errArith("add", a, b)
	}
}

func (f *Frame) sub(a, b value.Value) (value.Value, error) {
	switch {
	case a.Kind() == value.KindInt && b.Kind() == value.KindInt:
		return value.Int(a.Int() - b.Int()), nil
	case a.Kind() == value.KindFloat && b.Kind() == value.KindFloat:
		return value.Float(a.Float() - b.Float()), nil
	default:
		return value.Value{}, errArith("sub", a, b)
	}
}

func (f *Frame) mul(a, b value.Value) (value.Value, error) {
	switch {
	case a.Kind() == value.KindInt && b.Kind() == value.KindInt:
		return value.Int(a.Int() * b.Int()), nil
	case a.Kind() == value.KindFloat && b.Kind() == value.KindFloat:
		return value.Float(a.Float() * b.Float()), nil
	default:
		return value.Value{}, errArith("mul", a, b)
	}
}

func (f *Frame) div(a, b value.Value) (value.Value, error) {
	switch {
	case a.Kind() == value.KindInt && b.Kind() == value.KindInt:
		if b.Int() == 0 {
			return value.Value{}, errDivByZero
		}

		return value.Int(a.Int() / b.Int()), nil
	case a.Kind() == value.KindFloat && b.Kind() == value.KindFloat:
		return value.Float(a.Float() / b.Float()), nil
	default:
		return value.Value{}, errArith("div", a, b)
	}
}

func (f *Frame) rem(a, b value.Value) (value.Value, error) {
	switch {
	case a.Kind() == value.KindInt && b.Kind() == value.KindInt:
		if b.Int() == 0 {
			return value.Value{}, errDivByZero
		}

		return value.Int(a.Int() % b.Int()), nil
	default:
		return value.Value{}, errArith("rem", a, b)
	}
}

func eqPrim(a, b value.Value) (value.Value, error) { return value.Bool(value.Equal(a, b)), nil }

func neqPrim(a, b value.Value) (value.Value, error) { return value.Bool(!value.Equal(a, b)), nil }

func cmpPrim(a, b value.Value) (value.Value, error) {
	n, ok := value.Compare(a, b)
	if !ok {
		return value.Value{}, errArith("cmp", a, b)
	}

	return value.Int(int64(n)), nil
}

// neg and not have no protocol entry (spec.md §4.6 lists no `neg`/`not`
// override hook), so they are always primitive.
func (f *Frame) neg() error {
	a, err := f.pop()
	if err != nil {
		return err
	}

	switch a.Kind() {
	case value.KindInt:
		f.push(value.Int(-a.Int()))
	case value.KindFloat:
		f.push(value.Float(-a.Float()))
	default:
		return f.runtimeErrorf("neg: %v is not numeric", a.Kind())
	}

	return nil
}

func (f *Frame) not() error {
	a, err := f.pop()
	if err != nil {
		return err
	}

	f.push(value.Bool(!a.Truthy()))

	return nil
}
