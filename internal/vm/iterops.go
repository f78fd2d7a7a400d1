package vm

import (
	"github.com/wisp-lang/wisp/internal/iter"
	"github.com/wisp-lang/wisp/internal/value"
)

// intoIter implements ITERFROM: a registered `into_iter` protocol handler is
// tried first, then the built-in conversions internal/iter knows about
// (ranges, vectors, maps, values that are already iterators).
func (f *Frame) intoIter(v value.Value) (value.Value, error) {
	if h, ok := f.m.protocols.Lookup(v.TypeHash(), value.ProtoIntoIter); ok {
		return h.Native([]value.Value{v})
	}

	out, ok := iter.IntoIter(v)
	if !ok {
		return value.Value{}, f.runtimeErrorf("%v is not iterable", v.Kind())
	}

	return out, nil
}

// iterNext implements ITERNEXT: a registered `next` protocol handler is tried
// first (for a struct value that wraps custom iterator state), then the
// built-in Iterator a KindIterator value carries.
func (f *Frame) iterNext(v value.Value) (value.Value, error) {
	if h, ok := f.m.protocols.Lookup(v.TypeHash(), value.ProtoNext); ok {
		return h.Native([]value.Value{v})
	}

	it := v.Iterator()
	if it == nil {
		return value.Value{}, f.runtimeErrorf("%v is not an iterator", v.Kind())
	}

	return it.Next(), nil
}
