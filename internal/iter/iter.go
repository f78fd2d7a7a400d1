// Package iter implements value.Iterator over wisp's built-in iterable kinds
// (ranges, vectors, maps) and the small set of lazy adapters the standard
// library's iterator combinators need (spec.md §4.7 "Iterator protocol").
// Grounded on the teacher's device-driver style of small, single-purpose
// types each satisfying one narrow interface (internal/vm/devices.go), here
// applied to value.Iterator instead of the memory-mapped I/O interface.
package iter

import "github.com/wisp-lang/wisp/internal/value"

// rangeIter walks an integer or character Range one step at a time.
type rangeIter struct {
	r    *value.Range
	done bool
}

func (it *rangeIter) Next() value.Value {
	if it.done {
		return value.None()
	}

	switch it.r.Kind {
	case value.RangeIntExclusive, value.RangeIntInclusive:
		if !it.r.Contains(it.r.StartI) {
			it.done = true
			return value.None()
		}

		cur := it.r.StartI
		it.r.StartI++

		return value.Some(value.Int(cur))
	case value.RangeCharExclusive, value.RangeCharInclusive:
		cur := it.r.StartC
		atEnd := cur > it.r.EndC || (it.r.Kind == value.RangeCharExclusive && cur >= it.r.EndC)

		if atEnd {
			it.done = true
			return value.None()
		}

		it.r.StartC++

		return value.Some(value.Char(cur))
	default:
		it.done = true
		return value.None()
	}
}

// vectorIter walks a Vector's elements by index, so the source vector may
// grow (but not shrink below the current index) without invalidating it.
type vectorIter struct {
	vec *value.Vector
	i   int
}

func (it *vectorIter) Next() value.Value {
	v, ok := it.vec.Get(it.i)
	if !ok {
		return value.None()
	}

	it.i++

	return value.Some(v)
}

// mapIter walks a Map's key/value pairs in insertion order, yielding each as
// a two-element Tuple.
type mapIter struct {
	m    *value.Map
	keys []value.Value
	i    int
}

func (it *mapIter) Next() value.Value {
	if it.i >= len(it.keys) {
		return value.None()
	}

	k := it.keys[it.i]
	it.i++

	v, ok := it.m.Get(k)
	if !ok {
		return it.Next()
	}

	return value.Some(value.NewTuple(k, v))
}

// sliceIter adapts a pre-computed slice of values (used by From).
type sliceIter struct {
	elems []value.Value
	i     int
}

func (it *sliceIter) Next() value.Value {
	if it.i >= len(it.elems) {
		return value.None()
	}

	v := it.elems[it.i]
	it.i++

	return value.Some(v)
}

// From wraps a plain slice of values as an iterator, used by list/vector
// literals and by adapters that produce a fully materialized intermediate.
func From(elems []value.Value) value.Value {
	return value.NewIterator(&sliceIter{elems: append([]value.Value(nil), elems...)})
}

// IntoIter converts v into an iterator value, the built-in fallback for the
// `into_iter` protocol (spec.md §4.6): ranges, vectors, maps, and values that
// are already iterators convert directly; everything else is an error, since
// the VM tries protocol dispatch before falling back to IntoIter.
func IntoIter(v value.Value) (value.Value, bool) {
	switch v.Kind() {
	case value.KindIterator:
		return v, true
	case value.KindRange:
		r := *v.Range()
		return value.NewIterator(&rangeIter{r: &r}), true
	case value.KindVector:
		return value.NewIterator(&vectorIter{vec: v.Vector()}), true
	case value.KindMap:
		m := v.Map()
		return value.NewIterator(&mapIter{m: m, keys: m.Keys()}), true
	default:
		return value.Value{}, false
	}
}

// Map lazily applies fn to each element an upstream iterator produces.
type Map struct {
	Upstream value.Iterator
	Fn       func(value.Value) (value.Value, error)
	err      error
}

func (m *Map) Next() value.Value {
	if m.err != nil {
		return value.None()
	}

	next := m.Upstream.Next()
	if value.IsErr(next) {
		return value.None()
	}

	out, err := m.Fn(next.Variant().Payload[0])
	if err != nil {
		m.err = err
		return value.None()
	}

	return value.Some(out)
}

// Filter lazily skips elements for which pred returns false.
type Filter struct {
	Upstream value.Iterator
	Pred     func(value.Value) (bool, error)
	err      error
}

func (f *Filter) Next() value.Value {
	for {
		if f.err != nil {
			return value.None()
		}

		next := f.Upstream.Next()
		if value.IsErr(next) {
			return value.None()
		}

		elem := next.Variant().Payload[0]

		ok, err := f.Pred(elem)
		if err != nil {
			f.err = err
			return value.None()
		}

		if ok {
			return value.Some(elem)
		}
	}
}

// Take limits an upstream iterator to at most N elements.
type Take struct {
	Upstream value.Iterator
	N        int
	taken    int
}

func (t *Take) Next() value.Value {
	if t.taken >= t.N {
		return value.None()
	}

	t.taken++

	return t.Upstream.Next()
}

// Enumerate pairs each upstream element with its zero-based index.
type Enumerate struct {
	Upstream value.Iterator
	i        int64
}

func (e *Enumerate) Next() value.Value {
	next := e.Upstream.Next()
	if value.IsErr(next) {
		return value.None()
	}

	elem := next.Variant().Payload[0]
	idx := e.i
	e.i++

	return value.Some(value.NewTuple(value.Int(idx), elem))
}

// Zip pairs elements from two upstream iterators, stopping at the shorter.
type Zip struct {
	A, B value.Iterator
}

func (z *Zip) Next() value.Value {
	a := z.A.Next()
	if value.IsErr(a) {
		return value.None()
	}

	b := z.B.Next()
	if value.IsErr(b) {
		return value.None()
	}

	return value.Some(value.NewTuple(a.Variant().Payload[0], b.Variant().Payload[0]))
}

// Collect drains an iterator into a Vector, the implementation behind the
// standard library's `collect` (spec.md §7).
func Collect(it value.Iterator) value.Value {
	vec := value.NewVector()
	v := vec.Vector()

	for {
		next := it.Next()
		if value.IsErr(next) {
			return vec
		}

		v.Push(next.Variant().Payload[0])
	}
}
