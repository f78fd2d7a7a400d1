package value

// Iterator is implemented by every value constructed through the `into_iter`
// protocol (spec.md §4.6, §4.7). Adapters in internal/iter hold an upstream
// Iterator and their own state; a Range is iterated through the iterator
// internal/iter.IntoIter builds for it.
type Iterator interface {
	// Next returns Some(value) or None, matching the script-level protocol
	// method of the same name.
	Next() Value
}

// NewIterator wraps a Go Iterator implementation as a script-visible value.
func NewIterator(it Iterator) Value {
	return Value{kind: KindIterator, ptr: &iteratorBox{base: newBase(), it: it}}
}

type iteratorBox struct {
	base
	it Iterator
}

func (v Value) Iterator() Iterator {
	if box, ok := v.ptr.(*iteratorBox); ok {
		return box.it
	}

	return nil
}
