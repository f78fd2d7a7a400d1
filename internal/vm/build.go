package vm

import (
	"math"

	"github.com/wisp-lang/wisp/internal/value"
)

func (f *Frame) buildTuple(n int32) error {
	elems, err := f.popN(n)
	if err != nil {
		return err
	}

	f.push(value.NewTuple(elems...))

	return nil
}

func (f *Frame) buildVector(n int32) error {
	elems, err := f.popN(n)
	if err != nil {
		return err
	}

	f.push(value.NewVector(elems...))

	return nil
}

// buildObject consumes n (key, value) pairs, pushed interleaved by the
// lowerer (spec.md §4.5 BUILDOBJECT), and builds an Object preserving the
// field order they were written in.
func (f *Frame) buildObject(n int32) error {
	elems, err := f.popN(n * 2)
	if err != nil {
		return err
	}

	obj := value.NewObject()
	o := obj.Object()

	for i := int32(0); i < n; i++ {
		o.Set(elems[2*i].Str(), elems[2*i+1])
	}

	f.push(obj)

	return nil
}

// buildStruct consumes numFields values, zipping them against the target
// type's declared field order (the lowerer only reorders its pushes to match
// that order when every literal field name was recognized; see
// hir.funcLower.lowerStructLit).
func (f *Frame) buildStruct(typeIdx, numFields int32) error {
	elems, err := f.popN(numFields)
	if err != nil {
		return err
	}

	if int(typeIdx) < 0 || int(typeIdx) >= len(f.m.unit.Types) {
		return f.runtimeErrorf("buildstruct: type index %d out of range", typeIdx)
	}

	t := f.m.unit.Types[typeIdx]
	fields := make(map[string]value.Value, len(elems))

	for i, v := range elems {
		if i < len(t.Fields) {
			fields[t.Fields[i]] = v
		}
	}

	f.push(value.NewStruct(t.Hash, fields))

	return nil
}

// buildVariant consumes numArgs payload values and constructs a Variant of
// the enum named at typeIdx with discriminant disc; the variant's display
// name is recovered from the type's Variants map (name -> discriminant).
func (f *Frame) buildVariant(typeIdx, disc, numArgs int32) error {
	payload, err := f.popN(numArgs)
	if err != nil {
		return err
	}

	if int(typeIdx) < 0 || int(typeIdx) >= len(f.m.unit.Types) {
		return f.runtimeErrorf("buildvariant: type index %d out of range", typeIdx)
	}

	t := f.m.unit.Types[typeIdx]
	name := ""

	for vname, vdisc := range t.Variants {
		if vdisc == uint32(disc) {
			name = vname
			break
		}
	}

	f.push(value.NewVariant(t.Hash, uint32(disc), name, payload...))

	return nil
}

// buildRange consumes [start, end] (end may be Unit, meaning open-ended;
// there is no unbounded Range representation, so an open end is widened to
// the kind's maximum value).
func (f *Frame) buildRange(flags int32) error {
	end, err := f.pop()
	if err != nil {
		return err
	}

	start, err := f.pop()
	if err != nil {
		return err
	}

	inclusive := flags&1 != 0

	switch start.Kind() {
	case value.KindInt:
		e := int64(math.MaxInt64)
		if end.Kind() == value.KindInt {
			e = end.Int()
		}

		f.push(value.NewIntRange(start.Int(), e, inclusive))
	case value.KindChar:
		e := rune(math.MaxInt32)
		if end.Kind() == value.KindChar {
			e = end.Char()
		}

		f.push(value.NewCharRange(start.Char(), e, inclusive))
	default:
		return f.runtimeErrorf("buildrange: %v is not a range bound", start.Kind())
	}

	return nil
}

func (f *Frame) loadField(recv value.Value, name string) (value.Value, error) {
	if h, ok := f.m.protocols.Lookup(recv.TypeHash(), value.ProtoGet); ok {
		return h.Native([]value.Value{recv, value.String(name)})
	}

	switch recv.Kind() {
	case value.KindStruct:
		v, ok := recv.Struct().Fields[name]
		if !ok {
			return value.Value{}, f.runtimeErrorf("no field %q on struct", name)
		}

		return v, nil
	case value.KindObject:
		v, ok := recv.Object().Get(name)
		if !ok {
			return value.Value{}, f.runtimeErrorf("no field %q on object", name)
		}

		return v, nil
	case value.KindVariant:
		return loadVariantMagicField(recv.Variant(), name)
	default:
		return value.Value{}, f.runtimeErrorf("cannot read field %q of %v", name, recv.Kind())
	}
}

// loadVariantMagicField reads the synthetic "$type"/"$tag"/"$N" fields the
// pattern-matching lowerer emits (internal/hir/expr.go testVariant), rather
// than a field a script author could ever name directly.
func loadVariantMagicField(va *value.Variant, name string) (value.Value, error) {
	switch name {
	case "$type":
		return value.Int(int64(va.Type)), nil
	case "$tag":
		return value.Int(int64(va.Discriminant)), nil
	default:
		idx, ok := magicPayloadIndex(name)
		if !ok || idx >= len(va.Payload) {
			return value.Value{}, errBadMagicField(name)
		}

		return va.Payload[idx], nil
	}
}

func magicPayloadIndex(name string) (int, bool) {
	if len(name) < 2 || name[0] != '$' {
		return 0, false
	}

	n := 0

	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}

		n = n*10 + int(c-'0')
	}

	return n, true
}

func (f *Frame) storeField(recv value.Value, name string, v value.Value) error {
	if h, ok := f.m.protocols.Lookup(recv.TypeHash(), value.ProtoSet); ok {
		_, err := h.Native([]value.Value{recv, value.String(name), v})
		return err
	}

	b := recv.Borrow()
	if b != nil {
		if err := b.AcquireExclusive("storefield"); err != nil {
			return f.runtimeErrorf("%v", err)
		}

		defer b.ReleaseExclusive()
	}

	switch recv.Kind() {
	case value.KindStruct:
		recv.Struct().Fields[name] = v
		return nil
	case value.KindObject:
		recv.Object().Set(name, v)
		return nil
	default:
		return f.runtimeErrorf("cannot write field %q of %v", name, recv.Kind())
	}
}

func (f *Frame) loadIndex(coll, idx value.Value) (value.Value, error) {
	if h, ok := f.m.protocols.Lookup(coll.TypeHash(), value.ProtoIndexGet); ok {
		return h.Native([]value.Value{coll, idx})
	}

	switch coll.Kind() {
	case value.KindVector:
		v, ok := coll.Vector().Get(int(idx.Int()))
		if !ok {
			return value.Value{}, f.runtimeErrorf("index %d out of range", idx.Int())
		}

		return v, nil
	case value.KindTuple:
		elems := coll.Tuple().Elems
		i := int(idx.Int())

		if i < 0 || i >= len(elems) {
			return value.Value{}, f.runtimeErrorf("index %d out of range", i)
		}

		return elems[i], nil
	case value.KindMap:
		v, ok := coll.Map().Get(idx)
		if !ok {
			return value.Value{}, f.runtimeErrorf("key not found in map")
		}

		return v, nil
	case value.KindObject:
		v, ok := coll.Object().Get(idx.Str())
		if !ok {
			return value.Value{}, f.runtimeErrorf("no field %q on object", idx.Str())
		}

		return v, nil
	case value.KindString:
		r := []rune(coll.Str())
		i := int(idx.Int())

		if i < 0 || i >= len(r) {
			return value.Value{}, f.runtimeErrorf("index %d out of range", i)
		}

		return value.Char(r[i]), nil
	default:
		return value.Value{}, f.runtimeErrorf("cannot index %v", coll.Kind())
	}
}

func (f *Frame) storeIndex(coll, idx, v value.Value) error {
	if h, ok := f.m.protocols.Lookup(coll.TypeHash(), value.ProtoIndexSet); ok {
		_, err := h.Native([]value.Value{coll, idx, v})
		return err
	}

	b := coll.Borrow()
	if b != nil {
		if err := b.AcquireExclusive("storeindex"); err != nil {
			return f.runtimeErrorf("%v", err)
		}

		defer b.ReleaseExclusive()
	}

	switch coll.Kind() {
	case value.KindVector:
		if !coll.Vector().Set(int(idx.Int()), v) {
			return f.runtimeErrorf("index %d out of range", idx.Int())
		}

		return nil
	case value.KindMap:
		coll.Map().Set(idx, v)
		return nil
	case value.KindObject:
		coll.Object().Set(idx.Str(), v)
		return nil
	default:
		return f.runtimeErrorf("cannot index-assign %v", coll.Kind())
	}
}
