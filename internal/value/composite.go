package value

import (
	"sync/atomic"

	"github.com/dolthub/swiss"

	"github.com/wisp-lang/wisp/internal/items"
)

var nextID atomic.Uint64

func newID() uintptr {
	return uintptr(nextID.Add(1))
}

// base is embedded by every mutable composite. It carries the stable runtime
// identity (spec.md §3) and the borrow counter that enforces the mutation
// discipline from spec.md §5.
type base struct {
	id     uintptr
	borrow BorrowState
}

func newBase() base { return base{id: newID()} }

func (b *base) identity() uintptr { return b.id }

// Reserved type hashes for built-in composite kinds, used as the protocol-dispatch
// key when no user type registers an override (spec.md §9 "Protocol dispatch").
var (
	VectorTypeHash = items.HashPath(items.Path{"$builtin", "Vec"})
	MapTypeHash    = items.HashPath(items.Path{"$builtin", "Map"})
	ObjectTypeHash = items.HashPath(items.Path{"$builtin", "Object"})
	RangeTypeHash  = items.HashPath(items.Path{"$builtin", "Range"})
)

// Vector is a growable, ordered, mutable sequence of values.
type Vector struct {
	base
	Elems []Value
}

func NewVector(elems ...Value) Value {
	v := &Vector{base: newBase(), Elems: append([]Value(nil), elems...)}
	return Value{kind: KindVector, ptr: v}
}

func (v Value) Vector() *Vector { p, _ := v.ptr.(*Vector); return p }

func (vec *Vector) Push(v Value)  { vec.Elems = append(vec.Elems, v) }
func (vec *Vector) Len() int      { return len(vec.Elems) }
func (vec *Vector) Get(i int) (Value, bool) {
	if i < 0 || i >= len(vec.Elems) {
		return Value{}, false
	}

	return vec.Elems[i], true
}

func (vec *Vector) Set(i int, v Value) bool {
	if i < 0 || i >= len(vec.Elems) {
		return false
	}

	vec.Elems[i] = v

	return true
}

// Map is an ordered map from Value to Value, backed by a Swiss table for O(1)
// average lookup (spec.md §3 "ordered map ... keys hashable"). Insertion order is
// tracked separately in keys so iteration and Debug formatting are deterministic.
type Map struct {
	base
	table *swiss.Map[Value, Value]
	keys  []Value
}

func NewMap() Value {
	m := &Map{base: newBase(), table: swiss.NewMap[Value, Value](8)}
	return Value{kind: KindMap, ptr: m}
}

func (v Value) Map() *Map { p, _ := v.ptr.(*Map); return p }

func (m *Map) Get(k Value) (Value, bool) { return m.table.Get(k) }

func (m *Map) Set(k, v Value) {
	if !m.table.Has(k) {
		m.keys = append(m.keys, k)
	}

	m.table.Put(k, v)
}

func (m *Map) Delete(k Value) bool {
	if !m.table.Has(k) {
		return false
	}

	m.table.Delete(k)

	for i, kk := range m.keys {
		if Equal(kk, k) {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}

	return true
}

func (m *Map) Len() int { return m.table.Count() }

// Keys returns keys in insertion order.
func (m *Map) Keys() []Value { return append([]Value(nil), m.keys...) }

// Object is a map from field name to value that preserves insertion order
// (spec.md §3 "object with named string fields preserving insertion order").
type Object struct {
	base
	order  []string
	fields map[string]Value
}

func NewObject() Value {
	o := &Object{base: newBase(), fields: make(map[string]Value)}
	return Value{kind: KindObject, ptr: o}
}

func (v Value) Object() *Object { p, _ := v.ptr.(*Object); return p }

func (o *Object) Get(name string) (Value, bool) { v, ok := o.fields[name]; return v, ok }

func (o *Object) Set(name string, v Value) {
	if _, ok := o.fields[name]; !ok {
		o.order = append(o.order, name)
	}

	o.fields[name] = v
}

func (o *Object) Fields() []string { return append([]string(nil), o.order...) }

// Tuple is a fixed-arity, immutable-length (but element-mutable in place only via
// index-store) sequence.
type Tuple struct {
	base
	Elems []Value
}

func NewTuple(elems ...Value) Value {
	t := &Tuple{base: newBase(), Elems: append([]Value(nil), elems...)}
	return Value{kind: KindTuple, ptr: t}
}

func (v Value) Tuple() *Tuple { p, _ := v.ptr.(*Tuple); return p }

// Struct is an instance of a registered type with named fields (spec.md §3).
type Struct struct {
	base
	Type   items.Hash
	Fields map[string]Value
}

func NewStruct(typ items.Hash, fields map[string]Value) Value {
	s := &Struct{base: newBase(), Type: typ, Fields: fields}
	return Value{kind: KindStruct, ptr: s}
}

func (v Value) Struct() *Struct { p, _ := v.ptr.(*Struct); return p }

// Variant is an instance of a registered enum-like type: a discriminant and payload.
// Result::Ok/Err and Option::Some/None are ordinary Variants of well-known enum
// types, not a distinct Value kind (spec.md §3).
type Variant struct {
	base
	Type        items.Hash
	Discriminant uint32
	Name        string
	Payload     []Value
}

func NewVariant(typ items.Hash, disc uint32, name string, payload ...Value) Value {
	va := &Variant{base: newBase(), Type: typ, Discriminant: disc, Name: name, Payload: payload}
	return Value{kind: KindVariant, ptr: va}
}

func (v Value) Variant() *Variant { p, _ := v.ptr.(*Variant); return p }

// Well-known Result/Option enum type hashes and discriminants, registered by
// every compilation (spec.md §3: "these are ordinary registered enums").
var (
	ResultTypeHash = items.HashPath(items.Path{"std", "Result"})
	OptionTypeHash = items.HashPath(items.Path{"std", "Option"})
)

const (
	ResultOk  uint32 = 0
	ResultErr uint32 = 1
	OptionSome uint32 = 0
	OptionNone uint32 = 1
)

func Ok(v Value) Value  { return NewVariant(ResultTypeHash, ResultOk, "Ok", v) }
func Err(v Value) Value { return NewVariant(ResultTypeHash, ResultErr, "Err", v) }
func Some(v Value) Value { return NewVariant(OptionTypeHash, OptionSome, "Some", v) }
func None() Value        { return NewVariant(OptionTypeHash, OptionNone, "None") }

// IsErr reports whether v is a Result::Err or Option::None, the two cases the `?`
// operator propagates (spec.md §4.4).
func IsErr(v Value) bool {
	if v.kind != KindVariant {
		return false
	}

	va := v.Variant()

	return (va.Type == ResultTypeHash && va.Discriminant == ResultErr) ||
		(va.Type == OptionTypeHash && va.Discriminant == OptionNone)
}

// Opaque wraps a host-provided value that scripts hold but do not interpret.
type Opaque struct {
	base
	Host any
}

func NewOpaque(host any) Value {
	o := &Opaque{base: newBase(), Host: host}
	return Value{kind: KindOpaque, ptr: o}
}

func (v Value) Opaque() *Opaque { p, _ := v.ptr.(*Opaque); return p }
