// Package value implements the uniform dynamic value representation shared between
// the compiler's constant pool and the virtual machine: the tagged Value sum from
// spec.md §3, reference-counted mutable composites, and the protocol table that
// backs operator/iteration/field dispatch (spec.md §4.6, §9).
package value

import (
	"fmt"
	"math"
)

// Kind tags the variant carried by a Value.
type Kind uint8

//go:generate go run golang.org/x/tools/cmd/stringer -type Kind -output kind_string.go

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindFloat
	KindChar
	KindByte
	KindBytes
	KindString
	KindRange
	KindVector
	KindMap
	KindObject
	KindTuple
	KindStruct
	KindVariant
	KindFuture
	KindGenerator
	KindStream
	KindFunction
	KindIterator
	KindOpaque
)

// Value is a tagged dynamic value. Scalar primitives (spec.md §3 "Primitives")
// are stored inline in bits; strings, byte strings and ranges ("Immutable-size
// composite primitives") and mutable composites are stored as a pointer in
// ptr, so copying a Value copies the
// reference, matching the spec's "shared, reference-semantic" requirement.
type Value struct {
	kind Kind
	bits uint64 // int64 / float64 bits / rune / byte / bool, depending on kind
	ptr  any    // *string, *[]byte, *Range, or a mutable composite pointer
}

// Unit is the single value of the empty-tuple type.
var Unit = Value{kind: KindUnit}

func Bool(b bool) Value {
	var bits uint64
	if b {
		bits = 1
	}

	return Value{kind: KindBool, bits: bits}
}

func Int(i int64) Value    { return Value{kind: KindInt, bits: uint64(i)} }
func Float(f float64) Value { return Value{kind: KindFloat, bits: math.Float64bits(f)} }
func Char(r rune) Value    { return Value{kind: KindChar, bits: uint64(r)} }
func Byte(b byte) Value    { return Value{kind: KindByte, bits: uint64(b)} }

func String(s string) Value { return Value{kind: KindString, ptr: &s} }
func Bytes(b []byte) Value  { cp := append([]byte(nil), b...); return Value{kind: KindBytes, ptr: &cp} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsUnit() bool { return v.kind == KindUnit }

func (v Value) Bool() bool { return v.bits != 0 }

func (v Value) Int() int64 { return int64(v.bits) }

func (v Value) Float() float64 { return math.Float64frombits(v.bits) }

func (v Value) Char() rune { return rune(v.bits) }

func (v Value) Byte() byte { return byte(v.bits) }

func (v Value) Str() string {
	if s, ok := v.ptr.(*string); ok {
		return *s
	}

	return ""
}

func (v Value) ByteSlice() []byte {
	if b, ok := v.ptr.(*[]byte); ok {
		return *b
	}

	return nil
}

// Truthy implements the rules used by conditional jumps and "if"/"while": Unit and
// boolean false are falsy, every other value (including 0 and "") is truthy. This
// matches the language's expression-oriented control flow, where any value may sit
// in condition position after protocol coercion.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindUnit:
		return false
	case KindBool:
		return v.Bool()
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindUnit:
		return "()"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case KindInt:
		return fmt.Sprintf("%d", v.Int())
	case KindFloat:
		return fmt.Sprintf("%g", v.Float())
	case KindChar:
		return fmt.Sprintf("%q", v.Char())
	case KindByte:
		return fmt.Sprintf("b'%02x'", v.Byte())
	case KindString:
		return fmt.Sprintf("%q", v.Str())
	case KindBytes:
		return fmt.Sprintf("b%q", v.ByteSlice())
	default:
		if s, ok := v.ptr.(fmt.Stringer); ok {
			return s.String()
		}

		return fmt.Sprintf("<%v>", v.kind)
	}
}

// Identity returns a stable address for mutable composites, used by protocol hooks
// that need to observe reference identity (spec.md §3: "Equality on mutable
// composites is structural; identity is observable only through protocol hooks").
func (v Value) Identity() (uintptr, bool) {
	id, ok := v.ptr.(identifiable)
	if !ok {
		return 0, false
	}

	return id.identity(), true
}

type identifiable interface {
	identity() uintptr
}
