package value

import "math"

// pairKey identifies a pair of composite identities visited during a recursive
// structural comparison, guarding against the cycles spec.md §3 allows ("Cycles
// through mutable composites are possible").
type pairKey struct{ a, b uintptr }

// Equal implements the built-in structural equality fallback used when no `eq`
// protocol is registered for the value's type (spec.md §4.6, §8 invariant 4).
// Protocol-aware callers (the VM's EQ instruction) should check the protocol
// table first and fall back to Equal only for primitives or un-overridden types.
func Equal(a, b Value) bool {
	return equal(a, b, make(map[pairKey]bool))
}

func equal(a, b Value, seen map[pairKey]bool) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindUnit:
		return true
	case KindBool, KindInt, KindChar, KindByte:
		return a.bits == b.bits
	case KindFloat:
		af, bf := a.Float(), b.Float()
		if math.IsNaN(af) || math.IsNaN(bf) {
			return false
		}

		return af == bf
	case KindString:
		return a.Str() == b.Str()
	case KindBytes:
		ab, bb := a.ByteSlice(), b.ByteSlice()
		if len(ab) != len(bb) {
			return false
		}

		for i := range ab {
			if ab[i] != bb[i] {
				return false
			}
		}

		return true
	case KindRange:
		ar, br := a.Range(), b.Range()
		return *ar == *br
	case KindVector:
		return equalIdentity(a, b, seen, func() bool {
			av, bv := a.Vector(), b.Vector()
			if len(av.Elems) != len(bv.Elems) {
				return false
			}

			for i := range av.Elems {
				if !equal(av.Elems[i], bv.Elems[i], seen) {
					return false
				}
			}

			return true
		})
	case KindTuple:
		return equalIdentity(a, b, seen, func() bool {
			at, bt := a.Tuple(), b.Tuple()
			if len(at.Elems) != len(bt.Elems) {
				return false
			}

			for i := range at.Elems {
				if !equal(at.Elems[i], bt.Elems[i], seen) {
					return false
				}
			}

			return true
		})
	case KindObject:
		return equalIdentity(a, b, seen, func() bool {
			ao, bo := a.Object(), b.Object()
			if len(ao.order) != len(bo.order) {
				return false
			}

			for _, k := range ao.order {
				av, ok := ao.Get(k)
				if !ok {
					return false
				}

				bv, ok := bo.Get(k)
				if !ok || !equal(av, bv, seen) {
					return false
				}
			}

			return true
		})
	case KindMap:
		return equalIdentity(a, b, seen, func() bool {
			am, bm := a.Map(), b.Map()
			if am.Len() != bm.Len() {
				return false
			}

			eq := true
			am.table.Iter(func(k, v Value) bool {
				bv, ok := bm.Get(k)
				if !ok || !equal(v, bv, seen) {
					eq = false
					return false
				}

				return true
			})

			return eq
		})
	case KindStruct:
		return equalIdentity(a, b, seen, func() bool {
			as, bs := a.Struct(), b.Struct()
			if as.Type != bs.Type || len(as.Fields) != len(bs.Fields) {
				return false
			}

			for k, v := range as.Fields {
				bv, ok := bs.Fields[k]
				if !ok || !equal(v, bv, seen) {
					return false
				}
			}

			return true
		})
	case KindVariant:
		return equalIdentity(a, b, seen, func() bool {
			av, bv := a.Variant(), b.Variant()
			if av.Type != bv.Type || av.Discriminant != bv.Discriminant {
				return false
			}

			if len(av.Payload) != len(bv.Payload) {
				return false
			}

			for i := range av.Payload {
				if !equal(av.Payload[i], bv.Payload[i], seen) {
					return false
				}
			}

			return true
		})
	default:
		// Functions, iterators, futures, generators, streams, and opaque host
		// values compare by identity only.
		aid, aok := a.Identity()
		bid, bok := b.Identity()

		return aok && bok && aid == bid
	}
}

func equalIdentity(a, b Value, seen map[pairKey]bool, rec func() bool) bool {
	aid, _ := a.Identity()
	bid, _ := b.Identity()

	if aid == bid {
		return true
	}

	key := pairKey{aid, bid}
	if seen[key] {
		// Already comparing this pair somewhere up the call stack: assume
		// equal so cyclic structures terminate rather than recursing forever.
		return true
	}

	seen[key] = true

	return rec()
}

// Compare implements the `cmp` fallback for primitives that have a natural
// ordering. It returns -1, 0, or 1, or ok=false if the kinds are incomparable.
func Compare(a, b Value) (n int, ok bool) {
	if a.kind != b.kind {
		return 0, false
	}

	switch a.kind {
	case KindInt:
		switch {
		case a.Int() < b.Int():
			return -1, true
		case a.Int() > b.Int():
			return 1, true
		default:
			return 0, true
		}
	case KindFloat:
		af, bf := a.Float(), b.Float()
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		case af == bf:
			return 0, true
		default:
			return 0, false // NaN
		}
	case KindString:
		switch {
		case a.Str() < b.Str():
			return -1, true
		case a.Str() > b.Str():
			return 1, true
		default:
			return 0, true
		}
	case KindChar:
		switch {
		case a.Char() < b.Char():
			return -1, true
		case a.Char() > b.Char():
			return 1, true
		default:
			return 0, true
		}
	case KindByte:
		switch {
		case a.Byte() < b.Byte():
			return -1, true
		case a.Byte() > b.Byte():
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}
