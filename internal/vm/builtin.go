package vm

import (
	"github.com/wisp-lang/wisp/internal/value"
)

// builtinMethod implements the handful of methods spec.md §7 exposes
// directly on built-in values rather than through a registered impl block:
// Vector/Map mutation and length, and Option/Result's unwrap family. It is
// the VM's last-resort fallback after a unit's own declared methods table,
// grounded in the same spirit as the teacher's device registry falling back
// to a default handler for unmapped addresses (internal/vm/devices.go).
func builtinMethod(recv value.Value, name string, args []value.Value) (value.Value, bool, error) {
	rest := args[1:]

	switch recv.Kind() {
	case value.KindVector:
		return vectorMethod(recv.Vector(), name, rest)
	case value.KindString:
		return stringMethod(recv, name, rest)
	case value.KindMap:
		return mapMethod(recv.Map(), name, rest)
	case value.KindVariant:
		return variantMethod(recv.Variant(), name, rest)
	default:
		return value.Value{}, false, nil
	}
}

func vectorMethod(vec *value.Vector, name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "push":
		if len(args) != 1 {
			return value.Value{}, true, errArgCount("push", 1, len(args))
		}

		vec.Push(args[0])

		return value.Unit, true, nil
	case "len":
		return value.Int(int64(vec.Len())), true, nil
	case "get":
		if len(args) != 1 {
			return value.Value{}, true, errArgCount("get", 1, len(args))
		}

		v, ok := vec.Get(int(args[0].Int()))
		if !ok {
			return value.None(), true, nil
		}

		return value.Some(v), true, nil
	default:
		return value.Value{}, false, nil
	}
}

func stringMethod(recv value.Value, name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "len":
		return value.Int(int64(len([]rune(recv.Str())))), true, nil
	default:
		return value.Value{}, false, nil
	}
}

func mapMethod(m *value.Map, name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "get":
		if len(args) != 1 {
			return value.Value{}, true, errArgCount("get", 1, len(args))
		}

		v, ok := m.Get(args[0])
		if !ok {
			return value.None(), true, nil
		}

		return value.Some(v), true, nil
	case "set":
		if len(args) != 2 {
			return value.Value{}, true, errArgCount("set", 2, len(args))
		}

		m.Set(args[0], args[1])

		return value.Unit, true, nil
	case "len":
		return value.Int(int64(m.Len())), true, nil
	default:
		return value.Value{}, false, nil
	}
}

// variantMethod implements Option/Result's conventional unwrap family; any
// other enum's variants have no built-in methods of their own.
func variantMethod(va *value.Variant, name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "is_some":
		return value.Bool(va.Type == value.OptionTypeHash && va.Discriminant == value.OptionSome), true, nil
	case "is_none":
		return value.Bool(va.Type == value.OptionTypeHash && va.Discriminant == value.OptionNone), true, nil
	case "is_ok":
		return value.Bool(va.Type == value.ResultTypeHash && va.Discriminant == value.ResultOk), true, nil
	case "is_err":
		return value.Bool(va.Type == value.ResultTypeHash && va.Discriminant == value.ResultErr), true, nil
	case "unwrap":
		if len(va.Payload) == 1 {
			return va.Payload[0], true, nil
		}

		return value.Value{}, true, errUnwrap(va.Name)
	case "unwrap_or":
		if len(args) != 1 {
			return value.Value{}, true, errArgCount("unwrap_or", 1, len(args))
		}

		if len(va.Payload) == 1 {
			return va.Payload[0], true, nil
		}

		return args[0], true, nil
	default:
		return value.Value{}, false, nil
	}
}
