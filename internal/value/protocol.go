package value

import "github.com/wisp-lang/wisp/internal/items"

// Protocol names one of the overloadable operations from spec.md §4.6. Rather
// than a virtual method table per type, each registered type hash has an
// associative table of protocol -> host function pointer, populated at module
// registration time (spec.md §9 "Protocol dispatch").
type Protocol string

const (
	ProtoAdd       Protocol = "add"
	ProtoSub       Protocol = "sub"
	ProtoMul       Protocol = "mul"
	ProtoDiv       Protocol = "div"
	ProtoRem       Protocol = "rem"
	ProtoEq        Protocol = "eq"
	ProtoCmp       Protocol = "cmp"
	ProtoHash      Protocol = "hash"
	ProtoIntoIter  Protocol = "into_iter"
	ProtoNext      Protocol = "next"
	ProtoIndexGet  Protocol = "index_get"
	ProtoIndexSet  Protocol = "index_set"
	ProtoGet       Protocol = "get"
	ProtoSet       Protocol = "set"
	ProtoDisplayFmt Protocol = "display_fmt"
	ProtoDebugFmt  Protocol = "debug_fmt"
	ProtoClone     Protocol = "clone"
	ProtoDrop      Protocol = "drop"
)

// Handler is a registered protocol implementation, either a script function
// (resolved later by the VM via its Hash) or a host-native callback.
type Handler struct {
	Native NativeFunc
}

// Protocols is the per-VM-instance protocol table, keyed by the type's item hash
// and then by protocol name (spec.md §9 "Global state: the module registry is
// per-VM-instance, not process-wide").
type Protocols struct {
	byType map[items.Hash]map[Protocol]Handler
}

func NewProtocols() *Protocols {
	return &Protocols{byType: make(map[items.Hash]map[Protocol]Handler)}
}

// Register installs a protocol handler for a type.
func (p *Protocols) Register(typ items.Hash, proto Protocol, h Handler) {
	m, ok := p.byType[typ]
	if !ok {
		m = make(map[Protocol]Handler)
		p.byType[typ] = m
	}

	m[proto] = h
}

// Lookup finds a registered handler, if any, for the given type and protocol.
func (p *Protocols) Lookup(typ items.Hash, proto Protocol) (Handler, bool) {
	m, ok := p.byType[typ]
	if !ok {
		return Handler{}, false
	}

	h, ok := m[proto]

	return h, ok
}

// TypeHash returns the protocol-dispatch key for a value: its registered struct
// or enum type for KindStruct/KindVariant, or a reserved built-in hash for every
// other kind, so the VM can look up protocol overrides uniformly (spec.md §4.6
// "the VM first checks for a registered protocol method on the value's type hash").
func (v Value) TypeHash() items.Hash {
	switch v.kind {
	case KindStruct:
		return v.Struct().Type
	case KindVariant:
		return v.Variant().Type
	case KindVector:
		return VectorTypeHash
	case KindMap:
		return MapTypeHash
	case KindObject:
		return ObjectTypeHash
	case KindRange:
		return RangeTypeHash
	default:
		return items.HashPath(items.Path{"$builtin", v.kind.String()})
	}
}
