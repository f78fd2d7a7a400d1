package items

import "fmt"

// Visibility controls whether an item is addressable from outside its defining module.
type Visibility uint8

const (
	Private Visibility = iota
	PubCrate
	Public
)

// Kind distinguishes the sort of top-level declaration an Item represents.
type Kind uint8

const (
	KindFunction Kind = iota
	KindConst
	KindStruct
	KindEnum
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "fn"
	case KindConst:
		return "const"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindModule:
		return "mod"
	default:
		return "item"
	}
}

// DeriveKind names a synthesized protocol implementation requested by
// #[derive(...)] on a struct or enum item (spec.md §1 Non-goals: "no source-level
// macro system beyond attribute-driven derive").
type DeriveKind uint8

const (
	DeriveDebug DeriveKind = iota
	DeriveClone
	DeriveDefault
)

// Item is a named top-level declaration: function, constant, type, or module.
type Item struct {
	Path       Path
	Hash       Hash
	Kind       Kind
	Visibility Visibility
	Derives    []DeriveKind

	// Fields, in declaration order, for KindStruct items.
	Fields []string
	// Variants, for KindEnum items: variant name to discriminant.
	Variants map[string]uint32
}

// Table is the flat, per-compilation set of interned items, keyed by path and hash.
// It is populated in pass 1 of the name & scope resolver (spec.md §4.3).
type Table struct {
	byPath map[string]*Item
	byHash map[Hash]*Item
}

func NewTable() *Table {
	return &Table{
		byPath: make(map[string]*Item),
		byHash: make(map[Hash]*Item),
	}
}

// Declare interns a new item, assigning its path hash. It returns an error if the
// path was already declared or if the hash collides with a different path — both
// are compile-time errors per spec.md §3 ("Hash collisions are a compile-time error").
func (t *Table) Declare(it *Item) error {
	if _, ok := t.byPath[it.Path.String()]; ok {
		return fmt.Errorf("duplicate item: %s", it.Path)
	}

	it.Hash = HashPath(it.Path)

	if existing, ok := t.byHash[it.Hash]; ok && existing.Path.String() != it.Path.String() {
		return fmt.Errorf("hash collision: %s and %s share %s", it.Path, existing.Path, it.Hash)
	}

	t.byPath[it.Path.String()] = it
	t.byHash[it.Hash] = it

	return nil
}

// Lookup finds an item by its canonical path.
func (t *Table) Lookup(p Path) (*Item, bool) {
	it, ok := t.byPath[p.String()]
	return it, ok
}

// ByHash finds an item by its stable hash, used to resolve bytecode operands.
func (t *Table) ByHash(h Hash) (*Item, bool) {
	it, ok := t.byHash[h]
	return it, ok
}

// Visible reports whether an item with the given visibility can be seen from a
// use site; sameUnit and sameCrate say whether that site shares the item's
// unit and crate.
func Visible(vis Visibility, sameUnit, sameCrate bool) bool {
	switch vis {
	case Public:
		return true
	case PubCrate:
		return sameCrate
	default:
		return sameUnit
	}
}

// All returns every declared item, primarily for diagnostics and testing.
func (t *Table) All() []*Item {
	out := make([]*Item, 0, len(t.byPath))
	for _, it := range t.byPath {
		out = append(out, it)
	}

	return out
}
