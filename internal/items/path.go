// Package items implements the item & type resolver: canonical paths, stable
// hash identifiers, visibility, and attribute-driven derive for host-defined types.
package items

import (
	"hash/fnv"
	"strings"
)

// Path is a canonical sequence of identifier segments rooted at a unit prefix, e.g.
// ["my_unit", "shapes", "Circle", "area"].
type Path []string

func (p Path) String() string { return strings.Join(p, "::") }

// Join returns a new path with additional segments appended.
func (p Path) Join(segs ...string) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	out = append(out, segs...)

	return out
}

// Hash is the stable 64-bit identifier derived from an item's canonical path (spec.md §3).
// Bytecode operands reference items exclusively by Hash.
type Hash uint64

func (h Hash) String() string {
	const hextable = "0123456789abcdef"

	buf := make([]byte, 16)
	v := uint64(h)

	for i := 15; i >= 0; i-- {
		buf[i] = hextable[v&0xf]
		v >>= 4
	}

	return "#" + string(buf)
}

// HashPath derives the stable item hash from a canonical path using FNV-1a. A
// cryptographic hash buys nothing here: paths are attacker-controlled only in the
// sense that a host compiles its own scripts, and collisions are a compile-time
// error the resolver must detect regardless of hash quality.
func HashPath(p Path) Hash {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p.String()))

	return Hash(h.Sum64())
}
