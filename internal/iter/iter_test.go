package iter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisp-lang/wisp/internal/value"
)

func drain(t *testing.T, it value.Iterator) []int64 {
	t.Helper()

	var out []int64

	for {
		next := it.Next()
		if value.IsErr(next) {
			return out
		}

		out = append(out, next.Variant().Payload[0].Int())
	}
}

func TestIntoIterRange(t *testing.T) {
	v, ok := IntoIter(value.NewIntRange(1, 4, false))
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, drain(t, v.Iterator()))
}

func TestIntoIterRangeInclusive(t *testing.T) {
	v, ok := IntoIter(value.NewIntRange(1, 3, true))
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, drain(t, v.Iterator()))
}

func TestIntoIterVector(t *testing.T) {
	vec := value.NewVector(value.Int(10), value.Int(20))

	v, ok := IntoIter(vec)
	require.True(t, ok)
	assert.Equal(t, []int64{10, 20}, drain(t, v.Iterator()))
}

func TestIntoIterRejectsScalar(t *testing.T) {
	_, ok := IntoIter(value.Int(1))
	assert.False(t, ok)
}

func TestMapFilterTakeCompose(t *testing.T) {
	vec := value.NewVector(value.Int(1), value.Int(2), value.Int(3), value.Int(4), value.Int(5))
	v, _ := IntoIter(vec)

	doubled := &Map{Upstream: v.Iterator(), Fn: func(x value.Value) (value.Value, error) {
		return value.Int(x.Int() * 2), nil
	}}

	even := &Filter{Upstream: doubled, Pred: func(x value.Value) (bool, error) {
		return x.Int()%4 == 0, nil
	}}

	limited := &Take{Upstream: even, N: 1}

	assert.Equal(t, []int64{4}, drain(t, limited))
}

func TestCollect(t *testing.T) {
	vec := value.NewVector(value.Int(1), value.Int(2))
	v, _ := IntoIter(vec)

	out := Collect(v.Iterator())
	assert.Equal(t, 2, out.Vector().Len())
}

func TestZipAndEnumerate(t *testing.T) {
	a, _ := IntoIter(value.NewVector(value.Int(1), value.Int(2)))
	b, _ := IntoIter(value.NewVector(value.Int(9), value.Int(8), value.Int(7)))

	z := &Zip{A: a.Iterator(), B: b.Iterator()}

	first := z.Next()
	require.False(t, value.IsErr(first))
	pair := first.Variant().Payload[0].Tuple()
	assert.Equal(t, int64(1), pair.Elems[0].Int())
	assert.Equal(t, int64(9), pair.Elems[1].Int())

	fresh, _ := IntoIter(value.NewVector(value.String("a"), value.String("b")))
	e := &Enumerate{Upstream: fresh.Iterator()}

	first = e.Next()
	require.False(t, value.IsErr(first))
	pair = first.Variant().Payload[0].Tuple()
	assert.Equal(t, int64(0), pair.Elems[0].Int())
	assert.Equal(t, "a", pair.Elems[1].Str())
}
