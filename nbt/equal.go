package nbt

import (
	"math"
	"slices"
)

// Equal reports whether a and b are structurally identical.
//
// Compound entries must appear in the same order, lists must share their
// element type, and floating point values are compared by bit pattern so
// that NaN payloads and signed zeros are distinguished.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}

	switch x := a.(type) {
	case End:
		return true
	case Byte, Short, Int, Long, String:
		return a == b
	case Float:
		return math.Float32bits(float32(x)) == math.Float32bits(float32(b.(Float)))
	case Double:
		return math.Float64bits(float64(x)) == math.Float64bits(float64(b.(Double)))
	case ByteArray:
		return slices.Equal(x, b.(ByteArray))
	case IntArray:
		return slices.Equal(x, b.(IntArray))
	case LongArray:
		return slices.Equal(x, b.(LongArray))
	case *List:
		y := b.(*List)
		if x == nil || y == nil {
			return x == y
		}
		return x.elem == y.elem && slices.EqualFunc(x.items, y.items, Equal)
	case *Compound:
		y := b.(*Compound)
		if x == nil || y == nil {
			return x == y
		}
		return slices.EqualFunc(x.entries, y.entries, func(p, q entry) bool {
			return p.name == q.name && Equal(p.tag, q.tag)
		})
	default:
		return false
	}
}

// EqualNamed reports whether two documents have the same root name and tree.
func EqualNamed(a, b NamedTag) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return a.IsEmpty() && b.IsEmpty()
	}

	return a.Name == b.Name && Equal(a.Tag, b.Tag)
}
