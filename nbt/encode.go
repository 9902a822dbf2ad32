package nbt

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/arloliu/mcnbt/errs"
	"github.com/arloliu/mcnbt/internal/pool"
	"github.com/arloliu/mcnbt/mutf8"
)

// Encode serializes a named root tag.
//
// The output mirrors Parse field for field: compound entries are written in
// their stored order and lists keep their declared element type, so encoding
// a tree produced by Parse(b) yields b again.
//
// Returns:
//   - []byte: newly allocated NBT bytes
//   - error: wraps errs.ErrListTypeMismatch, errs.ErrInvalidTagType,
//     errs.ErrEncoding, errs.ErrLengthOverflow or errs.ErrDepthExceeded
func Encode(nt NamedTag) ([]byte, error) {
	bb := pool.GetDocumentBuffer()
	defer pool.PutDocumentBuffer(bb)

	out, err := AppendNamed(bb.B, nt)
	if err != nil {
		return nil, err
	}
	bb.B = out

	return slices.Clone(out), nil
}

// AppendNamed appends the encoding of nt to dst.
func AppendNamed(dst []byte, nt NamedTag) ([]byte, error) {
	if nt.IsEmpty() {
		return append(dst, byte(TagEnd)), nil
	}

	start := len(dst)
	dst = append(dst, byte(nt.Tag.Type()))
	dst, err := mutf8.AppendString(dst, nt.Name)
	if err != nil {
		return dst[:start], fmt.Errorf("nbt: root name: %w", err)
	}

	e := encoder{maxDepth: DefaultMaxDepth}
	dst, err = e.appendPayload(dst, nt.Tag, 0)
	if err != nil {
		return dst[:start], err
	}

	return dst, nil
}

// AppendPayload appends the bare payload of t, with no type byte or name.
func AppendPayload(dst []byte, t Tag) ([]byte, error) {
	if t == nil || t.Type() == TagEnd {
		return dst, fmt.Errorf("nbt: %w: End has no payload", errs.ErrInvalidTagType)
	}

	start := len(dst)
	e := encoder{maxDepth: DefaultMaxDepth}
	dst, err := e.appendPayload(dst, t, 0)
	if err != nil {
		return dst[:start], err
	}

	return dst, nil
}

// Encoder writes named root tags to an io.Writer.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the encoding of nt. Nothing is written if encoding fails.
func (enc *Encoder) Encode(nt NamedTag) error {
	bb := pool.GetDocumentBuffer()
	defer pool.PutDocumentBuffer(bb)

	out, err := AppendNamed(bb.B, nt)
	if err != nil {
		return err
	}
	bb.B = out

	if _, err := bb.WriteTo(enc.w); err != nil {
		return fmt.Errorf("nbt: write: %w", err)
	}

	return nil
}

type encoder struct {
	maxDepth int
}

func (e *encoder) appendPayload(dst []byte, t Tag, depth int) ([]byte, error) {
	switch v := t.(type) {
	case Byte:
		return append(dst, byte(v)), nil
	case Short:
		return be.AppendUint16(dst, uint16(v)), nil
	case Int:
		return be.AppendUint32(dst, uint32(v)), nil
	case Long:
		return be.AppendUint64(dst, uint64(v)), nil
	case Float:
		return be.AppendUint32(dst, math.Float32bits(float32(v))), nil
	case Double:
		return be.AppendUint64(dst, math.Float64bits(float64(v))), nil
	case ByteArray:
		if err := checkLen(len(v)); err != nil {
			return dst, err
		}
		dst = be.AppendUint32(dst, uint32(len(v)))
		return append(dst, v...), nil
	case String:
		out, err := mutf8.AppendString(dst, string(v))
		if err != nil {
			return dst, fmt.Errorf("nbt: %w", err)
		}
		return out, nil
	case IntArray:
		if err := checkLen(len(v)); err != nil {
			return dst, err
		}
		dst = be.AppendUint32(dst, uint32(len(v)))
		for _, x := range v {
			dst = be.AppendUint32(dst, uint32(x))
		}
		return dst, nil
	case LongArray:
		if err := checkLen(len(v)); err != nil {
			return dst, err
		}
		dst = be.AppendUint32(dst, uint32(len(v)))
		for _, x := range v {
			dst = be.AppendUint64(dst, uint64(x))
		}
		return dst, nil
	case *List:
		return e.appendList(dst, v, depth+1)
	case *Compound:
		return e.appendCompound(dst, v, depth+1)
	default:
		return dst, fmt.Errorf("nbt: %w: cannot encode %T", errs.ErrInvalidTagType, t)
	}
}

func (e *encoder) appendList(dst []byte, l *List, depth int) ([]byte, error) {
	if l == nil {
		return dst, fmt.Errorf("nbt: %w: nil list", errs.ErrInvalidTagType)
	}
	if depth > e.maxDepth {
		return dst, fmt.Errorf("nbt: %w: limit %d", errs.ErrDepthExceeded, e.maxDepth)
	}
	if len(l.items) > 0 && (!l.elem.Valid() || l.elem == TagEnd) {
		return dst, fmt.Errorf("nbt: %w: list of %s with %d elements", errs.ErrInvalidTagType, l.elem, len(l.items))
	}
	if err := checkLen(len(l.items)); err != nil {
		return dst, err
	}

	dst = append(dst, byte(l.elem))
	dst = be.AppendUint32(dst, uint32(len(l.items)))

	var err error
	for i, it := range l.items {
		if it == nil || it.Type() != l.elem {
			return dst, fmt.Errorf("nbt: %w: element %d of list of %s", errs.ErrListTypeMismatch, i, l.elem)
		}
		if dst, err = e.appendPayload(dst, it, depth); err != nil {
			return dst, err
		}
	}

	return dst, nil
}

func (e *encoder) appendCompound(dst []byte, c *Compound, depth int) ([]byte, error) {
	if c == nil {
		return dst, fmt.Errorf("nbt: %w: nil compound", errs.ErrInvalidTagType)
	}
	if depth > e.maxDepth {
		return dst, fmt.Errorf("nbt: %w: limit %d", errs.ErrDepthExceeded, e.maxDepth)
	}

	var err error
	for _, ent := range c.entries {
		if ent.tag == nil || ent.tag.Type() == TagEnd {
			return dst, fmt.Errorf("nbt: %w: entry %q is End", errs.ErrInvalidTagType, ent.name)
		}
		dst = append(dst, byte(ent.tag.Type()))
		if dst, err = mutf8.AppendString(dst, ent.name); err != nil {
			return dst, fmt.Errorf("nbt: key %q: %w", ent.name, err)
		}
		if dst, err = e.appendPayload(dst, ent.tag, depth); err != nil {
			return dst, err
		}
	}

	return append(dst, byte(TagEnd)), nil
}

func checkLen(n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("nbt: %w: %d elements", errs.ErrLengthOverflow, n)
	}

	return nil
}
