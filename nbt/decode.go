package nbt

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/mcnbt/endian"
	"github.com/arloliu/mcnbt/errs"
	"github.com/arloliu/mcnbt/internal/options"
	"github.com/arloliu/mcnbt/mutf8"
)

var be = endian.GetBigEndianEngine()

// SyntaxError describes where in the input decoding failed.
type SyntaxError struct {
	Offset int   // byte offset of the failing field
	Err    error // wraps one of the errs sentinels
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("nbt: %v at offset %d", e.Err, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parse decodes one named root tag from the start of data.
//
// Bytes after the root are ignored; use ParsePrefix to learn how many were
// consumed. Decoding is fail-fast: the first structural error aborts the
// parse and no partial tree is returned.
//
// Parameters:
//   - data: uncompressed NBT bytes
//   - opts: parser options such as WithMaxDepth
//
// Returns:
//   - NamedTag: the root; its Tag is End for an empty document
//   - error: a *SyntaxError wrapping errs.ErrTruncatedInput, errs.ErrInvalidTagType,
//     errs.ErrNegativeLength, errs.ErrEncoding, errs.ErrDuplicateKey or errs.ErrDepthExceeded
func Parse(data []byte, opts ...DecoderOption) (NamedTag, error) {
	nt, _, err := ParsePrefix(data, opts...)
	return nt, err
}

// ParsePrefix is like Parse and also returns the number of bytes consumed.
func ParsePrefix(data []byte, opts ...DecoderOption) (NamedTag, int, error) {
	cfg := NewDecoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return NamedTag{}, 0, err
	}

	d := decoder{buf: data, maxDepth: cfg.maxDepth}
	nt, err := d.readNamed()
	if err != nil {
		return NamedTag{}, d.off, err
	}

	return nt, d.off, nil
}

// Read reads all of r and parses it as a named root tag.
func Read(r io.Reader, opts ...DecoderOption) (NamedTag, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return NamedTag{}, fmt.Errorf("nbt: read: %w", err)
	}

	return Parse(data, opts...)
}

// ParsePayload decodes a bare payload of type typ with no type byte or name,
// as found inside list elements.
func ParsePayload(data []byte, typ TagType, opts ...DecoderOption) (Tag, error) {
	cfg := NewDecoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if typ == TagEnd {
		return nil, &SyntaxError{Offset: 0, Err: fmt.Errorf("%w: End has no payload", errs.ErrInvalidTagType)}
	}

	d := decoder{buf: data, maxDepth: cfg.maxDepth}

	return d.readPayload(typ, 0)
}

type decoder struct {
	buf      []byte
	off      int
	maxDepth int
}

func (d *decoder) fail(at int, err error) error {
	var se *SyntaxError
	if errors.As(err, &se) {
		return err
	}

	return &SyntaxError{Offset: at, Err: err}
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.off
}

func (d *decoder) take(n int) ([]byte, error) {
	if n > d.remaining() {
		return nil, d.fail(d.off, fmt.Errorf("%w: need %d bytes, have %d", errs.ErrTruncatedInput, n, d.remaining()))
	}
	b := d.buf[d.off : d.off+n]
	d.off += n

	return b, nil
}

func (d *decoder) readType() (TagType, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	t := TagType(b[0])
	if !t.Valid() {
		return 0, d.fail(d.off-1, fmt.Errorf("%w: %d", errs.ErrInvalidTagType, b[0]))
	}

	return t, nil
}

func (d *decoder) readLength() (int, error) {
	start := d.off
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	n := int32(be.Uint32(b))
	if n < 0 {
		return 0, d.fail(start, fmt.Errorf("%w: %d", errs.ErrNegativeLength, n))
	}

	return int(n), nil
}

func (d *decoder) readString() (string, error) {
	b, err := d.take(2)
	if err != nil {
		return "", err
	}
	start := d.off
	raw, err := d.take(int(be.Uint16(b)))
	if err != nil {
		return "", err
	}
	s, err := mutf8.Decode(raw)
	if err != nil {
		return "", d.fail(start, err)
	}

	return s, nil
}

func (d *decoder) readNamed() (NamedTag, error) {
	typ, err := d.readType()
	if err != nil {
		return NamedTag{}, err
	}
	if typ == TagEnd {
		return NamedTag{Tag: End{}}, nil
	}

	name, err := d.readString()
	if err != nil {
		return NamedTag{}, err
	}
	tag, err := d.readPayload(typ, 0)
	if err != nil {
		return NamedTag{}, err
	}

	return NamedTag{Name: name, Tag: tag}, nil
}

// checkArray makes sure count elements of width bytes are present before
// anything is allocated for them.
func (d *decoder) checkArray(count, width int) error {
	if int64(count)*int64(width) > int64(d.remaining()) {
		return d.fail(d.off, fmt.Errorf("%w: %d elements of %d bytes, have %d", errs.ErrTruncatedInput, count, width, d.remaining()))
	}

	return nil
}

func (d *decoder) readPayload(typ TagType, depth int) (Tag, error) {
	switch typ {
	case TagByte:
		b, err := d.take(1)
		if err != nil {
			return nil, err
		}
		return Byte(int8(b[0])), nil
	case TagShort:
		b, err := d.take(2)
		if err != nil {
			return nil, err
		}
		return Short(int16(be.Uint16(b))), nil
	case TagInt:
		b, err := d.take(4)
		if err != nil {
			return nil, err
		}
		return Int(int32(be.Uint32(b))), nil
	case TagLong:
		b, err := d.take(8)
		if err != nil {
			return nil, err
		}
		return Long(int64(be.Uint64(b))), nil
	case TagFloat:
		b, err := d.take(4)
		if err != nil {
			return nil, err
		}
		return Float(math.Float32frombits(be.Uint32(b))), nil
	case TagDouble:
		b, err := d.take(8)
		if err != nil {
			return nil, err
		}
		return Double(math.Float64frombits(be.Uint64(b))), nil
	case TagByteArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		b, err := d.take(n)
		if err != nil {
			return nil, err
		}
		out := make(ByteArray, n)
		copy(out, b)
		return out, nil
	case TagString:
		s, err := d.readString()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case TagIntArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		if err := d.checkArray(n, 4); err != nil {
			return nil, err
		}
		out := make(IntArray, n)
		for i := range out {
			out[i] = int32(be.Uint32(d.buf[d.off:]))
			d.off += 4
		}
		return out, nil
	case TagLongArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		if err := d.checkArray(n, 8); err != nil {
			return nil, err
		}
		out := make(LongArray, n)
		for i := range out {
			out[i] = int64(be.Uint64(d.buf[d.off:]))
			d.off += 8
		}
		return out, nil
	case TagList:
		return d.readList(depth + 1)
	case TagCompound:
		return d.readCompound(depth + 1)
	default:
		return nil, d.fail(d.off, fmt.Errorf("%w: %s has no payload", errs.ErrInvalidTagType, typ))
	}
}

func (d *decoder) readList(depth int) (Tag, error) {
	if depth > d.maxDepth {
		return nil, d.fail(d.off, fmt.Errorf("%w: limit %d", errs.ErrDepthExceeded, d.maxDepth))
	}

	// The element byte only matters once there are elements to decode.
	elemAt := d.off
	b, err := d.take(1)
	if err != nil {
		return nil, err
	}
	elem := TagType(b[0])
	countAt := d.off
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	if n > 0 {
		if !elem.Valid() {
			return nil, d.fail(elemAt, fmt.Errorf("%w: list element type %d", errs.ErrInvalidTagType, b[0]))
		}
		if elem == TagEnd {
			return nil, d.fail(countAt, fmt.Errorf("%w: list of End with %d elements", errs.ErrInvalidTagType, n))
		}
	}
	if err := d.checkArray(n, minPayloadSize(elem)); err != nil {
		return nil, err
	}

	l := &List{elem: elem, items: make([]Tag, n)}
	for i := range l.items {
		t, err := d.readPayload(elem, depth)
		if err != nil {
			return nil, err
		}
		l.items[i] = t
	}

	return l, nil
}

func (d *decoder) readCompound(depth int) (Tag, error) {
	if depth > d.maxDepth {
		return nil, d.fail(d.off, fmt.Errorf("%w: limit %d", errs.ErrDepthExceeded, d.maxDepth))
	}

	c := NewCompound()
	for {
		typ, err := d.readType()
		if err != nil {
			return nil, err
		}
		if typ == TagEnd {
			return c, nil
		}

		nameAt := d.off
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		t, err := d.readPayload(typ, depth)
		if err != nil {
			return nil, err
		}
		if !c.add(name, t) {
			return nil, d.fail(nameAt, fmt.Errorf("%w: %q", errs.ErrDuplicateKey, name))
		}
	}
}

// minPayloadSize is the smallest encoding of one payload of type t.
func minPayloadSize(t TagType) int {
	switch t {
	case TagByte, TagCompound:
		return 1
	case TagShort, TagString:
		return 2
	case TagInt, TagFloat, TagByteArray, TagIntArray, TagLongArray:
		return 4
	case TagLong, TagDouble:
		return 8
	case TagList:
		return 5
	default:
		return 0
	}
}
