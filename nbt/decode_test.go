package nbt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mcnbt/errs"
)

// helloWorld is the canonical hello_world.nbt test document.
var helloWorld = []byte{
	0x0A, 0x00, 0x0B, 'h', 'e', 'l', 'l', 'o', ' ', 'w', 'o', 'r', 'l', 'd',
	0x08, 0x00, 0x04, 'n', 'a', 'm', 'e',
	0x00, 0x09, 'B', 'a', 'n', 'a', 'n', 'r', 'a', 'm', 'a',
	0x00,
}

// wire builds NBT byte sequences for tests.
type wire struct{ bytes.Buffer }

func (w *wire) b(v ...byte) *wire { w.Write(v); return w }
func (w *wire) u16(v uint16) *wire {
	w.Write(binary.BigEndian.AppendUint16(nil, v))
	return w
}

func (w *wire) i32(v int32) *wire {
	w.Write(binary.BigEndian.AppendUint32(nil, uint32(v)))
	return w
}

func (w *wire) str(s string) *wire {
	w.u16(uint16(len(s)))
	w.WriteString(s)

	return w
}

func TestParse_HelloWorld(t *testing.T) {
	nt, err := Parse(helloWorld)
	require.NoError(t, err)
	require.Equal(t, "hello world", nt.Name)

	root, ok := nt.Tag.(*Compound)
	require.True(t, ok)
	require.Equal(t, 1, root.Len())

	name, ok := Get[String](root, "name")
	require.True(t, ok)
	require.Equal(t, String("Bananrama"), name)
}

func TestParse_EmptyRoot(t *testing.T) {
	nt, n, err := ParsePrefix([]byte{0x00, 0xFF, 0xFF})
	require.NoError(t, err)
	require.True(t, nt.IsEmpty())
	require.Equal(t, 1, n)
}

func TestParse_AllScalarTypes(t *testing.T) {
	var w wire
	w.b(0x0A).str("")
	w.b(0x01).str("b").b(0xFF)
	w.b(0x02).str("s").u16(0x8000)
	w.b(0x03).str("i").i32(-2)
	w.b(0x04).str("l").b(0x80, 0, 0, 0, 0, 0, 0, 1)
	w.b(0x05).str("f").b(0x3F, 0xC0, 0x00, 0x00)
	w.b(0x06).str("d").b(0xC0, 0x04, 0, 0, 0, 0, 0, 0)
	w.b(0x07).str("ba").i32(3).b(1, 0x80, 3)
	w.b(0x0B).str("ia").i32(2).i32(7).i32(-7)
	w.b(0x0C).str("la").i32(1).b(0, 0, 0, 0, 0, 0, 0, 9)
	w.b(0x00)

	nt, err := Parse(w.Bytes())
	require.NoError(t, err)

	root := nt.Tag.(*Compound)
	require.Equal(t, []string{"b", "s", "i", "l", "f", "d", "ba", "ia", "la"}, root.Keys())

	expect := map[string]Tag{
		"b":  Byte(-1),
		"s":  Short(-32768),
		"i":  Int(-2),
		"l":  Long(-9223372036854775807),
		"f":  Float(1.5),
		"d":  Double(-2.5),
		"ba": ByteArray{1, 0x80, 3},
		"ia": IntArray{7, -7},
		"la": LongArray{9},
	}
	for k, want := range expect {
		got, ok := root.Get(k)
		require.True(t, ok, k)
		require.True(t, Equal(want, got), "%s: want %v got %v", k, want, got)
	}
}

func TestParse_ListOfIntTruncated(t *testing.T) {
	var w wire
	w.b(0x09).str("l").b(0x03).i32(3)
	w.i32(1).i32(2) // only 8 of 12 bytes

	_, err := Parse(w.Bytes())
	require.ErrorIs(t, err, errs.ErrTruncatedInput)

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 9, se.Offset)
}

func TestParse_EmptyListKeepsElementType(t *testing.T) {
	var w wire
	w.b(0x09).str("").b(0x08).i32(0)

	nt, err := Parse(w.Bytes())
	require.NoError(t, err)

	l := nt.Tag.(*List)
	require.Equal(t, TagString, l.ElemType())
	require.Equal(t, 0, l.Len())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty input", nil, errs.ErrTruncatedInput},
		{"invalid root type", []byte{0x0D, 0x00, 0x00}, errs.ErrInvalidTagType},
		{"truncated name", []byte{0x0A, 0x00, 0x05, 'a'}, errs.ErrTruncatedInput},
		{"unterminated compound", []byte{0x0A, 0x00, 0x00}, errs.ErrTruncatedInput},
		{"invalid entry type", new(wire).b(0x0A).str("").b(0x20).Bytes(), errs.ErrInvalidTagType},
		{"negative byte array", new(wire).b(0x07).str("").i32(-1).Bytes(), errs.ErrNegativeLength},
		{"negative int array", new(wire).b(0x0B).str("").i32(-5).Bytes(), errs.ErrNegativeLength},
		{"negative list", new(wire).b(0x09).str("").b(0x01).i32(-1).Bytes(), errs.ErrNegativeLength},
		{"oversized long array", new(wire).b(0x0C).str("").i32(0x7FFFFFFF).Bytes(), errs.ErrTruncatedInput},
		{"list of end with items", new(wire).b(0x09).str("").b(0x00).i32(2).Bytes(), errs.ErrInvalidTagType},
		{"invalid list element type", new(wire).b(0x09).str("").b(0x0E).i32(1).b(0).Bytes(), errs.ErrInvalidTagType},
		{"bad mutf8 name", []byte{0x01, 0x00, 0x01, 0xC3, 0x00}, errs.ErrEncoding},
		{"duplicate key", new(wire).b(0x0A).str("").b(0x01).str("k").b(1).b(0x01).str("k").b(2).b(0).Bytes(), errs.ErrDuplicateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nt, err := Parse(tt.data)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, nt.Tag, "no partial tree on failure")

			var se *SyntaxError
			require.ErrorAs(t, err, &se)
		})
	}
}

func TestParse_ListOfEndEmptyIsValid(t *testing.T) {
	data := new(wire).b(0x09).str("x").b(0x00).i32(0).Bytes()

	nt, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, TagEnd, nt.Tag.(*List).ElemType())
}

func TestParse_EmptyListAnyElementByte(t *testing.T) {
	for _, elem := range []byte{0x00, 0x0D, 0x0E, 0x7F, 0xFF} {
		data := new(wire).b(0x0A).str("").b(0x09).str("l").b(elem).i32(0).b(0x00).Bytes()

		nt, err := Parse(data)
		require.NoError(t, err, "element byte %#x", elem)

		l, ok := Get[*List](nt.Tag.(*Compound), "l")
		require.True(t, ok)
		require.Equal(t, 0, l.Len())
		require.Equal(t, TagType(elem), l.ElemType())

		again, err := Encode(nt)
		require.NoError(t, err)
		require.Equal(t, data, again, "element byte %#x", elem)
	}
}

func TestParse_MaxDepth(t *testing.T) {
	nested := func(levels int) []byte {
		var w wire
		w.b(0x0A).str("")
		for range levels - 1 {
			w.b(0x0A).str("c")
		}
		for range levels {
			w.b(0x00)
		}

		return w.Bytes()
	}

	_, err := Parse(nested(3), WithMaxDepth(3))
	require.NoError(t, err)

	_, err = Parse(nested(4), WithMaxDepth(3))
	require.ErrorIs(t, err, errs.ErrDepthExceeded)

	_, err = Parse(nested(DefaultMaxDepth + 1))
	require.ErrorIs(t, err, errs.ErrDepthExceeded)

	_, err = Parse(nested(1), WithMaxDepth(0))
	require.Error(t, err)
}

func TestParsePrefix_TrailingBytes(t *testing.T) {
	data := append(append([]byte{}, helloWorld...), 0xDE, 0xAD)

	nt, n, err := ParsePrefix(data)
	require.NoError(t, err)
	require.Equal(t, len(helloWorld), n)
	require.Equal(t, "hello world", nt.Name)
}

func TestRead(t *testing.T) {
	nt, err := Read(bytes.NewReader(helloWorld))
	require.NoError(t, err)
	require.Equal(t, "hello world", nt.Name)
}

func TestParsePayload(t *testing.T) {
	tag, err := ParsePayload([]byte{0x00, 0x00, 0x01, 0x00}, TagInt)
	require.NoError(t, err)
	require.Equal(t, Int(256), tag)

	_, err = ParsePayload(nil, TagEnd)
	require.ErrorIs(t, err, errs.ErrInvalidTagType)
}

func TestSyntaxError_Message(t *testing.T) {
	_, err := Parse([]byte{0x0D})
	require.EqualError(t, err, "nbt: invalid tag type: 13 at offset 0")
}

func FuzzParse(f *testing.F) {
	f.Add(helloWorld)
	f.Add([]byte{0x00})
	f.Add(new(wire).b(0x09).str("").b(0x08).i32(0).Bytes())
	f.Add([]byte{0x08, 0x00, 0x00, 0x00, 0x06, 0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80})

	f.Fuzz(func(t *testing.T, data []byte) {
		nt, n, err := ParsePrefix(data)
		if err != nil {
			return
		}

		out, err := Encode(nt)
		require.NoError(t, err)
		require.Equal(t, data[:n], out)
	})
}
