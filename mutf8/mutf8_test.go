package mutf8

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/mcnbt/errs"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		encoded []byte
	}{
		{"empty", "", []byte{}},
		{"ascii", "hello", []byte("hello")},
		{"null", "\x00", []byte{0xC0, 0x80}},
		{"null inside", "a\x00b", []byte{'a', 0xC0, 0x80, 'b'}},
		{"two byte", "é", []byte{0xC3, 0xA9}},
		{"three byte", "€", []byte{0xE2, 0x82, 0xAC}},
		{"supplementary", "😀", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
		{"max rune", "\U0010FFFF", []byte{0xED, 0xAF, 0xBF, 0xED, 0xBF, 0xBF}},
		{"mixed", "x😀\x00€", []byte{'x', 0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80, 0xC0, 0x80, 0xE2, 0x82, 0xAC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.text)
			require.NoError(t, err)
			require.Equal(t, tt.encoded, got)

			decoded, err := Decode(tt.encoded)
			require.NoError(t, err)
			require.Equal(t, tt.text, decoded)

			n, err := EncodedLen(tt.text)
			require.NoError(t, err)
			require.Equal(t, len(tt.encoded), n)
		})
	}
}

func TestDecode_VerbatimForms(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"lone high surrogate", []byte{0xED, 0xA0, 0x80, 'a'}},
		{"lone low surrogate", []byte{0xED, 0xB0, 0x80}},
		{"high surrogate at end", []byte{'a', 0xED, 0xA0, 0xBD}},
		{"reversed pair", []byte{0xED, 0xB8, 0x80, 0xED, 0xA0, 0xBD}},
		{"overlong two byte", []byte{0xC1, 0x81}},
		{"overlong three byte null", []byte{0xE0, 0x80, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode(tt.input)
			require.NoError(t, err)

			again, err := Encode(s)
			require.NoError(t, err)
			require.Equal(t, tt.input, again, "re-encoding must reproduce the source bytes")
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"raw zero", []byte{'a', 0x00}},
		{"stray continuation", []byte{0x80}},
		{"four byte lead", []byte{0xF0, 0x9F, 0x98, 0x80}},
		{"truncated two byte", []byte{0xC3}},
		{"truncated three byte", []byte{0xE2, 0x82}},
		{"bad continuation", []byte{0xC3, 0x41}},
		{"bad third byte", []byte{0xE2, 0x82, 0x41}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			require.ErrorIs(t, err, errs.ErrEncoding)
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	t.Run("invalid byte", func(t *testing.T) {
		_, err := Encode("ok\xff")
		require.ErrorIs(t, err, errs.ErrEncoding)
	})

	t.Run("truncated verbatim", func(t *testing.T) {
		_, err := Encode("\xED\xA0")
		require.ErrorIs(t, err, errs.ErrEncoding)
	})

	t.Run("ascii too long", func(t *testing.T) {
		_, err := Encode(strings.Repeat("a", MaxLen+1))
		require.ErrorIs(t, err, errs.ErrEncoding)

		_, err = EncodedLen(strings.Repeat("a", MaxLen+1))
		require.ErrorIs(t, err, errs.ErrEncoding)
	})

	t.Run("multibyte too long", func(t *testing.T) {
		// 21846 * 3 bytes = 65538
		_, err := Encode(strings.Repeat("€", 21846))
		require.ErrorIs(t, err, errs.ErrEncoding)
	})

	t.Run("exact limit", func(t *testing.T) {
		b, err := Encode(strings.Repeat("a", MaxLen))
		require.NoError(t, err)
		require.Len(t, b, MaxLen)
	})
}

func TestAppendString(t *testing.T) {
	dst := []byte{0xAA}

	dst, err := AppendString(dst, "hi")
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0x00, 0x02, 'h', 'i'}, dst)

	dst, err = AppendString(dst, "\x00")
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0x00, 0x02, 'h', 'i', 0x00, 0x02, 0xC0, 0x80}, dst)

	before := len(dst)
	dst, err = AppendString(dst, "\xff")
	require.ErrorIs(t, err, errs.ErrEncoding)
	require.Len(t, dst, before, "failed append must not leave partial output")
}

func TestRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("Decode(Encode(s)) == s", prop.ForAll(
		func(s string) bool {
			b, err := Encode(s)
			if err != nil {
				return false
			}
			for _, c := range b {
				if c == 0 {
					return false
				}
			}
			got, err := Decode(b)

			return err == nil && got == s
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func BenchmarkDecode(b *testing.B) {
	ascii := []byte("minecraft:stone_brick_stairs")
	mixed, _ := Encode("Überschrift 😀 \x00 ende")

	b.Run("ascii", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_, _ = Decode(ascii)
		}
	})
	b.Run("mixed", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_, _ = Decode(mixed)
		}
	})
}
