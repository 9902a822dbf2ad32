package nbt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mcnbt/errs"
)

type testSection struct {
	Y          int8      `nbt:"Y"`
	BlockLight []byte    `nbt:"BlockLight,omitempty"`
	States     []int64   `nbt:"block_states"`
	Palette    []string  `nbt:"palette"`
	Scratch    string    `nbt:"-"`
	hidden     int       //nolint:unused
	Light      *[]uint8  `nbt:"SkyLight"`
	Extra      Tag       `nbt:"extra"`
	Nested     *testInfo `nbt:"info"`
}

type testInfo struct {
	Name    string
	Flag    bool    `nbt:"flag"`
	Unsign  uint8   `nbt:"u8"`
	Big     uint32  `nbt:"u32"`
	Scale   float32 `nbt:"scale"`
	Weights map[string]float64
}

func TestMarshal_Struct(t *testing.T) {
	s := testSection{
		Y:       -4,
		States:  []int64{1, 2},
		Palette: []string{"minecraft:air"},
		Scratch: "not encoded",
		Extra:   Int(7),
		Nested: &testInfo{
			Name:    "n",
			Flag:    true,
			Unsign:  200,
			Big:     4000000000,
			Scale:   0.5,
			Weights: map[string]float64{"b": 2, "a": 1},
		},
	}

	tag, err := Marshal(s)
	require.NoError(t, err)

	c := tag.(*Compound)
	require.Equal(t, []string{"Y", "block_states", "palette", "extra", "info"}, c.Keys())

	y, _ := Get[Byte](c, "Y")
	require.Equal(t, Byte(-4), y)
	states, _ := Get[LongArray](c, "block_states")
	require.Equal(t, LongArray{1, 2}, states)
	palette, _ := Get[*List](c, "palette")
	require.Equal(t, TagString, palette.ElemType())

	info, ok := Get[*Compound](c, "info")
	require.True(t, ok)
	require.Equal(t, []string{"Name", "flag", "u8", "u32", "scale", "Weights"}, info.Keys())
	u8, _ := Get[Byte](info, "u8")
	require.Equal(t, Byte(-56), u8)
	weights, _ := Get[*Compound](info, "Weights")
	require.Equal(t, []string{"a", "b"}, weights.Keys(), "map keys are sorted")

	var back testSection
	require.NoError(t, Unmarshal(tag, &back))
	s.Scratch = ""
	require.Equal(t, s, back)
}

func TestMarshal_EmptySliceKeepsListType(t *testing.T) {
	type doc struct {
		Names []string  `nbt:"names"`
		Subs  []testInfo `nbt:"subs"`
		Any   []Tag     `nbt:"any"`
	}

	tag, err := Marshal(doc{})
	require.NoError(t, err)

	c := tag.(*Compound)
	names, _ := Get[*List](c, "names")
	require.Equal(t, TagString, names.ElemType())
	subs, _ := Get[*List](c, "subs")
	require.Equal(t, TagCompound, subs.ElemType())
	anyList, _ := Get[*List](c, "any")
	require.Equal(t, TagEnd, anyList.ElemType())
}

func TestMarshal_DynamicList(t *testing.T) {
	tag, err := Marshal([]any{int32(1), int32(2)})
	require.NoError(t, err)
	require.Equal(t, TagInt, tag.(*List).ElemType())

	_, err = Marshal([]any{int32(1), "x"})
	require.ErrorIs(t, err, errs.ErrListTypeMismatch)
}

func TestMarshal_Scalars(t *testing.T) {
	tests := []struct {
		in   any
		want Tag
	}{
		{true, Byte(1)},
		{int16(-3), Short(-3)},
		{uint16(65535), Short(-1)},
		{int32(5), Int(5)},
		{42, Long(42)},
		{uint64(1 << 63), Long(-1 << 63)},
		{1.25, Double(1.25)},
		{"s", String("s")},
		{[3]byte{1, 2, 3}, ByteArray{1, 2, 3}},
		{[]int32{4}, IntArray{4}},
		{[]Int{4}, MustList(TagInt, Int(4))},
		{Long(9), Long(9)},
	}

	for _, tt := range tests {
		got, err := Marshal(tt.in)
		require.NoError(t, err, "%T", tt.in)
		require.True(t, Equal(tt.want, got), "%T: want %v got %v", tt.in, tt.want, got)
	}
}

func TestMarshal_Errors(t *testing.T) {
	_, err := Marshal(nil)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = Marshal(map[int]string{1: "x"})
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = Marshal(struct{ C chan int }{C: make(chan int)})
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = Marshal((*Compound)(nil))
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestUnmarshal_Conversions(t *testing.T) {
	t.Run("widening", func(t *testing.T) {
		var n int64
		require.NoError(t, Unmarshal(Byte(-3), &n))
		require.Equal(t, int64(-3), n)
	})

	t.Run("overflow", func(t *testing.T) {
		var n int8
		require.ErrorIs(t, Unmarshal(Int(1000), &n), errs.ErrUnsupportedType)
	})

	t.Run("unsigned bits", func(t *testing.T) {
		var n uint32
		require.NoError(t, Unmarshal(Int(-1), &n))
		require.Equal(t, uint32(0xFFFFFFFF), n)
	})

	t.Run("array into fixed array", func(t *testing.T) {
		var a [4]int32
		require.NoError(t, Unmarshal(IntArray{1, 2}, &a))
		require.Equal(t, [4]int32{1, 2, 0, 0}, a)
		require.ErrorIs(t, Unmarshal(IntArray{1, 2, 3, 4, 5}, &a), errs.ErrUnsupportedType)
	})

	t.Run("byte array into int slice", func(t *testing.T) {
		var s []int
		require.NoError(t, Unmarshal(ByteArray{0xFF, 1}, &s))
		require.Equal(t, []int{-1, 1}, s)
	})

	t.Run("into any", func(t *testing.T) {
		var v any
		c := NewCompound()
		require.NoError(t, Unmarshal(c, &v))
		require.Same(t, c, v)
	})

	t.Run("into map", func(t *testing.T) {
		c := NewCompound()
		c.Set("x", Short(1))
		c.Set("y", Short(2))
		var m map[string]int
		require.NoError(t, Unmarshal(c, &m))
		require.Equal(t, map[string]int{"x": 1, "y": 2}, m)
	})

	t.Run("type mismatch", func(t *testing.T) {
		var s string
		require.ErrorIs(t, Unmarshal(Int(1), &s), errs.ErrUnsupportedType)

		var st testInfo
		c := NewCompound()
		c.Set("flag", String("yes"))
		err := Unmarshal(c, &st)
		require.ErrorIs(t, err, errs.ErrUnsupportedType)
		require.Contains(t, err.Error(), "field flag")
	})

	t.Run("non pointer", func(t *testing.T) {
		var n int
		require.ErrorIs(t, Unmarshal(Int(1), n), errs.ErrUnsupportedType)
		require.ErrorIs(t, Unmarshal(nil, &n), errs.ErrUnsupportedType)
	})
}

func TestMarshalNamed_EncodeRoundTrip(t *testing.T) {
	in := testInfo{Name: "x", Weights: map[string]float64{}}

	nt, err := MarshalNamed("root", in)
	require.NoError(t, err)

	data, err := Encode(nt)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, "root", parsed.Name)

	var out testInfo
	require.NoError(t, Unmarshal(parsed.Tag, &out))
	require.Equal(t, in, out)
}
