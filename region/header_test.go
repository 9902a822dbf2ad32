package region

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mcnbt/errs"
)

func TestSlotIndex_Bijection(t *testing.T) {
	seen := make(map[int]bool, SlotCount)
	for z := range Width {
		for x := range Width {
			slot, err := SlotIndex(x, z)
			require.NoError(t, err)
			require.GreaterOrEqual(t, slot, 0)
			require.Less(t, slot, SlotCount)
			require.False(t, seen[slot], "slot %d assigned twice", slot)
			seen[slot] = true

			gx, gz := SlotCoords(slot)
			require.Equal(t, x, gx)
			require.Equal(t, z, gz)
		}
	}
	require.Len(t, seen, SlotCount)
}

func TestSlotIndex_OutOfRange(t *testing.T) {
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {32, 0}, {0, 32}, {100, 100}} {
		_, err := SlotIndex(c[0], c[1])
		require.ErrorIs(t, err, errs.ErrOutOfRange, "%v", c)
	}

	slot, err := SlotIndex(31, 31)
	require.NoError(t, err)
	require.Equal(t, 1023, slot)
}

func TestWorldToLocal(t *testing.T) {
	tests := []struct {
		cx, cz         int
		rx, rz, lx, lz int
	}{
		{0, 0, 0, 0, 0, 0},
		{31, 32, 0, 1, 31, 0},
		{-1, -32, -1, -1, 31, 0},
		{-33, 70, -2, 2, 31, 6},
	}

	for _, tt := range tests {
		rx, rz, lx, lz := WorldToLocal(tt.cx, tt.cz)
		require.Equal(t, [4]int{tt.rx, tt.rz, tt.lx, tt.lz}, [4]int{rx, rz, lx, lz}, "(%d, %d)", tt.cx, tt.cz)
	}
}

func TestHeader_RoundTrip(t *testing.T) {
	h := &Header{}
	h.Locations[0] = Location{Offset: 0x010203, Count: 5}
	h.Locations[SlotCount-1] = Location{Offset: 2, Count: 1}
	h.Timestamps[0] = 0xA1B2C3D4

	b, err := h.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, HeaderSize)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x05}, b[:4])
	require.Equal(t, []byte{0x00, 0x00, 0x02, 0x01}, b[SectorSize-4:SectorSize])
	require.Equal(t, []byte{0xA1, 0xB2, 0xC3, 0xD4}, b[SectorSize:SectorSize+4])

	got, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, 2, got.Present())
}

func TestHeader_EmptyEncodesZeros(t *testing.T) {
	b, err := (&Header{}).MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, make([]byte, HeaderSize), b)
}

func TestHeader_OffsetOverflow(t *testing.T) {
	h := &Header{}
	h.Locations[3] = Location{Offset: MaxSectorOffset + 1, Count: 1}

	_, err := h.MarshalBinary()
	require.ErrorIs(t, err, errs.ErrAllocationFailure)
}

func TestParseHeader_TooShort(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, errs.ErrCorruptRecord)
}

func TestLocation(t *testing.T) {
	require.True(t, Location{}.IsEmpty())
	require.True(t, Location{Offset: 4}.IsEmpty())
	require.True(t, Location{Count: 4}.IsEmpty())

	loc := Location{Offset: 3, Count: 2}
	require.False(t, loc.IsEmpty())
	require.Equal(t, uint32(5), loc.End())
	require.Equal(t, int64(3*SectorSize), loc.ByteOffset())
	require.Equal(t, "sectors [3, 5)", loc.String())
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name   string
		x, z   int
		wantOK bool
	}{
		{"r.0.0.mca", 0, 0, true},
		{"r.-3.12.mca", -3, 12, true},
		{"r.1.mca", 0, 0, false},
		{"r.a.b.mca", 0, 0, false},
		{"r.1.2.mcr", 0, 0, false},
		{"level.dat", 0, 0, false},
	}

	for _, tt := range tests {
		x, z, ok := ParseFileName(tt.name)
		require.Equal(t, tt.wantOK, ok, tt.name)
		if ok {
			require.Equal(t, tt.x, x)
			require.Equal(t, tt.z, z)
		}
	}

	require.Equal(t, "r.-1.2.mca", FileName(-1, 2))
	require.Equal(t, "c.-5.40.mcc", ExternalFileName(-5, 40))
}
