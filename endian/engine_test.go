package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.LittleEndian, engine)

	var testValue uint32 = 0x01020304
	bytes := make([]byte, 4)
	engine.PutUint32(bytes, testValue)
	// LZ4Block lengths are stored LSB first
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, bytes)
	require.Equal(t, testValue, engine.Uint32(bytes))
}

func TestGetBigEndianEngine(t *testing.T) {
	engine := GetBigEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.BigEndian, engine)

	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	require.Equal(t, byte(0x01), bytes[0], "Big endian should put MSB first")
	require.Equal(t, byte(0x02), bytes[1], "Big endian should put LSB second")
	require.Equal(t, testValue, engine.Uint16(bytes))

	buf := engine.AppendUint64(nil, 0x0102030405060708)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, buf)
}

func TestUint24(t *testing.T) {
	tests := []struct {
		name  string
		value uint32
		bytes []byte
	}{
		{"zero", 0, []byte{0, 0, 0}},
		{"header sector", 2, []byte{0, 0, 2}},
		{"mixed", 0x0A0B0C, []byte{0x0A, 0x0B, 0x0C}},
		{"max", MaxUint24, []byte{0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 3)
			PutUint24(buf, tt.value)
			require.Equal(t, tt.bytes, buf)
			require.Equal(t, tt.value, Uint24(buf))
			require.Equal(t, tt.bytes, AppendUint24(nil, tt.value))
		})
	}
}

func TestPutUint24_TruncatesHighByte(t *testing.T) {
	buf := make([]byte, 3)
	PutUint24(buf, 0xFF000001)
	require.Equal(t, uint32(1), Uint24(buf))
}

func TestUint24_ShortBufferPanics(t *testing.T) {
	require.Panics(t, func() { Uint24([]byte{1, 2}) })
	require.Panics(t, func() { PutUint24(make([]byte, 2), 1) })
}
