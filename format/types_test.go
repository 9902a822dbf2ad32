package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressionType_String(t *testing.T) {
	tests := []struct {
		in   CompressionType
		want string
	}{
		{CompressionGzip, "Gzip"},
		{CompressionZlib, "Zlib"},
		{CompressionNone, "None"},
		{CompressionLZ4, "LZ4"},
		{CompressionCustom, "Custom"},
		{CompressionZlib | ExternalFlag, "Zlib+External"},
		{CompressionType(9), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.in.String())
		})
	}
}

func TestCompressionType_External(t *testing.T) {
	c := CompressionLZ4 | ExternalFlag
	require.True(t, c.IsExternal())
	require.Equal(t, CompressionLZ4, c.Scheme())
	require.False(t, CompressionLZ4.IsExternal())
	require.Equal(t, uint8(0x84), uint8(c))
}

func TestTagType(t *testing.T) {
	for tt := TagEnd; tt <= TagLongArray; tt++ {
		require.True(t, tt.Valid())
		require.NotEqual(t, "Unknown", tt.String())
	}
	require.False(t, TagType(13).Valid())
	require.Equal(t, "Unknown", TagType(13).String())
	require.Equal(t, "Compound", TagCompound.String())
}
