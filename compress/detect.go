package compress

import (
	"bytes"

	"github.com/arloliu/mcnbt/format"
)

// Detect sniffs the container of a standalone NBT file such as level.dat.
//
// It recognizes the gzip member magic, a zlib header with a valid FCHECK and
// the LZ4Block magic. Anything else is reported as CompressionNone, which is
// also what a raw NBT document starting with a compound tag (0x0A) yields.
func Detect(data []byte) format.CompressionType {
	switch {
	case len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B:
		return format.CompressionGzip
	case isZlibHeader(data):
		return format.CompressionZlib
	case bytes.HasPrefix(data, lz4BlockMagic):
		return format.CompressionLZ4
	default:
		return format.CompressionNone
	}
}

// isZlibHeader checks CM=8 (deflate), CINFO<=7 and the FCHECK bits.
func isZlibHeader(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	cmf, flg := data[0], data[1]
	if cmf&0x0F != 8 || cmf>>4 > 7 {
		return false
	}

	return (uint16(cmf)<<8|uint16(flg))%31 == 0
}
