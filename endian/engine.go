// Package endian provides the byte order helpers used by the NBT and Anvil codecs.
//
// NBT and the Anvil region header are big-endian throughout. The lz4-java
// block framing used by compression scheme 4 is the only little-endian
// structure mcnbt touches, so both engines are exposed:
//
//	be := endian.GetBigEndianEngine()
//	buf = be.AppendUint16(buf, uint16(len(name)))
//
//	le := endian.GetLittleEndianEngine()
//	n := le.Uint32(frame[9:13])
//
// The region location table packs a 24-bit sector offset in front of an
// 8-bit sector count; Uint24, PutUint24 and AppendUint24 read and write that
// big-endian triple.
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use.
package endian

import "encoding/binary"

// MaxUint24 is the largest value representable by a 3-byte field.
const MaxUint24 = 1<<24 - 1

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Uint24 decodes a big-endian 24-bit unsigned integer from b[0:3].
// Panics if len(b) < 3.
func Uint24(b []byte) uint32 {
	_ = b[2] // bounds check hint to compiler
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// PutUint24 encodes the low 24 bits of v into b[0:3] in big-endian order.
// Panics if len(b) < 3.
func PutUint24(b []byte, v uint32) {
	_ = b[2]
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// AppendUint24 appends the low 24 bits of v in big-endian order.
func AppendUint24(b []byte, v uint32) []byte {
	return append(b, byte(v>>16), byte(v>>8), byte(v))
}
