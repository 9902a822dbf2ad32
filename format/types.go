package format

type (
	CompressionType uint8
	TagType         uint8
)

const (
	CompressionGzip   CompressionType = 0x1  // CompressionGzip represents RFC 1952 gzip.
	CompressionZlib   CompressionType = 0x2  // CompressionZlib represents RFC 1950 zlib.
	CompressionNone   CompressionType = 0x3  // CompressionNone represents uncompressed data.
	CompressionLZ4    CompressionType = 0x4  // CompressionLZ4 represents lz4-java LZ4Block framing.
	CompressionCustom CompressionType = 0x7F // CompressionCustom represents a namespaced third-party codec.

	// ExternalFlag is set in a chunk record's scheme byte when the payload lives
	// in a sibling .mcc file.
	ExternalFlag CompressionType = 0x80
)

const (
	TagEnd       TagType = 0  // TagEnd terminates a compound.
	TagByte      TagType = 1  // TagByte is a signed 8-bit integer.
	TagShort     TagType = 2  // TagShort is a signed 16-bit integer.
	TagInt       TagType = 3  // TagInt is a signed 32-bit integer.
	TagLong      TagType = 4  // TagLong is a signed 64-bit integer.
	TagFloat     TagType = 5  // TagFloat is an IEEE-754 binary32.
	TagDouble    TagType = 6  // TagDouble is an IEEE-754 binary64.
	TagByteArray TagType = 7  // TagByteArray is a length-prefixed byte array.
	TagString    TagType = 8  // TagString is a MUTF-8 string.
	TagList      TagType = 9  // TagList is a homogeneous list.
	TagCompound  TagType = 10 // TagCompound is an ordered set of named tags.
	TagIntArray  TagType = 11 // TagIntArray is a length-prefixed int32 array.
	TagLongArray TagType = 12 // TagLongArray is a length-prefixed int64 array.
)

// IsExternal reports whether the external flag is set.
func (c CompressionType) IsExternal() bool {
	return c&ExternalFlag != 0
}

// Scheme strips the external flag.
func (c CompressionType) Scheme() CompressionType {
	return c &^ ExternalFlag
}

func (c CompressionType) String() string {
	suffix := ""
	if c.IsExternal() {
		suffix = "+External"
	}

	switch c.Scheme() {
	case CompressionGzip:
		return "Gzip" + suffix
	case CompressionZlib:
		return "Zlib" + suffix
	case CompressionNone:
		return "None" + suffix
	case CompressionLZ4:
		return "LZ4" + suffix
	case CompressionCustom:
		return "Custom" + suffix
	default:
		return "Unknown"
	}
}

// Valid reports whether t is one of the thirteen defined tag types.
func (t TagType) Valid() bool {
	return t <= TagLongArray
}

func (t TagType) String() string {
	switch t {
	case TagEnd:
		return "End"
	case TagByte:
		return "Byte"
	case TagShort:
		return "Short"
	case TagInt:
		return "Int"
	case TagLong:
		return "Long"
	case TagFloat:
		return "Float"
	case TagDouble:
		return "Double"
	case TagByteArray:
		return "ByteArray"
	case TagString:
		return "String"
	case TagList:
		return "List"
	case TagCompound:
		return "Compound"
	case TagIntArray:
		return "IntArray"
	case TagLongArray:
		return "LongArray"
	default:
		return "Unknown"
	}
}
