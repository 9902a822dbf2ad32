package compress

import (
	"fmt"

	"github.com/arloliu/mcnbt/errs"
	"github.com/arloliu/mcnbt/format"
)

// MaxDecompressedSize bounds the output of a single Decompress call.
// A chunk document or level.dat is far below this; anything larger is
// treated as a corrupt or hostile stream.
const MaxDecompressedSize = 256 << 20

// Compressor compresses one chunk payload or standalone NBT file.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Input slice is not modified
	//   - Returned slice may alias the input only for the no-op codec
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// Example:
//
//	codec, err := compress.GetCodec(format.CompressionZlib)
//	if err != nil {
//	    return err
//	}
//	raw, err := codec.Decompress(payload)
//	if err != nil {
//	    return fmt.Errorf("chunk (%d, %d): %w", x, z, err)
//	}
//
// Thread Safety: all codecs in this package are safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Error conditions:
	//   - Returns an error wrapping errs.ErrDecompression if the stream is
	//     malformed, truncated or fails its checksum
	//   - Returns an error wrapping errs.ErrDecompression if the output would
	//     exceed MaxDecompressedSize
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec is a factory function that creates a Codec for an Anvil compression scheme.
//
// Custom (scheme 127) codecs are backed by a fresh NewCustomRegistry and
// compress with ZstdCodecName.
//
// Parameters:
//   - scheme: compression scheme id; the external flag is ignored
//   - target: description of target usage (for error messages)
//
// Returns:
//   - Codec: codec instance for the specified scheme
//   - error: errs.ErrUnsupportedCompression for unknown ids
func CreateCodec(scheme format.CompressionType, target string) (Codec, error) {
	switch scheme.Scheme() {
	case format.CompressionGzip:
		return NewGzipCodec(), nil
	case format.CompressionZlib:
		return NewZlibCodec(), nil
	case format.CompressionNone:
		return NewNoOpCodec(), nil
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	case format.CompressionCustom:
		return NewCustomRegistry().Codec(ZstdCodecName)
	default:
		return nil, fmt.Errorf("%w: invalid %s compression: %d", errs.ErrUnsupportedCompression, target, uint8(scheme))
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionGzip: NewGzipCodec(),
	format.CompressionZlib: NewZlibCodec(),
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec retrieves a built-in Codec for the specified compression scheme.
//
// Scheme 127 is not served here because its codec depends on the algorithm
// id embedded in each payload; use a CustomRegistry instead.
func GetCodec(scheme format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[scheme.Scheme()]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s (%d)", errs.ErrUnsupportedCompression, scheme, uint8(scheme))
}
