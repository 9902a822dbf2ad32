// Package compress provides the chunk compression codecs of the Anvil region format.
//
// Every chunk record in a region file carries a one-byte scheme id in front
// of its payload. This package maps each id to a Codec:
//
//	| Scheme | Id  | Codec         | Notes                                  |
//	|--------|-----|---------------|----------------------------------------|
//	| Gzip   | 1   | GzipCodec     | RFC 1952, also level.dat/playerdata    |
//	| Zlib   | 2   | ZlibCodec     | RFC 1950, the vanilla default          |
//	| None   | 3   | NoOpCodec     | stored as is                           |
//	| LZ4    | 4   | LZ4Codec      | lz4-java LZ4Block stream framing       |
//	| Custom | 127 | CustomCodec   | u16 algorithm id, then codec payload   |
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// GetCodec returns a shared built-in codec for schemes 1 to 4. Scheme 127
// payloads name their algorithm, so they are resolved through a
// CustomRegistry, which starts with "mcnbt:zstd" and "mcnbt:s2":
//
//	reg := compress.NewCustomRegistry()
//	_ = reg.Register("example:brotli", myCodec)
//	codec, _ := reg.Codec(compress.ZstdCodecName)
//	payload, _ := codec.Compress(raw)
//
// # Standalone files
//
// Detect sniffs gzip, zlib and LZ4Block magic so callers can open a .dat file
// without knowing how it was written:
//
//	codec, err := compress.GetCodec(compress.Detect(data))
//
// # Limits
//
// Every Decompress call refuses to produce more than MaxDecompressedSize
// bytes and reports malformed input with an error wrapping
// errs.ErrDecompression.
//
// # Thread Safety
//
// All codecs are stateless values backed by sync.Pool instances of the
// underlying encoders and decoders, and are safe for concurrent use.
// CustomRegistry guards its map with a RWMutex.
package compress
