package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/mcnbt/errs"
)

// S2Codec is a raw S2 block codec, carried under scheme 127 as S2CodecName.
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Compress compresses the input data using S2 compression.
func (c S2Codec) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

// Decompress decompresses the input data using S2 decompression.
func (c S2Codec) Decompress(data []byte) ([]byte, error) {
	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("%w: s2: %w", errs.ErrDecompression, err)
	}
	if n > MaxDecompressedSize {
		return nil, fmt.Errorf("%w: s2: output exceeds %d bytes", errs.ErrDecompression, MaxDecompressedSize)
	}

	out, err := s2.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: s2: %w", errs.ErrDecompression, err)
	}

	return out, nil
}
