package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"

	"github.com/arloliu/mcnbt/errs"
)

var zlibWriterPool = sync.Pool{
	New: func() any {
		w, err := zlib.NewWriterLevel(nil, zlib.DefaultCompression)
		if err != nil {
			panic(fmt.Sprintf("failed to create zlib writer: %v", err))
		}

		return w
	},
}

var zlibReaderPool sync.Pool

// ZlibCodec implements scheme 2 (RFC 1950), the default for region chunks.
type ZlibCodec struct{}

var _ Codec = (*ZlibCodec)(nil)

// NewZlibCodec creates a new zlib codec.
func NewZlibCodec() ZlibCodec {
	return ZlibCodec{}
}

// Compress compresses data into a zlib stream.
func (c ZlibCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 16)

	w, _ := zlibWriterPool.Get().(*zlib.Writer)
	defer zlibWriterPool.Put(w)
	w.Reset(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses a zlib stream and verifies its Adler-32 trailer.
func (c ZlibCodec) Decompress(data []byte) ([]byte, error) {
	src := bytes.NewReader(data)

	var r io.ReadCloser
	if pooled, ok := zlibReaderPool.Get().(io.ReadCloser); ok {
		if err := pooled.(zlib.Resetter).Reset(src, nil); err != nil {
			zlibReaderPool.Put(pooled)
			return nil, fmt.Errorf("%w: zlib: %w", errs.ErrDecompression, err)
		}
		r = pooled
	} else {
		var err error
		if r, err = zlib.NewReader(src); err != nil {
			return nil, fmt.Errorf("%w: zlib: %w", errs.ErrDecompression, err)
		}
	}
	defer zlibReaderPool.Put(r)

	out, err := readBounded(r, len(data))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %w", errs.ErrDecompression, err)
	}

	return out, nil
}
