package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/arloliu/mcnbt/errs"
)

// gzipWriterPool pools gzip writers; a writer carries several hundred KiB of
// deflate state that is expensive to rebuild per chunk.
var gzipWriterPool = sync.Pool{
	New: func() any {
		w, err := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		if err != nil {
			panic(fmt.Sprintf("failed to create gzip writer: %v", err))
		}

		return w
	},
}

var gzipReaderPool sync.Pool

// GzipCodec implements scheme 1 (RFC 1952), the format of level.dat and
// player files.
type GzipCodec struct{}

var _ Codec = (*GzipCodec)(nil)

// NewGzipCodec creates a new gzip codec.
func NewGzipCodec() GzipCodec {
	return GzipCodec{}
}

// Compress compresses data into a single gzip member.
func (c GzipCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 32)

	w, _ := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(w)
	w.Reset(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses a gzip stream. Concatenated members are accepted.
func (c GzipCodec) Decompress(data []byte) ([]byte, error) {
	src := bytes.NewReader(data)

	r, ok := gzipReaderPool.Get().(*gzip.Reader)
	if ok {
		if err := r.Reset(src); err != nil {
			gzipReaderPool.Put(r)
			return nil, fmt.Errorf("%w: gzip: %w", errs.ErrDecompression, err)
		}
	} else {
		var err error
		if r, err = gzip.NewReader(src); err != nil {
			return nil, fmt.Errorf("%w: gzip: %w", errs.ErrDecompression, err)
		}
	}
	defer gzipReaderPool.Put(r)

	out, err := readBounded(r, len(data))
	if err != nil {
		return nil, fmt.Errorf("%w: gzip: %w", errs.ErrDecompression, err)
	}

	return out, nil
}

// readBounded drains r, failing once more than MaxDecompressedSize bytes
// would be produced. hint is the compressed size.
func readBounded(r io.Reader, hint int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(min(hint*4, MaxDecompressedSize))

	n, err := buf.ReadFrom(io.LimitReader(r, MaxDecompressedSize+1))
	if err != nil {
		return nil, err
	}
	if n > MaxDecompressedSize {
		return nil, fmt.Errorf("output exceeds %d bytes", MaxDecompressedSize)
	}

	return buf.Bytes(), nil
}
