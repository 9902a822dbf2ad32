package compress

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
	"github.com/pierrec/xxHash/xxHash32"

	"github.com/arloliu/mcnbt/endian"
	"github.com/arloliu/mcnbt/errs"
)

// LZ4Block framing, as written by lz4-java's LZ4BlockOutputStream:
//
//	magic "LZ4Block" | token | compressed len | original len | checksum | data
//
// All integers are little-endian int32. The token packs the method in the
// high nibble and log2(block size)-10 in the low nibble. A block with both
// lengths zero ends the stream.
const (
	lz4BlockHeaderLen = 21
	lz4BlockSize      = 64 << 10
	lz4BlockLevel     = 6 // 64 KiB blocks: log2(65536) - 10
	lz4LevelBase      = 10
	lz4MethodRaw      = 0x10
	lz4MethodLZ4      = 0x20
	lz4ChecksumSeed   = 0x9747b28c
	lz4ChecksumMask   = 0x0FFFFFFF
)

var lz4BlockMagic = []byte("LZ4Block")

var le = endian.GetLittleEndianEngine()

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec implements scheme 4, the LZ4Block stream format used by
// Minecraft 1.20.5+ when region-file-compression=lz4.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4Codec creates a new LZ4Block codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Compress splits data into 64 KiB blocks and frames each one.
//
// Blocks that do not shrink are stored raw. The output always ends with the
// empty terminator block, so empty input yields a single header.
func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	blocks := (len(data) + lz4BlockSize - 1) / lz4BlockSize
	out := make([]byte, 0, len(data)+(blocks+1)*lz4BlockHeaderLen)
	scratch := make([]byte, lz4.CompressBlockBound(min(len(data), lz4BlockSize)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	for len(data) > 0 {
		block := data[:min(len(data), lz4BlockSize)]
		data = data[len(block):]

		n, err := lc.CompressBlock(block, scratch)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}

		checksum := xxHash32.Checksum(block, lz4ChecksumSeed) & lz4ChecksumMask
		if n == 0 || n >= len(block) {
			out = appendLZ4Header(out, lz4MethodRaw, len(block), len(block), checksum)
			out = append(out, block...)
		} else {
			out = appendLZ4Header(out, lz4MethodLZ4, n, len(block), checksum)
			out = append(out, scratch[:n]...)
		}
	}

	return appendLZ4Header(out, lz4MethodRaw, 0, 0, 0), nil
}

func appendLZ4Header(dst []byte, method byte, compressed, original int, checksum uint32) []byte {
	dst = append(dst, lz4BlockMagic...)
	dst = append(dst, method|lz4BlockLevel)
	dst = le.AppendUint32(dst, uint32(compressed))
	dst = le.AppendUint32(dst, uint32(original))

	return le.AppendUint32(dst, checksum)
}

// Decompress decodes an LZ4Block stream.
//
// Decoding stops at the terminator block; bytes after it are ignored. A
// stream that ends cleanly on a block boundary without a terminator is
// accepted, since some writers omit it.
func (c LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: lz4: empty stream", errs.ErrDecompression)
	}

	var out []byte
	for pos := 0; pos < len(data); {
		if len(data)-pos < lz4BlockHeaderLen {
			return nil, fmt.Errorf("%w: lz4: truncated block header at %d", errs.ErrDecompression, pos)
		}
		hdr := data[pos : pos+lz4BlockHeaderLen]
		if !bytes.Equal(hdr[:len(lz4BlockMagic)], lz4BlockMagic) {
			return nil, fmt.Errorf("%w: lz4: bad block magic at %d", errs.ErrDecompression, pos)
		}

		method := hdr[8] & 0xF0
		maxLen := 1 << (lz4LevelBase + int(hdr[8]&0x0F))
		compLen := int(int32(le.Uint32(hdr[9:13])))
		origLen := int(int32(le.Uint32(hdr[13:17])))
		checksum := le.Uint32(hdr[17:21])

		switch {
		case method != lz4MethodRaw && method != lz4MethodLZ4,
			compLen < 0, origLen < 0, origLen > maxLen,
			(origLen == 0) != (compLen == 0),
			method == lz4MethodRaw && compLen != origLen:
			return nil, fmt.Errorf("%w: lz4: invalid block header at %d", errs.ErrDecompression, pos)
		}
		pos += lz4BlockHeaderLen

		if origLen == 0 {
			if checksum != 0 {
				return nil, fmt.Errorf("%w: lz4: non-zero checksum on terminator", errs.ErrDecompression)
			}

			break
		}

		if len(data)-pos < compLen {
			return nil, fmt.Errorf("%w: lz4: truncated block at %d", errs.ErrDecompression, pos)
		}
		if len(out)+origLen > MaxDecompressedSize {
			return nil, fmt.Errorf("%w: lz4: output exceeds %d bytes", errs.ErrDecompression, MaxDecompressedSize)
		}

		start := len(out)
		out = append(out, make([]byte, origLen)...)
		block := out[start:]
		src := data[pos : pos+compLen]
		pos += compLen

		if method == lz4MethodRaw {
			copy(block, src)
		} else {
			n, err := lz4.UncompressBlock(src, block)
			if err != nil {
				return nil, fmt.Errorf("%w: lz4: %w", errs.ErrDecompression, err)
			}
			if n != origLen {
				return nil, fmt.Errorf("%w: lz4: block decoded to %d bytes, want %d", errs.ErrDecompression, n, origLen)
			}
		}

		if xxHash32.Checksum(block, lz4ChecksumSeed)&lz4ChecksumMask != checksum {
			return nil, fmt.Errorf("%w: lz4: block checksum mismatch", errs.ErrDecompression)
		}
	}

	if out == nil {
		out = []byte{}
	}

	return out, nil
}
