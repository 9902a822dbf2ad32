// Package mcnbt reads and writes Minecraft Named Binary Tag (NBT) documents
// and Anvil region files.
//
// The heavy lifting lives in subpackages:
//
//   - nbt: the tag model, parser, encoder, struct marshaling and text dump
//   - region: the Anvil .mca chunk store
//   - compress: gzip, zlib, LZ4 and custom chunk codecs
//   - mutf8: the modified UTF-8 string codec
//
// This package wraps the most common entry points.
//
// # Basic Usage
//
// Reading and rewriting level.dat:
//
//	import "github.com/arloliu/mcnbt"
//
//	doc, err := mcnbt.ReadFile("world/level.dat")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, _ := nbt.Get[*nbt.Compound](doc.Tag.(*nbt.Compound), "Data")
//	data.Set("LevelName", nbt.String("renamed"))
//
//	if err := mcnbt.WriteFile("world/level.dat", doc); err != nil {
//	    log.Fatal(err)
//	}
//
// Reading a chunk from a region:
//
//	r, err := mcnbt.OpenRegion("world/region/r.0.0.mca", region.WithReadOnly())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	chunk, ok, err := r.GetChunkNBT(3, 7)
package mcnbt

import (
	"fmt"
	"os"

	"github.com/arloliu/mcnbt/compress"
	"github.com/arloliu/mcnbt/format"
	"github.com/arloliu/mcnbt/nbt"
	"github.com/arloliu/mcnbt/region"
)

// Parse decodes an uncompressed NBT document.
//
// It is a shortcut for nbt.Parse. Bytes after the document are ignored.
func Parse(data []byte, opts ...nbt.DecoderOption) (nbt.NamedTag, error) {
	return nbt.Parse(data, opts...)
}

// Encode serializes nt into an uncompressed NBT document.
func Encode(nt nbt.NamedTag) ([]byte, error) {
	return nbt.Encode(nt)
}

// Decompress detects the compression of a standalone NBT file (gzip, zlib,
// LZ4Block or none) and returns the decompressed document bytes along with
// the detected scheme.
//
// Uncompressed input is returned as is, without copying.
func Decompress(data []byte) ([]byte, format.CompressionType, error) {
	scheme := compress.Detect(data)
	if scheme == format.CompressionNone {
		return data, scheme, nil
	}

	codec, err := compress.GetCodec(scheme)
	if err != nil {
		return nil, scheme, err
	}
	out, err := codec.Decompress(data)
	if err != nil {
		return nil, scheme, err
	}

	return out, scheme, nil
}

// Decode decompresses data as Decompress does and parses the result.
//
// Example:
//
//	raw, _ := os.ReadFile("servers.dat")
//	doc, err := mcnbt.Decode(raw)
func Decode(data []byte, opts ...nbt.DecoderOption) (nbt.NamedTag, error) {
	raw, _, err := Decompress(data)
	if err != nil {
		return nbt.NamedTag{}, err
	}

	return nbt.Parse(raw, opts...)
}

// ReadFile reads and decodes the NBT file at path. Gzip (level.dat,
// player data), zlib and uncompressed (servers.dat) files are recognized
// automatically.
func ReadFile(path string, opts ...nbt.DecoderOption) (nbt.NamedTag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nbt.NamedTag{}, fmt.Errorf("mcnbt: %w", err)
	}

	nt, err := Decode(data, opts...)
	if err != nil {
		return nbt.NamedTag{}, fmt.Errorf("mcnbt: %s: %w", path, err)
	}

	return nt, nil
}

// WriteFile encodes nt and writes it gzip-compressed to path, the format the
// game uses for level.dat and player files.
func WriteFile(path string, nt nbt.NamedTag) error {
	return WriteFileCompressed(path, nt, format.CompressionGzip)
}

// WriteFileCompressed encodes nt and writes it to path using scheme.
//
// Parameters:
//   - path: Destination file, created or truncated
//   - nt: Document to write
//   - scheme: format.CompressionGzip, CompressionZlib, CompressionLZ4 or
//     CompressionNone
//
// Returns an error if nt cannot be encoded, scheme is not a standalone file
// compression, or the write fails.
func WriteFileCompressed(path string, nt nbt.NamedTag, scheme format.CompressionType) error {
	if scheme == format.CompressionCustom {
		return fmt.Errorf("mcnbt: %s compression is only valid inside region files", scheme)
	}

	data, err := nbt.Encode(nt)
	if err != nil {
		return fmt.Errorf("mcnbt: %w", err)
	}

	codec, err := compress.GetCodec(scheme)
	if err != nil {
		return fmt.Errorf("mcnbt: %w", err)
	}
	out, err := codec.Compress(data)
	if err != nil {
		return fmt.Errorf("mcnbt: %w", err)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("mcnbt: %w", err)
	}

	return nil
}

// OpenRegion opens an existing Anvil region file. It is a shortcut for
// region.Open.
func OpenRegion(path string, opts ...region.Option) (*region.Region, error) {
	return region.Open(path, opts...)
}

// CreateRegion creates an empty Anvil region file, truncating any existing
// file at path.
func CreateRegion(path string, opts ...region.Option) (*region.Region, error) {
	return region.Create(path, opts...)
}
