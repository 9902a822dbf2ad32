// Package errs defines the sentinel errors shared by the NBT codec and the
// Anvil region store.
//
// Errors returned by mcnbt packages wrap one of these sentinels, so callers
// classify failures with errors.Is:
//
//	data, ok, err := r.GetChunk(3, 7)
//	if errors.Is(err, errs.ErrCorruptRecord) {
//	    // skip this chunk, the rest of the region is still readable
//	}
//
// Failures coming from the operating system (open, read, mmap, rename) are
// passed through wrapped with %w and keep their original identity, e.g.
// errors.Is(err, fs.ErrNotExist).
package errs

import "errors"

// NBT decoding and encoding.
var (
	// ErrTruncatedInput is returned when the input ends in the middle of a field.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrInvalidTagType is returned for a tag type byte outside 0..12, or an
	// End tag where a payload is required.
	ErrInvalidTagType = errors.New("invalid tag type")
	// ErrNegativeLength is returned for a negative array, list or string length.
	ErrNegativeLength = errors.New("negative length")
	// ErrEncoding is returned for malformed MUTF-8 or strings that cannot be framed.
	ErrEncoding = errors.New("invalid string encoding")
	// ErrListTypeMismatch is returned when a list element does not match the list type.
	ErrListTypeMismatch = errors.New("list element type mismatch")
	// ErrDuplicateKey is returned when a compound repeats a key.
	ErrDuplicateKey = errors.New("duplicate compound key")
	// ErrDepthExceeded is returned when nesting exceeds the decoder limit.
	ErrDepthExceeded = errors.New("nesting depth exceeded")
	// ErrLengthOverflow is returned when a length does not fit its wire field.
	ErrLengthOverflow = errors.New("length overflow")
	// ErrUnsupportedType is returned by Marshal/Unmarshal for Go types without an NBT mapping.
	ErrUnsupportedType = errors.New("unsupported type")
)

// Region file access.
var (
	ErrOutOfRange             = errors.New("chunk coordinate out of range")
	ErrCorruptRecord          = errors.New("corrupt chunk record")
	ErrDecompression          = errors.New("decompression failed")
	ErrAllocationFailure      = errors.New("sector allocation failed")
	ErrUnsupportedCompression = errors.New("unsupported compression scheme")
	ErrExternalChunk          = errors.New("external chunk unavailable")
	ErrReadOnly               = errors.New("region is read-only")
	ErrClosed                 = errors.New("region is closed")
)
