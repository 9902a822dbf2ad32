// Package nbt reads and writes Named Binary Tag documents.
//
// NBT is a big-endian, self-describing tree format. Every document starts
// with a root tag that carries a type byte, a name and a payload. Strings
// use modified UTF-8 (see package mutf8).
//
// # Tag Model
//
// Each of the thirteen wire types has a Go type implementing Tag:
//
//	End        empty root marker
//	Byte       int8
//	Short      int16
//	Int        int32
//	Long       int64
//	Float      float32
//	Double     float64
//	ByteArray  []byte
//	String     string
//	*List      homogeneous, typed sequence
//	*Compound  ordered name -> Tag mapping
//	IntArray   []int32
//	LongArray  []int64
//
// Compounds preserve insertion order and lists keep their declared element
// type even when empty, so re-encoding a parsed document is bit-exact:
//
//	doc, err := nbt.Parse(data)
//	if err != nil {
//	    return err
//	}
//	again, _ := nbt.Encode(doc) // bytes.Equal(data, again)
//
// # Errors
//
// Parse failures are *SyntaxError values carrying the byte offset; they wrap
// the sentinels in package errs so callers can use errors.Is:
//
//	if errors.Is(err, errs.ErrTruncatedInput) { ... }
//
// # Struct Mapping
//
// Marshal and Unmarshal convert between Go values and tag trees using `nbt`
// struct tags.
package nbt
