// Package mutf8 implements the modified UTF-8 string encoding used by NBT.
//
// Modified UTF-8 differs from standard UTF-8 in two places:
//   - U+0000 is written as the two byte overlong form C0 80, so encoded
//     strings never contain a zero byte.
//   - Code points above U+FFFF are written as a UTF-16 surrogate pair, each
//     half encoded as its own three byte sequence (six bytes total).
//
// Decoding produces a Go string. Well-formed input becomes valid UTF-8; a
// surrogate pair is combined into one four byte sequence. Input that is
// structurally sound but not valid UTF-8 (a lone surrogate half, an overlong
// two or three byte form other than C0 80) is kept verbatim in the Go string
// so that Encode reproduces the original bytes exactly.
package mutf8

import (
	"fmt"
	"unicode/utf8"

	"github.com/arloliu/mcnbt/endian"
	"github.com/arloliu/mcnbt/errs"
)

// MaxLen is the largest encoded length that fits the 16-bit NBT string prefix.
const MaxLen = 0xFFFF

const (
	surrHighMin = 0xD800
	surrLowMin  = 0xDC00
	surrBase    = 0x10000
)

// Decode converts modified UTF-8 bytes into a Go string.
//
// Returns an error wrapping errs.ErrEncoding for a raw zero byte, a stray
// continuation byte, a four byte standard UTF-8 lead, an invalid continuation
// byte or a sequence cut short by the end of input.
func Decode(b []byte) (string, error) {
	if isPlainASCII(b) {
		return string(b), nil
	}

	out := make([]byte, 0, len(b)+len(b)/8)
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == 0:
			return "", fmt.Errorf("%w: raw zero byte at offset %d", errs.ErrEncoding, i)
		case c < 0x80:
			out = append(out, c)
			i++
		case c < 0xC0:
			return "", fmt.Errorf("%w: unexpected continuation byte 0x%02x at offset %d", errs.ErrEncoding, c, i)
		case c < 0xE0:
			if err := checkCont(b, i, 2); err != nil {
				return "", err
			}
			if c == 0xC0 && b[i+1] == 0x80 {
				out = append(out, 0)
			} else {
				out = append(out, b[i:i+2]...)
			}
			i += 2
		case c < 0xF0:
			if err := checkCont(b, i, 3); err != nil {
				return "", err
			}
			if r, ok := pairAt(b, i); ok {
				out = utf8.AppendRune(out, r)
				i += 6

				continue
			}
			out = append(out, b[i:i+3]...)
			i += 3
		default:
			return "", fmt.Errorf("%w: invalid lead byte 0x%02x at offset %d", errs.ErrEncoding, c, i)
		}
	}

	return string(out), nil
}

// Encode converts a Go string into modified UTF-8 bytes.
//
// Returns an error wrapping errs.ErrEncoding if s contains bytes that are
// neither valid UTF-8 nor one of the verbatim forms Decode may produce, or
// if the encoded form exceeds MaxLen bytes.
func Encode(s string) ([]byte, error) {
	out, err := Append(make([]byte, 0, len(s)), s)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Append appends the modified UTF-8 form of s to dst without a length prefix.
func Append(dst []byte, s string) ([]byte, error) {
	start := len(dst)
	if isPlainASCIIString(s) {
		dst = append(dst, s...)
	} else {
		var err error
		dst, err = appendSlow(dst, s)
		if err != nil {
			return dst[:start], err
		}
	}

	if n := len(dst) - start; n > MaxLen {
		return dst[:start], fmt.Errorf("%w: encoded length %d exceeds %d bytes", errs.ErrEncoding, n, MaxLen)
	}

	return dst, nil
}

// AppendString appends s framed as an NBT string: a big-endian uint16 byte
// count followed by the modified UTF-8 bytes.
func AppendString(dst []byte, s string) ([]byte, error) {
	start := len(dst)
	dst = append(dst, 0, 0)

	dst, err := Append(dst, s)
	if err != nil {
		return dst[:start], err
	}

	endian.GetBigEndianEngine().PutUint16(dst[start:], uint16(len(dst)-start-2))

	return dst, nil
}

// EncodedLen returns the number of bytes Encode would produce for s.
func EncodedLen(s string) (int, error) {
	if isPlainASCIIString(s) {
		if len(s) > MaxLen {
			return 0, fmt.Errorf("%w: encoded length %d exceeds %d bytes", errs.ErrEncoding, len(s), MaxLen)
		}

		return len(s), nil
	}

	b, err := Encode(s)
	if err != nil {
		return 0, err
	}

	return len(b), nil
}

func appendSlow(dst []byte, s string) ([]byte, error) {
	for i := 0; i < len(s); {
		c := s[i]
		if c == 0 {
			dst = append(dst, 0xC0, 0x80)
			i++

			continue
		}
		if c < 0x80 {
			dst = append(dst, c)
			i++

			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			n := verbatimLen(s[i:])
			if n == 0 {
				return dst, fmt.Errorf("%w: invalid byte 0x%02x at offset %d", errs.ErrEncoding, c, i)
			}
			dst = append(dst, s[i:i+n]...)
			i += n

			continue
		}

		if r >= surrBase {
			v := r - surrBase
			dst = appendThree(dst, surrHighMin+(v>>10))
			dst = appendThree(dst, surrLowMin+(v&0x3FF))
		} else {
			dst = append(dst, s[i:i+size]...)
		}
		i += size
	}

	return dst, nil
}

// verbatimLen reports the length of a non-UTF-8 sequence that Decode keeps
// verbatim, or 0 if s does not start with one.
func verbatimLen(s string) int {
	if len(s) < 2 || !isCont(s[1]) {
		return 0
	}

	switch c := s[0]; {
	case c == 0xC0 || c == 0xC1:
		return 2
	case c == 0xE0 && s[1] < 0xA0, c == 0xED && s[1] >= 0xA0:
		if len(s) >= 3 && isCont(s[2]) {
			return 3
		}
	}

	return 0
}

func appendThree(dst []byte, r rune) []byte {
	return append(dst,
		0xE0|byte(r>>12),
		0x80|byte(r>>6)&0x3F,
		0x80|byte(r)&0x3F,
	)
}

// pairAt reports whether b[i:] starts with an encoded high surrogate followed
// by an encoded low surrogate, and returns the combined code point.
func pairAt(b []byte, i int) (rune, bool) {
	if i+6 > len(b) {
		return 0, false
	}
	if b[i] != 0xED || b[i+1] < 0xA0 || b[i+1] > 0xAF {
		return 0, false
	}
	if b[i+3] != 0xED || b[i+4] < 0xB0 || b[i+4] > 0xBF || !isCont(b[i+5]) {
		return 0, false
	}

	hi := rune(b[i+1]&0x0F)<<6 | rune(b[i+2]&0x3F)
	lo := rune(b[i+4]&0x0F)<<6 | rune(b[i+5]&0x3F)

	return surrBase + hi<<10 + lo, true
}

func checkCont(b []byte, i, n int) error {
	if i+n > len(b) {
		return fmt.Errorf("%w: truncated %d-byte sequence at offset %d", errs.ErrEncoding, n, i)
	}
	for j := 1; j < n; j++ {
		if !isCont(b[i+j]) {
			return fmt.Errorf("%w: invalid continuation byte 0x%02x at offset %d", errs.ErrEncoding, b[i+j], i+j)
		}
	}

	return nil
}

func isCont(c byte) bool {
	return c&0xC0 == 0x80
}

func isPlainASCII(b []byte) bool {
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			return false
		}
	}

	return true
}

func isPlainASCIIString(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 || s[i] >= 0x80 {
			return false
		}
	}

	return true
}
