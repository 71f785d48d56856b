// Package vlq implements the base64 variable-length quantity encoding used
// by the "mappings" field of Source Map v3 objects.
//
// Each base64 digit carries 5 data bits, bit 5 is the continuation bit. The
// encoded value is doubled and the sign is stored in bit 0, so small
// negative numbers stay short.
package vlq

import (
	"errors"
	"fmt"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// ErrMalformed is returned when a VLQ sequence contains a character outside
// the base64 alphabet or ends before a terminating digit.
var ErrMalformed = errors.New("malformed VLQ sequence")

var reverse [256]int8

func init() {
	for i := range reverse {
		reverse[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		reverse[alphabet[i]] = int8(i)
	}
}

// Encode appends the VLQ encoding of v to buf and returns the extended
// slice.
func Encode(buf []byte, v int) []byte {
	u := v << 1
	if v < 0 {
		u = (-v)<<1 | 1
	}
	for {
		digit := u & 31
		u >>= 5
		if u != 0 {
			digit |= 32
		}
		buf = append(buf, alphabet[digit])
		if u == 0 {
			return buf
		}
	}
}

// EncodeString returns the VLQ encoding of v.
func EncodeString(v int) string {
	return string(Encode(nil, v))
}

// Decode reads a single VLQ value from s starting at pos. It returns the
// value and the position of the first byte after the sequence.
func Decode(s string, pos int) (value, next int, err error) {
	u := 0
	shift := uint(0)
	for {
		if pos >= len(s) {
			return 0, pos, fmt.Errorf("%w: unterminated sequence", ErrMalformed)
		}
		d := reverse[s[pos]]
		if d < 0 {
			return 0, pos, fmt.Errorf("%w: invalid digit %q at offset %d", ErrMalformed, s[pos], pos)
		}
		pos++
		u |= int(d&31) << shift
		if d&32 == 0 {
			break
		}
		shift += 5
	}
	if u&1 != 0 {
		return -(u >> 1), pos, nil
	}
	return u >> 1, pos, nil
}
