package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Percent decodes URL percent-encoding (%HH triplets).
// A '%' that is not followed by two hex digits is kept literally.
type Percent struct{}

func (Percent) Name() string { return NamePercent }

func (Percent) Decode(input string) (string, error) {
	if strings.IndexByte(input, '%') < 0 {
		return input, nil
	}

	buf := make([]byte, 0, len(input))
	decoded := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		if c == '%' && i+2 < len(input) && isHex(input[i+1]) && isHex(input[i+2]) {
			b := unhex(input[i+1])<<4 | unhex(input[i+2])
			if b == 0 {
				return input, fmt.Errorf("%w: percent-encoded NUL byte", ErrMalformed)
			}
			buf = append(buf, b)
			i += 2
			decoded = true
			continue
		}
		buf = append(buf, c)
	}

	if !decoded {
		return input, nil
	}
	if !utf8.Valid(buf) {
		return input, fmt.Errorf("%w: percent-decoded bytes are not valid UTF-8", ErrMalformed)
	}
	return string(buf), nil
}

// Encode percent-encodes every byte outside the RFC 3986 unreserved set.
func (Percent) Encode(input string) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); i++ {
		c := input[i]
		if isAlphanumeric(rune(c)) || c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0F])
	}
	return b.String()
}
