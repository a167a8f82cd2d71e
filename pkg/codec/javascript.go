package codec

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// JavaScript decodes JavaScript string escapes: \xHH, \uHHHH and \u{H...}.
// Other backslash escapes are left untouched.
type JavaScript struct{}

func (JavaScript) Name() string { return NameJavaScript }

func (JavaScript) Decode(input string) (string, error) {
	if strings.IndexByte(input, '\\') < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	decoded := false

	for i := 0; i < len(input); i++ {
		c := input[i]
		if c != '\\' || i+1 >= len(input) {
			b.WriteByte(c)
			continue
		}

		switch input[i+1] {
		case 'x':
			if i+3 >= len(input) || !isHex(input[i+2]) || !isHex(input[i+3]) {
				return input, fmt.Errorf("%w: truncated \\x escape", ErrMalformed)
			}
			r := rune(unhex(input[i+2])<<4 | unhex(input[i+3]))
			if r == 0 {
				return input, fmt.Errorf("%w: escaped NUL", ErrMalformed)
			}
			b.WriteRune(r)
			i += 3
			decoded = true

		case 'u':
			r, n, err := decodeJSUnicode(input[i:])
			if err != nil {
				return input, err
			}
			b.WriteRune(r)
			i += n - 1
			decoded = true

		default:
			// Keep the escape pair verbatim so "\\x41" stays a literal backslash.
			b.WriteByte(c)
			b.WriteByte(input[i+1])
			i++
		}
	}

	if !decoded {
		return input, nil
	}
	return b.String(), nil
}

// decodeJSUnicode decodes a \u escape at the start of s and returns the rune
// and the number of bytes consumed. Surrogate pairs written as two escapes
// are combined.
func decodeJSUnicode(s string) (rune, int, error) {
	if len(s) > 2 && s[2] == '{' {
		end := strings.IndexByte(s, '}')
		if end < 4 || end > 9 {
			return 0, 0, fmt.Errorf("%w: malformed \\u{} escape", ErrMalformed)
		}
		cp, err := strconv.ParseUint(s[3:end], 16, 32)
		if err != nil || !validCodePoint(cp) {
			return 0, 0, fmt.Errorf("%w: invalid code point in \\u{} escape", ErrMalformed)
		}
		return rune(cp), end + 1, nil
	}

	unit, ok := parseHex4(s, 2)
	if !ok {
		return 0, 0, fmt.Errorf("%w: truncated \\u escape", ErrMalformed)
	}

	switch {
	case unit == 0:
		return 0, 0, fmt.Errorf("%w: escaped NUL", ErrMalformed)
	case unit >= 0xD800 && unit <= 0xDBFF:
		if len(s) < 12 || s[6] != '\\' || s[7] != 'u' {
			return 0, 0, fmt.Errorf("%w: lone high surrogate", ErrMalformed)
		}
		low, ok := parseHex4(s, 8)
		if !ok || low < 0xDC00 || low > 0xDFFF {
			return 0, 0, fmt.Errorf("%w: invalid surrogate pair", ErrMalformed)
		}
		return utf16.DecodeRune(rune(unit), rune(low)), 12, nil
	case unit >= 0xDC00 && unit <= 0xDFFF:
		return 0, 0, fmt.Errorf("%w: lone low surrogate", ErrMalformed)
	}

	return rune(unit), 6, nil
}

func parseHex4(s string, at int) (uint32, bool) {
	if len(s) < at+4 {
		return 0, false
	}
	var v uint32
	for j := at; j < at+4; j++ {
		if !isHex(s[j]) {
			return 0, false
		}
		v = v<<4 | uint32(unhex(s[j]))
	}
	return v, true
}

// Encode escapes every non-alphanumeric character as \xHH or \uHHHH.
func (JavaScript) Encode(input string) string {
	var b strings.Builder
	b.Grow(len(input) * 2)
	for _, r := range input {
		switch {
		case isAlphanumeric(r) || r == ' ':
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02X`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04X\u%04X`, hi, lo)
		}
	}
	return b.String()
}
