package codec

import (
	"fmt"
	"strings"
)

// CSS decodes CSS hexadecimal escapes: a backslash followed by one to six
// hex digits and an optional single whitespace terminator.
type CSS struct{}

func (CSS) Name() string { return NameCSS }

func (CSS) Decode(input string) (string, error) {
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
		if !isHex(input[i+1]) {
			b.WriteByte(c)
			b.WriteByte(input[i+1])
			i++
			continue
		}

		j := i + 1
		var cp uint64
		for j < len(input) && j < i+7 && isHex(input[j]) {
			cp = cp<<4 | uint64(unhex(input[j]))
			j++
		}
		if !validCodePoint(cp) {
			return input, fmt.Errorf("%w: invalid code point in CSS escape", ErrMalformed)
		}
		b.WriteRune(rune(cp))

		if j < len(input) {
			switch input[j] {
			case ' ', '\t', '\n', '\f':
				j++
			case '\r':
				j++
				if j < len(input) && input[j] == '\n' {
					j++
				}
			}
		}
		i = j - 1
		decoded = true
	}

	if !decoded {
		return input, nil
	}
	return b.String(), nil
}

// Encode escapes every non-alphanumeric character as "\HH ".
func (CSS) Encode(input string) string {
	var b strings.Builder
	b.Grow(len(input) * 2)
	for _, r := range input {
		if isAlphanumeric(r) {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, `\%X `, r)
	}
	return b.String()
}
