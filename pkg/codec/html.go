package codec

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	numericRefRegex = regexp.MustCompile(`&#([xX][0-9a-fA-F]+|[0-9]+);?`)
	charRefRegex    = regexp.MustCompile(`&(?:#[xX][0-9a-fA-F]+|#[0-9]+|[A-Za-z][A-Za-z0-9]*);?`)
)

// HTMLEntity decodes named, decimal and hexadecimal HTML character references.
// Named references are decoded only with their terminating semicolon, so query
// strings such as "a=1&copy=2" pass through unchanged. Numeric references are
// decoded with or without it.
type HTMLEntity struct{}

func (HTMLEntity) Name() string { return NameHTMLEntity }

func (HTMLEntity) Decode(input string) (string, error) {
	if strings.IndexByte(input, '&') < 0 {
		return input, nil
	}

	for _, m := range numericRefRegex.FindAllStringSubmatch(input, -1) {
		digits, base := m[1], 10
		if digits[0] == 'x' || digits[0] == 'X' {
			digits, base = digits[1:], 16
		}
		cp, err := strconv.ParseUint(digits, base, 32)
		if err != nil || !validCodePoint(cp) {
			return input, fmt.Errorf("%w: invalid numeric character reference", ErrMalformed)
		}
	}

	return charRefRegex.ReplaceAllStringFunc(input, func(ref string) string {
		if ref[1] != '#' && ref[len(ref)-1] != ';' {
			return ref
		}
		return html.UnescapeString(ref)
	}), nil
}

// Encode escapes the five HTML special characters.
func (HTMLEntity) Encode(input string) string {
	return html.EscapeString(input)
}
