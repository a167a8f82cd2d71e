package codec

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Unicode folds compatibility forms with NFKC normalization, so fullwidth
// and other look-alike characters ("＜script＞") reduce to their ASCII form.
// It is not part of the default codec list.
type Unicode struct{}

func (Unicode) Name() string { return NameUnicode }

func (Unicode) Decode(input string) (string, error) {
	if !utf8.ValidString(input) {
		return input, fmt.Errorf("%w: invalid UTF-8", ErrMalformed)
	}
	if norm.NFKC.IsNormalString(input) {
		return input, nil
	}
	return norm.NFKC.String(input), nil
}
