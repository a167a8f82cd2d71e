package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// StringRule accepts text whose whole value matches Pattern and that does not
// contain a match of Blacklist. Zero lengths disable the length bounds.
type StringRule struct {
	Pattern   *regexp.Regexp
	Blacklist *regexp.Regexp
	MinLength int
	MaxLength int
}

// AnchorPattern wraps a pattern so it must match the whole input.
func AnchorPattern(pattern string) string {
	return `\A(?:` + pattern + `)\z`
}

// NewStringRule compiles an anchored whitelist pattern.
func NewStringRule(pattern string, maxLength int) (StringRule, error) {
	re, err := regexp.Compile(AnchorPattern(pattern))
	if err != nil {
		return StringRule{}, fmt.Errorf("%w: pattern: %w", ErrInvalidRule, err)
	}
	return StringRule{Pattern: re, MaxLength: maxLength}, nil
}

func (StringRule) Kind() Kind { return KindString }

func (r StringRule) check() error {
	if r.Pattern == nil {
		return fmt.Errorf("%w: string rule needs a whitelist pattern", ErrInvalidRule)
	}
	if r.MinLength < 0 || r.MaxLength < 0 || (r.MaxLength > 0 && r.MinLength > r.MaxLength) {
		return fmt.Errorf("%w: string length bounds %d..%d", ErrInvalidRule, r.MinLength, r.MaxLength)
	}
	return nil
}

func (r StringRule) apply(_ *call, text string) (any, error) {
	n := utf8.RuneCountInString(text)
	if r.MinLength > 0 && n < r.MinLength {
		return nil, fail("validation.min_length",
			fmt.Sprintf("must be at least %d characters long", r.MinLength),
			map[string]any{"min": r.MinLength})
	}
	if r.MaxLength > 0 && n > r.MaxLength {
		return nil, tooLong(r.MaxLength)
	}

	// A leftmost match shorter than the input counts as a mismatch, so an
	// unanchored pattern can only reject more, never accept more.
	loc := r.Pattern.FindStringIndex(text)
	if loc == nil || loc[0] != 0 || loc[1] != len(text) {
		return nil, fail("validation.pattern", "does not match the allowed format", nil)
	}
	if r.Blacklist != nil && r.Blacklist.MatchString(text) {
		return nil, fail("validation.pattern", "contains a disallowed sequence", nil)
	}
	return text, nil
}

// PrintableRule accepts printable ASCII (0x20-0x7E), or any printable Unicode
// when Unicode is set. Control characters are never printable.
type PrintableRule struct {
	MaxLength int
	Unicode   bool
}

func (PrintableRule) Kind() Kind { return KindPrintable }

func (r PrintableRule) check() error {
	if r.MaxLength < 0 {
		return fmt.Errorf("%w: negative max length", ErrInvalidRule)
	}
	return nil
}

func (r PrintableRule) apply(_ *call, text string) (any, error) {
	if r.MaxLength > 0 && utf8.RuneCountInString(text) > r.MaxLength {
		return nil, tooLong(r.MaxLength)
	}
	for _, ch := range text {
		ok := ch >= 0x20 && ch <= 0x7e
		if r.Unicode {
			ok = unicode.IsPrint(ch)
		}
		if !ok {
			return nil, fail("validation.printable", "must contain only printable characters", nil)
		}
	}
	return text, nil
}

func tooLong(max int) error {
	return fail("validation.max_length",
		fmt.Sprintf("must be at most %d characters long", max),
		map[string]any{"max": max})
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
