package validator

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrymomot/inputguard/pkg/htmlsafe"
)

// SafeHTMLRule reduces markup to the allowed tags and attributes. Policy
// defaults to the validator's HTML policy. MaxLength bounds the sanitized
// result.
type SafeHTMLRule struct {
	MaxLength int
	Policy    *htmlsafe.Policy
}

func (SafeHTMLRule) Kind() Kind { return KindSafeHTML }

func (r SafeHTMLRule) check() error {
	if r.MaxLength < 0 {
		return fmt.Errorf("%w: negative max length", ErrInvalidRule)
	}
	return nil
}

func (r SafeHTMLRule) apply(c *call, text string) (any, error) {
	policy := c.v.htmlPolicy
	if r.Policy != nil {
		policy = *r.Policy
	}

	out, err := c.v.html.Sanitize(text, policy)
	switch {
	case errors.Is(err, htmlsafe.ErrUnsafeHTML):
		return nil, failWith(err, "validation.html_unsafe", "contains markup that is not allowed", nil)
	case errors.Is(err, htmlsafe.ErrMalformedHTML):
		return nil, failWith(err, "validation.html", "is not well-formed HTML", nil)
	case err != nil:
		return nil, unavailable("html sanitizer", err)
	}

	if r.MaxLength > 0 && utf8.RuneCountInString(out) > r.MaxLength {
		return nil, tooLong(r.MaxLength)
	}
	return out, nil
}
