package htmlsafe

import "errors"

var (
	// ErrUnsafeHTML is returned when the input carries markup the policy does not allow
	// and the policy asks to reject rather than strip it.
	ErrUnsafeHTML = errors.New("htmlsafe: input contains disallowed markup")
	// ErrMalformedHTML is returned when the input cannot be tokenized.
	ErrMalformedHTML = errors.New("htmlsafe: malformed markup")
)
