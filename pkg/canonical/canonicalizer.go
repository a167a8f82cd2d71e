package canonical

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrymomot/inputguard/pkg/codec"
)

// DefaultMaxDepth bounds the number of decoding passes that may change the input.
const DefaultMaxDepth = 8

// Result is the outcome of canonicalization.
type Result struct {
	// Value is the canonical form, or the original input when Pattern is PatternMalformed.
	Value string
	// Codecs lists, in order, every codec application that changed the value.
	Codecs []string
	// Pattern classifies the observed encoding layers.
	Pattern Pattern
}

// Canonicalizer reduces input to its decoded form using an ordered codec list.
// It holds no mutable state and is safe for concurrent use.
type Canonicalizer struct {
	codecs   []codec.Codec
	maxDepth int
}

// Option configures a Canonicalizer.
type Option func(*Canonicalizer)

// WithCodecs replaces the default codec list. Nil codecs are ignored.
func WithCodecs(codecs ...codec.Codec) Option {
	return func(c *Canonicalizer) {
		list := make([]codec.Codec, 0, len(codecs))
		for _, cd := range codecs {
			if cd != nil {
				list = append(list, cd)
			}
		}
		if len(list) > 0 {
			c.codecs = list
		}
	}
}

// WithMaxDepth sets how many decoding passes may change the input. One more
// pass confirms the result is stable. Non-positive values are ignored.
func WithMaxDepth(n int) Option {
	return func(c *Canonicalizer) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// New creates a Canonicalizer. Without options it uses codec.Default and DefaultMaxDepth.
func New(opts ...Option) *Canonicalizer {
	c := &Canonicalizer{
		codecs:   codec.Default(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Codecs returns the names of the configured codecs in application order.
func (c *Canonicalizer) Codecs() []string {
	names := make([]string, len(c.codecs))
	for i, cd := range c.codecs {
		names[i] = cd.Name()
	}
	return names
}

// Canonicalize decodes input until no codec changes it and classifies the
// encoding layers it removed.
//
// MultipleMixed and Malformed results always return an *EncodingError.
// MultipleIdentical returns one unless allowMultiple is true. A codec failing
// for any reason other than malformed input yields an error wrapping ErrCodec.
func (c *Canonicalizer) Canonicalize(input string, allowMultiple bool) (Result, error) {
	if !utf8.ValidString(input) {
		return c.malformed(input, nil, "input is not valid UTF-8")
	}

	var (
		current = input
		applied []string
		fired   = make(map[string]int, len(c.codecs))
	)

	for pass := 0; ; pass++ {
		changed := false
		for _, cd := range c.codecs {
			next, err := cd.Decode(current)
			if err != nil {
				if errors.Is(err, codec.ErrMalformed) {
					return c.malformed(input, applied, fmt.Sprintf("%s: %v", cd.Name(), err))
				}
				return Result{Value: input, Codecs: applied}, fmt.Errorf("%w: %s: %w", ErrCodec, cd.Name(), err)
			}
			if next != current {
				applied = append(applied, cd.Name())
				fired[cd.Name()]++
				current = next
				changed = true
			}
		}

		if !changed {
			break
		}
		// pass maxDepth only confirms the fixed point
		if pass >= c.maxDepth {
			return c.malformed(input, applied, fmt.Sprintf("still changing after %d decoding passes", c.maxDepth))
		}
	}

	res := Result{Value: current, Codecs: applied, Pattern: classify(fired)}

	switch res.Pattern {
	case PatternMultipleMixed:
		return res, &EncodingError{Pattern: res.Pattern, Codecs: applied, Reason: "multiple encoding schemes detected"}
	case PatternMultipleIdentical:
		if !allowMultiple {
			return res, &EncodingError{Pattern: res.Pattern, Codecs: applied, Reason: "multiple encoding detected"}
		}
	}

	return res, nil
}

func (c *Canonicalizer) malformed(input string, applied []string, reason string) (Result, error) {
	res := Result{Value: input, Codecs: applied, Pattern: PatternMalformed}
	return res, &EncodingError{Pattern: PatternMalformed, Codecs: applied, Reason: reason}
}
