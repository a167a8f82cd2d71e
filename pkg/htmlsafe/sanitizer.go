package htmlsafe

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/dmitrymomot/inputguard/pkg/cache"
)

const defaultCacheSize = 64

// Sanitizer sanitizes HTML according to a Policy. It is safe for concurrent use.
type Sanitizer struct {
	policies *cache.LRU[string, *bluemonday.Policy]
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithCacheSize sets how many compiled policies are kept.
func WithCacheSize(n int) Option {
	return func(s *Sanitizer) {
		if n > 0 {
			s.policies = cache.NewLRU[string, *bluemonday.Policy](n)
		}
	}
}

// New creates a Sanitizer.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{policies: cache.NewLRU[string, *bluemonday.Policy](defaultCacheSize)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize returns input reduced to the markup allowed by p.
func (s *Sanitizer) Sanitize(input string, p Policy) (string, error) {
	p = p.normalize()

	if p.RejectUnsafe {
		if err := inspect(input, p); err != nil {
			return "", err
		}
	}

	compiled, err := s.policies.GetOrCompute(p.key(), func(string) (*bluemonday.Policy, error) {
		return compile(p), nil
	})
	if err != nil {
		return "", err
	}

	return compiled.Sanitize(input), nil
}

func compile(p Policy) *bluemonday.Policy {
	bp := bluemonday.NewPolicy()
	if len(p.AllowedTags) > 0 {
		bp.AllowElements(p.AllowedTags...)
	}
	if len(p.AllowedAttrs) > 0 {
		bp.AllowAttrs(p.AllowedAttrs...).OnElements(p.AllowedTags...)
	}
	if p.allowsURLs() {
		bp.AllowStandardURLs()
	}
	return bp
}

// inspect walks the token stream and reports the first construct the policy would strip.
func inspect(input string, p Policy) error {
	z := html.NewTokenizer(strings.NewReader(input))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrMalformedHTML, z.Err())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			tok := z.Token()
			if !p.allowsTag(tok.Data) {
				return fmt.Errorf("%w: element <%s>", ErrUnsafeHTML, tok.Data)
			}
			for _, attr := range tok.Attr {
				name := strings.ToLower(attr.Key)
				if !p.allowsAttr(name) {
					return fmt.Errorf("%w: attribute %q on <%s>", ErrUnsafeHTML, name, tok.Data)
				}
				if urlAttrs[name] && !safeURL(attr.Val) {
					return fmt.Errorf("%w: URL scheme in %q on <%s>", ErrUnsafeHTML, name, tok.Data)
				}
			}
		case html.CommentToken, html.DoctypeToken:
			return fmt.Errorf("%w: comment or doctype", ErrUnsafeHTML)
		}
	}
}

func safeURL(raw string) bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	i := strings.IndexAny(v, ":/?#")
	if i < 0 || v[i] != ':' {
		return true // relative
	}
	switch v[:i] {
	case "http", "https", "mailto":
		return true
	default:
		return false
	}
}
