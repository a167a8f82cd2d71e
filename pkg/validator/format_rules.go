package validator

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"
)

// URIRule accepts absolute URIs whose scheme is allowed and whose text is
// already in minimal RFC 3986 form: every character is legal and a
// percent-encoding is only used where the byte could not appear literally.
// A forbidden scheme (javascript:, data: ...) is reported as an intrusion.
type URIRule struct {
	// Schemes defaults to the validator's configured schemes.
	Schemes     []string
	RequireHost bool
	MaxLength   int
}

func (URIRule) Kind() Kind { return KindURI }

func (r URIRule) check() error {
	if r.MaxLength < 0 {
		return fmt.Errorf("%w: negative max length", ErrInvalidRule)
	}
	return nil
}

func (r URIRule) apply(c *call, text string) (any, error) {
	return r.parse(c.v.uriSchemes, text)
}

func (r URIRule) parse(defaultSchemes []string, text string) (*url.URL, error) {
	if r.MaxLength > 0 && utf8.RuneCountInString(text) > r.MaxLength {
		return nil, tooLong(r.MaxLength)
	}
	if err := minimalForm(text); err != nil {
		return nil, err
	}

	u, err := url.Parse(text)
	if err != nil {
		return nil, fail("validation.uri", "must be a well-formed URI", nil)
	}
	if u.Scheme == "" {
		return nil, fail("validation.uri_absolute", "must be an absolute URI", nil)
	}

	schemes := r.Schemes
	if len(schemes) == 0 {
		schemes = defaultSchemes
	}
	if !slices.ContainsFunc(schemes, func(s string) bool { return strings.EqualFold(s, u.Scheme) }) {
		return nil, intrusion("URI scheme is not allowed")
	}

	if r.RequireHost && u.Host == "" {
		return nil, fail("validation.uri_host", "must include a host", nil)
	}
	return u, nil
}

// minimalForm reports characters that would need encoding and
// percent-encodings of bytes that did not need it.
func minimalForm(s string) error {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '%':
			if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
				return fail("validation.uri_encoding", "contains an invalid percent-encoding", nil)
			}
			b := unhex(s[i+1])<<4 | unhex(s[i+2])
			if b < utf8.RuneSelf && b != '%' && !isReserved(b) {
				return fail("validation.uri_encoding", "contains unnecessary percent-encoding", nil)
			}
			i += 2
		case isUnreserved(ch) || isReserved(ch):
		default:
			return fail("validation.uri_encoding", "contains characters that must be encoded", nil)
		}
	}
	return nil
}

func isUnreserved(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' ||
		ch == '-' || ch == '.' || ch == '_' || ch == '~'
}

func isReserved(ch byte) bool {
	return strings.IndexByte(":/?#[]@!$&'()*+,;=", ch) >= 0
}

func isHex(ch byte) bool {
	return ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F'
}

func unhex(ch byte) byte {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0'
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10
	default:
		return ch - 'A' + 10
	}
}

// RedirectRule is a URIRule whose target must also fall inside an allowed
// location: same scheme and host, and a path under the allowed path on a
// segment boundary. Allowed defaults to the validator's allow-list. With
// AllowRelative, same-origin paths starting with a single "/" are accepted.
type RedirectRule struct {
	URI           URIRule
	Allowed       []string
	AllowRelative bool
}

func (RedirectRule) Kind() Kind { return KindRedirect }

func (r RedirectRule) check() error {
	if err := r.URI.check(); err != nil {
		return err
	}
	for _, a := range r.Allowed {
		if _, err := parseAllowed(a); err != nil {
			return err
		}
	}
	return nil
}

func (r RedirectRule) apply(c *call, text string) (any, error) {
	if r.AllowRelative && strings.HasPrefix(text, "/") {
		return relativeRedirect(text)
	}

	u, err := r.URI.parse(c.v.uriSchemes, text)
	if err != nil {
		return nil, err
	}
	if u.User != nil {
		return nil, fail("validation.redirect", "redirect target must not carry credentials", nil)
	}
	if hasDotSegments(u.Path) {
		return nil, fail("validation.redirect", "redirect target must not contain dot segments", nil)
	}

	allowed := c.v.redirectAllow
	if len(r.Allowed) > 0 {
		allowed = make([]*url.URL, 0, len(r.Allowed))
		for _, a := range r.Allowed {
			au, err := parseAllowed(a)
			if err != nil {
				return nil, unavailable("redirect allow-list", err)
			}
			allowed = append(allowed, au)
		}
	}

	for _, a := range allowed {
		if redirectMatches(a, u) {
			return u, nil
		}
	}
	return nil, fail("validation.redirect", "redirect target is not allowed", nil)
}

func relativeRedirect(text string) (*url.URL, error) {
	// "//host" and "/\host" are read as another origin by browsers
	if strings.HasPrefix(text, "//") || strings.ContainsRune(text, '\\') {
		return nil, intrusion("scheme-relative redirect target")
	}
	if err := minimalForm(text); err != nil {
		return nil, err
	}
	u, err := url.Parse(text)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return nil, fail("validation.redirect", "must be a well-formed path", nil)
	}
	if hasDotSegments(u.Path) {
		return nil, fail("validation.redirect", "redirect target must not contain dot segments", nil)
	}
	return u, nil
}

func parseAllowed(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: redirect allow-list entry must be an absolute URL with a host", ErrInvalidRule)
	}
	return u, nil
}

func redirectMatches(allowed, target *url.URL) bool {
	if !strings.EqualFold(allowed.Scheme, target.Scheme) || !strings.EqualFold(allowed.Host, target.Host) {
		return false
	}
	prefix := strings.TrimSuffix(allowed.Path, "/")
	if prefix == "" {
		return true
	}
	return target.Path == prefix || strings.HasPrefix(target.Path, prefix+"/")
}

func hasDotSegments(p string) bool {
	for seg := range strings.SplitSeq(p, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}
