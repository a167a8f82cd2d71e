package htmlsafe

import (
	"slices"
	"strings"
)

// Policy describes the markup allowed to survive sanitization.
type Policy struct {
	// AllowedTags lists element names, case-insensitive.
	AllowedTags []string
	// AllowedAttrs lists attribute names allowed on any allowed element.
	AllowedAttrs []string
	// RejectUnsafe fails instead of stripping when disallowed markup is present.
	RejectUnsafe bool
}

// DefaultPolicy allows basic inline and block formatting with links.
func DefaultPolicy() Policy {
	return Policy{
		AllowedTags: []string{
			"a", "b", "blockquote", "br", "code", "em", "i",
			"li", "ol", "p", "pre", "span", "strong", "u", "ul",
		},
		AllowedAttrs: []string{"href", "title"},
	}
}

var forbiddenTags = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"frame":    true,
	"frameset": true,
	"object":   true,
	"embed":    true,
	"applet":   true,
	"base":     true,
	"meta":     true,
	"link":     true,
	"form":     true,
	"svg":      true,
	"math":     true,
}

var urlAttrs = map[string]bool{
	"href":       true,
	"src":        true,
	"cite":       true,
	"action":     true,
	"formaction": true,
	"poster":     true,
	"background": true,
}

func forbiddenAttr(name string) bool {
	return strings.HasPrefix(name, "on") || name == "style" || name == "srcdoc" || name == "xmlns"
}

// normalize lowercases, dedupes and sorts the lists and removes everything that is
// never allowed.
func (p Policy) normalize() Policy {
	out := Policy{RejectUnsafe: p.RejectUnsafe}
	out.AllowedTags = cleanNames(p.AllowedTags, func(n string) bool { return !forbiddenTags[n] })
	out.AllowedAttrs = cleanNames(p.AllowedAttrs, func(n string) bool { return !forbiddenAttr(n) })
	return out
}

func (p Policy) allowsTag(name string) bool {
	_, ok := slices.BinarySearch(p.AllowedTags, name)
	return ok
}

func (p Policy) allowsAttr(name string) bool {
	_, ok := slices.BinarySearch(p.AllowedAttrs, name)
	return ok
}

func (p Policy) allowsURLs() bool {
	for _, a := range p.AllowedAttrs {
		if urlAttrs[a] {
			return true
		}
	}
	return false
}

// key identifies the compiled policy in the cache. RejectUnsafe does not affect
// the compiled bluemonday policy.
func (p Policy) key() string {
	return strings.Join(p.AllowedTags, ",") + "|" + strings.Join(p.AllowedAttrs, ",")
}

func cleanNames(names []string, keep func(string) bool) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || !keep(n) {
			continue
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
