package ruleset

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"

	"github.com/dmitrymomot/inputguard/pkg/cache"
	"github.com/dmitrymomot/inputguard/pkg/validator"
)

const defaultPatternCacheSize = 256

// Loader builds rule sets and caches compiled patterns between builds.
// It is safe for concurrent use.
type Loader struct {
	patterns *cache.LRU[string, *regexp.Regexp]
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPatternCacheSize sets how many compiled patterns are kept.
func WithPatternCacheSize(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.patterns = cache.NewLRU[string, *regexp.Regexp](n)
		}
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{patterns: cache.NewLRU[string, *regexp.Regexp](defaultPatternCacheSize)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Parse builds a rule set from a YAML definition. Rules are built in name
// order, so the first failing rule is reported deterministically.
func (l *Loader) Parse(data []byte) (*validator.RuleSet, error) {
	def, err := decode(data)
	if err != nil {
		return nil, err
	}

	rules := make(map[string]validator.Rule, len(def.Rules))
	for _, name := range slices.Sorted(maps.Keys(def.Rules)) {
		rule, err := def.Rules[name].build(l.compile)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}
		rules[name] = rule
	}

	rs, err := validator.NewRuleSet(rules)
	if err != nil {
		return nil, errors.Join(ErrInvalidField, err)
	}
	return rs, nil
}

// LoadFile reads and parses the definition at path.
func (l *Loader) LoadFile(path string) (*validator.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrReadFile, err)
	}
	rs, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// CachedPatterns returns the number of compiled patterns held by the loader.
func (l *Loader) CachedPatterns() int {
	return l.patterns.Len()
}

func (l *Loader) compile(pattern string, anchored bool) (*regexp.Regexp, error) {
	if anchored {
		pattern = validator.AnchorPattern(pattern)
	}
	re, err := l.patterns.GetOrCompute(pattern, regexp.Compile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegexp, err)
	}
	return re, nil
}

// Parse builds a rule set from a YAML definition with a fresh Loader.
func Parse(data []byte) (*validator.RuleSet, error) {
	return NewLoader().Parse(data)
}

// LoadFile reads and parses the definition at path with a fresh Loader.
func LoadFile(path string) (*validator.RuleSet, error) {
	return NewLoader().LoadFile(path)
}
