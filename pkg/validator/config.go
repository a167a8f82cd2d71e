package validator

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/inputguard/pkg/canonical"
	"github.com/dmitrymomot/inputguard/pkg/codec"
	"github.com/dmitrymomot/inputguard/pkg/htmlsafe"
)

// Config holds the environment-driven Validator settings. Load it with config.Load.
type Config struct {
	Codecs                []string      `env:"GUARD_CODECS" envDefault:"html,percent" envSeparator:","`
	MaxEncodingDepth      int           `env:"GUARD_MAX_ENCODING_DEPTH" envDefault:"8"`
	AllowMultipleEncoding bool          `env:"GUARD_ALLOW_MULTIPLE_ENCODING" envDefault:"false"`
	URISchemes            []string      `env:"GUARD_URI_SCHEMES" envDefault:"http,https" envSeparator:","`
	RedirectAllow         []string      `env:"GUARD_REDIRECT_ALLOW" envSeparator:","`
	ScanTimeout           time.Duration `env:"GUARD_SCAN_TIMEOUT" envDefault:"10s"`
	PathTimeout           time.Duration `env:"GUARD_PATH_TIMEOUT" envDefault:"2s"`
	AllowedExtensions     []string      `env:"GUARD_ALLOWED_EXTENSIONS" envSeparator:","`
	HTMLPolicyCacheSize   int           `env:"GUARD_HTML_POLICY_CACHE_SIZE" envDefault:"64"`
}

// NewFromConfig builds a Validator from cfg. opts are applied after the
// configuration and win over it.
func NewFromConfig(cfg Config, opts ...Option) (*Validator, error) {
	codecs, err := codec.ByNames(cfg.Codecs...)
	if err != nil {
		return nil, fmt.Errorf("validator config: %w", err)
	}
	for _, entry := range cfg.RedirectAllow {
		if _, err := parseAllowed(entry); err != nil {
			return nil, fmt.Errorf("validator config: %q: %w", entry, err)
		}
	}

	base := []Option{
		WithCanonicalizer(canonical.New(
			canonical.WithCodecs(codecs...),
			canonical.WithMaxDepth(cfg.MaxEncodingDepth),
		)),
		WithHTMLSanitizer(htmlsafe.New(htmlsafe.WithCacheSize(cfg.HTMLPolicyCacheSize))),
		WithAllowMultipleEncoding(cfg.AllowMultipleEncoding),
		WithURISchemes(cfg.URISchemes...),
		WithRedirectAllowList(cfg.RedirectAllow...),
		WithScanTimeout(cfg.ScanTimeout),
		WithPathTimeout(cfg.PathTimeout),
		WithAllowedExtensions(cfg.AllowedExtensions...),
	}
	return New(append(base, opts...)...), nil
}
