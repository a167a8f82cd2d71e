package validator

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/dmitrymomot/inputguard/pkg/audit"
	"github.com/dmitrymomot/inputguard/pkg/canonical"
	"github.com/dmitrymomot/inputguard/pkg/htmlsafe"
	"github.com/dmitrymomot/inputguard/pkg/logger"
	"github.com/dmitrymomot/inputguard/pkg/scan"
)

const (
	DefaultScanTimeout = 10 * time.Second
	DefaultPathTimeout = 2 * time.Second
)

// IntrusionRecorder receives every detected intrusion. *audit.Logger implements it.
type IntrusionRecorder interface {
	RecordIntrusion(ctx context.Context, in audit.Intrusion, opts ...audit.EventOption) error
}

// Validator canonicalizes untrusted input and applies rules to it. It is safe
// for concurrent use; the RuleSet can be replaced at any time with Reload.
type Validator struct {
	registry Registry

	canon   *canonical.Canonicalizer
	html    *htmlsafe.Sanitizer
	scanner scan.Scanner
	audit   IntrusionRecorder
	log     *slog.Logger

	allowMultiple     bool
	uriSchemes        []string
	redirectEntries   []string
	redirectAllow     []*url.URL
	allowedExtensions []string
	htmlPolicy        htmlsafe.Policy
	scanTimeout       time.Duration
	pathTimeout       time.Duration
}

// Option configures a Validator.
type Option func(*Validator)

// WithRuleSet installs the initial RuleSet used by GetValidInput.
func WithRuleSet(rs *RuleSet) Option {
	return func(v *Validator) { v.registry.Swap(rs) }
}

func WithCanonicalizer(c *canonical.Canonicalizer) Option {
	return func(v *Validator) {
		if c != nil {
			v.canon = c
		}
	}
}

func WithHTMLSanitizer(s *htmlsafe.Sanitizer) Option {
	return func(v *Validator) {
		if s != nil {
			v.html = s
		}
	}
}

// WithScanner sets the content scanner. The default matches known test
// signatures only.
func WithScanner(s scan.Scanner) Option {
	return func(v *Validator) {
		if s != nil {
			v.scanner = s
		}
	}
}

// WithAuditLogger sends every intrusion to r in addition to the log.
func WithAuditLogger(r IntrusionRecorder) Option {
	return func(v *Validator) { v.audit = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.log = l
		}
	}
}

// WithURISchemes sets the schemes URI and redirect rules accept by default.
func WithURISchemes(schemes ...string) Option {
	return func(v *Validator) {
		if len(schemes) > 0 {
			v.uriSchemes = schemes
		}
	}
}

// WithRedirectAllowList sets the absolute URL prefixes redirects may target.
// Entries without a scheme and host are ignored.
func WithRedirectAllowList(entries ...string) Option {
	return func(v *Validator) { v.redirectEntries = entries }
}

// WithAllowMultipleEncoding accepts input encoded several times with the
// same scheme. Mixed schemes are always rejected.
func WithAllowMultipleEncoding(allow bool) Option {
	return func(v *Validator) { v.allowMultiple = allow }
}

func WithScanTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.scanTimeout = d
		}
	}
}

func WithPathTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.pathTimeout = d
		}
	}
}

// WithAllowedExtensions sets the file extensions filename rules accept by default.
func WithAllowedExtensions(exts ...string) Option {
	return func(v *Validator) { v.allowedExtensions = exts }
}

func WithHTMLPolicy(p htmlsafe.Policy) Option {
	return func(v *Validator) { v.htmlPolicy = p }
}

// New creates a Validator. Without options it decodes HTML entities and
// percent-encoding, accepts http and https URIs, strips HTML down to
// htmlsafe.DefaultPolicy and logs nothing.
func New(opts ...Option) *Validator {
	sig, _ := scan.NewSignatureScanner(nil)
	v := &Validator{
		canon:       canonical.New(),
		html:        htmlsafe.New(),
		scanner:     sig,
		log:         logger.Discard(),
		uriSchemes:  []string{"http", "https"},
		htmlPolicy:  htmlsafe.DefaultPolicy(),
		scanTimeout: DefaultScanTimeout,
		pathTimeout: DefaultPathTimeout,
	}
	v.registry.Swap(nil)

	for _, opt := range opts {
		opt(v)
	}

	v.log = v.log.With(logger.Component("validator"))

	for _, entry := range v.redirectEntries {
		u, err := parseAllowed(entry)
		if err != nil {
			v.log.Warn("ignoring redirect allow-list entry", logger.Error(err))
			continue
		}
		v.redirectAllow = append(v.redirectAllow, u)
	}

	return v
}

// Reload atomically replaces the RuleSet and returns the previous one.
// Validations already running keep the set they started with.
func (v *Validator) Reload(rs *RuleSet) *RuleSet {
	old := v.registry.Swap(rs)
	v.log.Info("rule set reloaded", slog.Int("rules", v.registry.Load().Len()))
	return old
}

// RuleSet returns the current RuleSet.
func (v *Validator) RuleSet() *RuleSet {
	return v.registry.Load()
}

// Canonicalize exposes the validator's canonicalizer with its encoding policy.
func (v *Validator) Canonicalize(input string) (canonical.Result, error) {
	return v.canon.Canonicalize(input, v.allowMultiple)
}

type runOpts struct {
	allowNull    bool
	canonicalize bool
	maxLength    int
}

// run is the single validation pipeline: null check, canonicalization,
// length bound, rule. Every error it returns is either ValidationErrors
// or *IntrusionError.
func (v *Validator) run(ctx context.Context, label, name string, rule Rule, in Input, o runOpts) (any, *call, error) {
	c := &call{ctx: ctx, v: v, in: in, canonicalize: o.canonicalize, text: in.Text}

	if rule == nil {
		return nil, c, withField(failWith(ErrInvalidRule, "validation.rule", "no rule is configured", nil), label)
	}
	kind := rule.Kind()
	if name == "" {
		name = kind.String()
	}

	if err := rule.check(); err != nil {
		v.log.ErrorContext(ctx, "invalid rule constraints",
			logger.Context(label), logger.Rule(name), logger.Error(err))
		return nil, c, withField(failWith(err, "validation.rule", "rule is misconfigured", nil), label)
	}

	if isNull(kind, in) {
		if o.allowNull {
			return nil, c, nil
		}
		return nil, c, withField(failWith(ErrFieldRequired, "validation.required", "is required", nil), label)
	}

	if kind.textual() && o.canonicalize {
		text, err := c.canon(in.Text)
		if err != nil {
			return nil, c, v.report(ctx, c, label, name, kind, err)
		}
		c.text = text
	}

	if o.maxLength > 0 && kind.textual() && utf8.RuneCountInString(c.text) > o.maxLength {
		return nil, c, withField(tooLong(o.maxLength), label)
	}

	out, err := rule.apply(c, c.text)
	if err != nil {
		return nil, c, v.report(ctx, c, label, name, kind, err)
	}
	return out, c, nil
}

// report turns a rule error into the caller-facing error, logging intrusions
// and capability failures on the way.
func (v *Validator) report(ctx context.Context, c *call, label, name string, kind Kind, err error) error {
	var ie *IntrusionError
	if errors.As(err, &ie) {
		out := *ie
		out.Context = label
		out.Rule = name
		out.Kind = kind
		if out.Pattern == canonical.PatternNone && len(out.Codecs) == 0 {
			out.Pattern = c.pattern
			out.Codecs = c.codecs
		}

		v.log.WarnContext(ctx, "intrusion detected",
			logger.Context(label),
			logger.Rule(name),
			logger.Kind(kind.String()),
			logger.Pattern(out.Pattern.String()),
			logger.Codecs(out.Codecs),
			slog.String("reason", out.Reason),
		)

		if v.audit != nil {
			if aerr := v.audit.RecordIntrusion(ctx, audit.Intrusion{
				Context: label,
				Rule:    name,
				Kind:    kind.String(),
				Pattern: out.Pattern.String(),
				Codecs:  out.Codecs,
				Reason:  out.Reason,
				Input:   rawInput(c.in),
			}); aerr != nil {
				v.log.ErrorContext(ctx, "failed to record intrusion",
					logger.Context(label), logger.Error(aerr))
			}
		}
		return &out
	}

	var ce *capabilityError
	if errors.As(err, &ce) {
		v.log.ErrorContext(ctx, "validation could not complete",
			logger.Context(label),
			logger.Rule(name),
			slog.String("capability", ce.capability),
			uploadLogAttrs(c.in.File),
			logger.Error(ce.err),
		)
		return withField(failWith(errors.Join(ErrUnverifiable, ce.err),
			"validation.unverifiable", "could not be verified", nil), label)
	}

	return withField(err, label)
}

func rawInput(in Input) string {
	switch {
	case in.File != nil:
		return in.Text + "/" + in.File.Filename
	case len(in.Params) > 0:
		return url.Values(in.Params).Encode()
	default:
		return in.Text
	}
}
