package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/inputguard/pkg/htmlsafe"
	"github.com/dmitrymomot/inputguard/pkg/validator"
)

// Definition is the document form of a rule set.
type Definition struct {
	Rules map[string]RuleDef `yaml:"rules"`
}

// RuleDef holds the constraints of a single rule. Which fields apply depends
// on Kind; fields that do not apply to a kind are ignored.
type RuleDef struct {
	Kind string `yaml:"kind"`

	// string, printable, uri, redirect, filename, safe_html
	MaxLength int `yaml:"max_length"`
	MinLength int `yaml:"min_length"`

	// string
	Pattern   string `yaml:"pattern"`
	Blacklist string `yaml:"blacklist"`

	// printable
	Unicode bool `yaml:"unicode"`

	// date: Min and Max use Layout; number: decimal bounds
	Layout string `yaml:"layout"`
	Min    string `yaml:"min"`
	Max    string `yaml:"max"`

	// choice
	Choices []string `yaml:"choices"`

	// uri, redirect
	Schemes       []string `yaml:"schemes"`
	RequireHost   bool     `yaml:"require_host"`
	Allowed       []string `yaml:"allowed"`
	AllowRelative bool     `yaml:"allow_relative"`

	// directory, upload
	Root      string `yaml:"root"`
	MustExist bool   `yaml:"must_exist"`

	// filename, upload
	Extensions []string `yaml:"extensions"`

	// safe_html
	AllowedTags  []string `yaml:"allowed_tags"`
	AllowedAttrs []string `yaml:"allowed_attrs"`
	RejectUnsafe bool     `yaml:"reject_unsafe"`

	// file_content, upload
	AllowedTypes []string `yaml:"allowed_types"`
	MaxSize      int64    `yaml:"max_size"`
	Sniff        *bool    `yaml:"sniff"`

	// http_params: name -> required | optional
	Params map[string]string `yaml:"params"`
}

func decode(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRules
		}
		return nil, errors.Join(ErrParse, err)
	}
	if len(def.Rules) == 0 {
		return nil, ErrNoRules
	}
	return &def, nil
}

// build converts d into a validator rule. compile supplies anchored
// whitelist and raw blacklist patterns.
func (d RuleDef) build(compile func(pattern string, anchored bool) (*regexp.Regexp, error)) (validator.Rule, error) {
	kind, err := validator.ParseKind(d.Kind)
	if err != nil {
		if d.Kind == "" {
			return nil, fmt.Errorf("%w: kind", ErrMissingField)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind)
	}

	switch kind {
	case validator.KindString:
		if d.Pattern == "" {
			return nil, fmt.Errorf("%w: pattern", ErrMissingField)
		}
		re, err := compile(d.Pattern, true)
		if err != nil {
			return nil, err
		}
		rule := validator.StringRule{Pattern: re, MinLength: d.MinLength, MaxLength: d.MaxLength}
		if d.Blacklist != "" {
			bl, err := compile(d.Blacklist, false)
			if err != nil {
				return nil, err
			}
			rule.Blacklist = bl
		}
		return rule, nil

	case validator.KindPrintable:
		return validator.PrintableRule{MaxLength: d.MaxLength, Unicode: d.Unicode}, nil

	case validator.KindDate:
		if d.Layout == "" {
			return nil, fmt.Errorf("%w: layout", ErrMissingField)
		}
		rule := validator.DateRule{Layout: d.Layout}
		if rule.Min, err = parseDate("min", d.Layout, d.Min); err != nil {
			return nil, err
		}
		if rule.Max, err = parseDate("max", d.Layout, d.Max); err != nil {
			return nil, err
		}
		return rule, nil

	case validator.KindNumber:
		rule := validator.NumberRule{Min: math.Inf(-1), Max: math.Inf(1)}
		if rule.Min, err = parseBound("min", d.Min, rule.Min); err != nil {
			return nil, err
		}
		if rule.Max, err = parseBound("max", d.Max, rule.Max); err != nil {
			return nil, err
		}
		return rule, nil

	case validator.KindCreditCard:
		return validator.CreditCardRule{}, nil

	case validator.KindChoice:
		if len(d.Choices) == 0 {
			return nil, fmt.Errorf("%w: choices", ErrMissingField)
		}
		return validator.ChoiceRule{Choices: d.Choices}, nil

	case validator.KindURI:
		return d.uri(), nil

	case validator.KindRedirect:
		return validator.RedirectRule{URI: d.uri(), Allowed: d.Allowed, AllowRelative: d.AllowRelative}, nil

	case validator.KindDirectory:
		if d.Root == "" {
			return nil, fmt.Errorf("%w: root", ErrMissingField)
		}
		return validator.DirectoryRule{Root: d.Root, MustExist: d.MustExist}, nil

	case validator.KindFilename:
		return validator.FilenameRule{MaxLength: d.MaxLength, AllowedExtensions: d.Extensions}, nil

	case validator.KindSafeHTML:
		rule := validator.SafeHTMLRule{MaxLength: d.MaxLength}
		if len(d.AllowedTags) > 0 || d.RejectUnsafe {
			p := htmlsafe.DefaultPolicy()
			if len(d.AllowedTags) > 0 {
				p.AllowedTags = d.AllowedTags
				p.AllowedAttrs = d.AllowedAttrs
			}
			p.RejectUnsafe = d.RejectUnsafe
			rule.Policy = &p
		}
		return rule, nil

	case validator.KindFileContent:
		return d.content()

	case validator.KindUpload:
		content, err := d.content()
		if err != nil {
			return nil, err
		}
		rule := validator.UploadRule{
			Filename: validator.FilenameRule{MaxLength: d.MaxLength, AllowedExtensions: d.Extensions},
			Content:  content,
		}
		if d.Root != "" {
			rule.Directory = &validator.DirectoryRule{Root: d.Root, MustExist: d.MustExist}
		}
		return rule, nil

	case validator.KindHTTPParams:
		if len(d.Params) == 0 {
			return nil, fmt.Errorf("%w: params", ErrMissingField)
		}
		params := make(map[string]validator.Presence, len(d.Params))
		for name, p := range d.Params {
			switch p {
			case "required":
				params[name] = validator.Required
			case "optional", "":
				params[name] = validator.Optional
			default:
				return nil, fmt.Errorf("%w: params.%s: %q is neither required nor optional", ErrInvalidField, name, p)
			}
		}
		return validator.HTTPParamsRule{Params: params}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind)
}

func (d RuleDef) uri() validator.URIRule {
	return validator.URIRule{Schemes: d.Schemes, RequireHost: d.RequireHost, MaxLength: d.MaxLength}
}

func (d RuleDef) content() (validator.FileContentRule, error) {
	if d.MaxSize <= 0 {
		return validator.FileContentRule{}, fmt.Errorf("%w: max_size", ErrMissingField)
	}
	sniff := true
	if d.Sniff != nil {
		sniff = *d.Sniff
	}
	return validator.FileContentRule{AllowedTypes: d.AllowedTypes, MaxSize: d.MaxSize, SniffContent: sniff}, nil
}

func parseDate(field, layout, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(validator.GoLayout(layout), v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %q does not match layout %q", ErrInvalidField, field, v, layout)
	}
	return t, nil
}

func parseBound(field, v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %s: %q is not a number", ErrInvalidField, field, v)
	}
	return f, nil
}
