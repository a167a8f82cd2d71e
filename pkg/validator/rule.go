package validator

import (
	"context"
	"errors"

	"github.com/dmitrymomot/inputguard/pkg/canonical"
	"github.com/dmitrymomot/inputguard/pkg/file"
)

// Rule is a configured validation policy. The set of variants is closed:
// DateRule, NumberRule, CreditCardRule, ChoiceRule, PrintableRule,
// StringRule, URIRule, RedirectRule, DirectoryRule, FilenameRule,
// SafeHTMLRule, FileContentRule, UploadRule and HTTPParamsRule.
type Rule interface {
	Kind() Kind
	check() error
	apply(c *call, text string) (any, error)
}

// Input is the untrusted value handed to a rule. Text-based kinds read Text,
// HTTPParamsRule reads Params, FileContentRule reads File and UploadRule reads
// File plus the destination directory in Text.
type Input struct {
	Text   string
	Params map[string][]string
	File   *file.Upload
}

// TextInput wraps a plain string.
func TextInput(s string) Input { return Input{Text: s} }

// ParamsInput wraps an HTTP parameter map.
func ParamsInput(p map[string][]string) Input { return Input{Params: p} }

// FileInput wraps an upload.
func FileInput(u *file.Upload) Input { return Input{File: u} }

// call carries per-validation state into a rule.
type call struct {
	ctx          context.Context
	v            *Validator
	in           Input
	canonicalize bool
	text         string

	// strongest encoding pattern seen while canonicalizing, for reporting
	pattern canonical.Pattern
	codecs  []string

	// upload bytes read by UploadRule, kept for SaveValidUpload
	content []byte
}

// canon canonicalizes s with the validator's canonicalizer, translating
// encoding intrusions and codec failures.
func (c *call) canon(s string) (string, error) {
	res, err := c.v.canon.Canonicalize(s, c.v.allowMultiple)
	if err != nil {
		var ee *canonical.EncodingError
		if errors.As(err, &ee) {
			return "", &IntrusionError{Pattern: ee.Pattern, Codecs: ee.Codecs, Reason: ee.Reason}
		}
		return "", unavailable("canonicalization", err)
	}
	if res.Pattern > c.pattern {
		c.pattern = res.Pattern
		c.codecs = res.Codecs
	}
	return res.Value, nil
}

func isNull(k Kind, in Input) bool {
	switch k {
	case KindHTTPParams:
		return len(in.Params) == 0
	case KindFileContent, KindUpload:
		return in.File == nil
	}
	return isBlank(in.Text)
}
