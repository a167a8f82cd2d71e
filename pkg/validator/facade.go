package validator

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrymomot/inputguard/pkg/file"
)

// Validate applies rule to in. With canonicalize set, text input is decoded
// first and encoding attacks are reported as *IntrusionError. A null input
// (blank text, no params, nil file) yields (nil, nil) when allowNull is set.
func (v *Validator) Validate(ctx context.Context, label string, rule Rule, in Input, allowNull, canonicalize bool) (any, error) {
	out, _, err := v.run(ctx, label, "", rule, in, runOpts{allowNull: allowNull, canonicalize: canonicalize})
	return out, err
}

// GetValidInput validates input with the named rule from the current
// RuleSet. An unknown name is a validation failure matching ErrUnknownRule.
// The result is the rule's string output, or the canonical input for rules
// that produce other types.
func (v *Validator) GetValidInput(ctx context.Context, label, input, ruleName string, maxLength int, allowNull, canonicalize bool) (string, error) {
	rule, ok := v.registry.Load().Get(ruleName)
	if !ok {
		return "", withField(failWith(ErrUnknownRule, "validation.unknown_rule", "no rule is configured for this input", nil), label)
	}
	if !rule.Kind().textual() {
		return "", withField(failWith(ErrInvalidRule, "validation.rule", "rule does not validate text", nil), label)
	}

	out, c, err := v.run(ctx, label, ruleName, rule, TextInput(input), runOpts{
		allowNull:    allowNull,
		canonicalize: canonicalize,
		maxLength:    maxLength,
	})
	if err != nil || out == nil {
		return "", err
	}
	if s, ok := out.(string); ok {
		return s, nil
	}
	return c.text, nil
}

func (v *Validator) IsValidInput(ctx context.Context, label, input, ruleName string, maxLength int, allowNull, canonicalize bool) (bool, error) {
	_, err := v.GetValidInput(ctx, label, input, ruleName, maxLength, allowNull, canonicalize)
	return isValid(err)
}

// isValid maps a validation error to the (ok, intrusion) pair returned by
// the IsValid* methods: ordinary failures become false with a nil error.
func isValid(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if IsIntrusion(err) {
		return false, err
	}
	return false, nil
}

func get[T any](ctx context.Context, v *Validator, label string, rule Rule, in Input, allowNull bool) (T, error) {
	var zero T
	out, _, err := v.run(ctx, label, "", rule, in, runOpts{allowNull: allowNull, canonicalize: true})
	if err != nil || out == nil {
		return zero, err
	}
	return out.(T), nil
}

// GetValidDate parses input with layout, in Go or token form ("YYYY-MM-DD").
func (v *Validator) GetValidDate(ctx context.Context, label, input, layout string, allowNull bool) (time.Time, error) {
	return get[time.Time](ctx, v, label, DateRule{Layout: layout}, TextInput(input), allowNull)
}

func (v *Validator) IsValidDate(ctx context.Context, label, input, layout string, allowNull bool) (bool, error) {
	_, err := v.GetValidDate(ctx, label, input, layout, allowNull)
	return isValid(err)
}

// GetValidCreditCard returns the card number's digits.
func (v *Validator) GetValidCreditCard(ctx context.Context, label, input string, allowNull bool) (string, error) {
	return get[string](ctx, v, label, CreditCardRule{}, TextInput(input), allowNull)
}

func (v *Validator) IsValidCreditCard(ctx context.Context, label, input string, allowNull bool) (bool, error) {
	_, err := v.GetValidCreditCard(ctx, label, input, allowNull)
	return isValid(err)
}

// GetValidHTTPParams checks params against spec and returns the canonical parameters.
func (v *Validator) GetValidHTTPParams(ctx context.Context, label string, params map[string][]string, spec map[string]Presence, allowNull bool) (map[string][]string, error) {
	return get[map[string][]string](ctx, v, label, HTTPParamsRule{Params: spec}, ParamsInput(params), allowNull)
}

func (v *Validator) IsValidHTTPParams(ctx context.Context, label string, params map[string][]string, spec map[string]Presence, allowNull bool) (bool, error) {
	_, err := v.GetValidHTTPParams(ctx, label, params, spec, allowNull)
	return isValid(err)
}

// GetValidURI accepts absolute URIs with one of the configured schemes.
func (v *Validator) GetValidURI(ctx context.Context, label, input string, maxLength int, allowNull bool) (*url.URL, error) {
	return get[*url.URL](ctx, v, label, URIRule{MaxLength: maxLength}, TextInput(input), allowNull)
}

func (v *Validator) IsValidURI(ctx context.Context, label, input string, maxLength int, allowNull bool) (bool, error) {
	_, err := v.GetValidURI(ctx, label, input, maxLength, allowNull)
	return isValid(err)
}

// GetValidSafeHTML returns input reduced to the configured HTML policy.
func (v *Validator) GetValidSafeHTML(ctx context.Context, label, input string, maxLength int, allowNull bool) (string, error) {
	return get[string](ctx, v, label, SafeHTMLRule{MaxLength: maxLength}, TextInput(input), allowNull)
}

func (v *Validator) IsValidSafeHTML(ctx context.Context, label, input string, maxLength int, allowNull bool) (bool, error) {
	_, err := v.GetValidSafeHTML(ctx, label, input, maxLength, allowNull)
	return isValid(err)
}

// GetValidDirectoryPath resolves input inside root and requires an existing directory.
func (v *Validator) GetValidDirectoryPath(ctx context.Context, label, input, root string, allowNull bool) (string, error) {
	return get[string](ctx, v, label, DirectoryRule{Root: root, MustExist: true}, TextInput(input), allowNull)
}

func (v *Validator) IsValidDirectoryPath(ctx context.Context, label, input, root string, allowNull bool) (bool, error) {
	_, err := v.GetValidDirectoryPath(ctx, label, input, root, allowNull)
	return isValid(err)
}

// GetValidFileName accepts a safe single path element. Nil allowedExtensions
// falls back to the configured list.
func (v *Validator) GetValidFileName(ctx context.Context, label, input string, allowedExtensions []string, allowNull bool) (string, error) {
	return get[string](ctx, v, label, FilenameRule{AllowedExtensions: allowedExtensions}, TextInput(input), allowNull)
}

func (v *Validator) IsValidFileName(ctx context.Context, label, input string, allowedExtensions []string, allowNull bool) (bool, error) {
	_, err := v.GetValidFileName(ctx, label, input, allowedExtensions, allowNull)
	return isValid(err)
}

// GetValidNumber parses a decimal inside [min, max].
func (v *Validator) GetValidNumber(ctx context.Context, label, input string, min, max float64, allowNull bool) (float64, error) {
	return get[float64](ctx, v, label, NumberRule{Min: min, Max: max}, TextInput(input), allowNull)
}

func (v *Validator) IsValidNumber(ctx context.Context, label, input string, min, max float64, allowNull bool) (bool, error) {
	_, err := v.GetValidNumber(ctx, label, input, min, max, allowNull)
	return isValid(err)
}

// GetValidFileContent reads and scans an upload, returning its content.
func (v *Validator) GetValidFileContent(ctx context.Context, label string, in *file.Upload, allowedTypes []string, maxBytes int64, allowNull bool) ([]byte, error) {
	rule := FileContentRule{AllowedTypes: allowedTypes, MaxSize: maxBytes, SniffContent: true}
	return get[[]byte](ctx, v, label, rule, FileInput(in), allowNull)
}

func (v *Validator) IsValidFileContent(ctx context.Context, label string, in *file.Upload, allowedTypes []string, maxBytes int64, allowNull bool) (bool, error) {
	_, err := v.GetValidFileContent(ctx, label, in, allowedTypes, maxBytes, allowNull)
	return isValid(err)
}

// GetValidUpload validates the upload's name, the destination dir inside
// root (which must exist) and the content.
func (v *Validator) GetValidUpload(ctx context.Context, label, root, dir string, in *file.Upload, allowedTypes []string, maxBytes int64, allowNull bool) (*file.File, error) {
	rule := UploadRule{
		Directory: &DirectoryRule{Root: root, MustExist: true},
		Content:   FileContentRule{AllowedTypes: allowedTypes, MaxSize: maxBytes, SniffContent: true},
	}
	return get[*file.File](ctx, v, label, rule, Input{Text: dir, File: in}, allowNull)
}

func (v *Validator) IsValidUpload(ctx context.Context, label, root, dir string, in *file.Upload, allowedTypes []string, maxBytes int64, allowNull bool) (bool, error) {
	_, err := v.GetValidUpload(ctx, label, root, dir, in, allowedTypes, maxBytes, allowNull)
	return isValid(err)
}

// GetValidChoice accepts exactly one of choices.
func (v *Validator) GetValidChoice(ctx context.Context, label, input string, choices []string, allowNull bool) (string, error) {
	return get[string](ctx, v, label, ChoiceRule{Choices: choices}, TextInput(input), allowNull)
}

func (v *Validator) IsValidChoice(ctx context.Context, label, input string, choices []string, allowNull bool) (bool, error) {
	_, err := v.GetValidChoice(ctx, label, input, choices, allowNull)
	return isValid(err)
}

// GetValidPrintable accepts printable ASCII up to maxLength characters.
func (v *Validator) GetValidPrintable(ctx context.Context, label, input string, maxLength int, allowNull bool) (string, error) {
	return get[string](ctx, v, label, PrintableRule{MaxLength: maxLength}, TextInput(input), allowNull)
}

func (v *Validator) IsValidPrintable(ctx context.Context, label, input string, maxLength int, allowNull bool) (bool, error) {
	_, err := v.GetValidPrintable(ctx, label, input, maxLength, allowNull)
	return isValid(err)
}

// GetValidRedirect accepts same-origin paths and absolute URLs inside the
// configured redirect allow-list.
func (v *Validator) GetValidRedirect(ctx context.Context, label, input string, maxLength int, allowNull bool) (*url.URL, error) {
	rule := RedirectRule{URI: URIRule{MaxLength: maxLength, RequireHost: true}, AllowRelative: true}
	return get[*url.URL](ctx, v, label, rule, TextInput(input), allowNull)
}

func (v *Validator) IsValidRedirect(ctx context.Context, label, input string, maxLength int, allowNull bool) (bool, error) {
	_, err := v.GetValidRedirect(ctx, label, input, maxLength, allowNull)
	return isValid(err)
}

// SaveValidUpload validates in as an upload into dir and stores it. Storages
// with a local root (BaseDir) get the full directory check; others get a
// lexical one. Storage errors are returned as-is and are not validation failures.
func (v *Validator) SaveValidUpload(ctx context.Context, label, dir string, in *file.Upload, allowedTypes []string, maxBytes int64, store file.Storage) (*file.File, error) {
	rule := UploadRule{
		Content: FileContentRule{AllowedTypes: allowedTypes, MaxSize: maxBytes, SniffContent: true},
	}
	if rooted, ok := store.(interface{ BaseDir() string }); ok {
		rule.Directory = &DirectoryRule{Root: rooted.BaseDir()}
	}

	out, c, err := v.run(ctx, label, "", rule, Input{Text: dir, File: in}, runOpts{canonicalize: true})
	if err != nil {
		return nil, err
	}
	meta := out.(*file.File)

	stored, err := store.Save(ctx, meta.RelativePath, bytes.NewReader(c.content), meta.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	return stored, nil
}
