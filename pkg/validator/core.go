package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/inputguard/pkg/canonical"
)

// ValidationError represents a single validation error with translation support.
// Messages describe the violated constraint and never include the input.
type ValidationError struct {
	Field             string
	Message           string
	TranslationKey    string
	TranslationValues map[string]any
	// Cause is the underlying error, if any. It is not part of Error().
	Cause error `json:"-"`
}

// ValidationErrors represents a collection of validation errors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	var parts []string
	for _, err := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes every ValidationErrors match ErrValidationFailed.
func (ve ValidationErrors) Is(target error) bool {
	return target == ErrValidationFailed
}

// Unwrap exposes the causes so errors.Is reaches sentinels such as ErrUnknownRule.
func (ve ValidationErrors) Unwrap() []error {
	var causes []error
	for _, err := range ve {
		if err.Cause != nil {
			causes = append(causes, err.Cause)
		}
	}
	return causes
}

func (ve *ValidationErrors) Add(err ValidationError) {
	*ve = append(*ve, err)
}

func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

func (ve ValidationErrors) Get(field string) []string {
	var messages []string
	for _, err := range ve {
		if err.Field == field {
			messages = append(messages, err.Message)
		}
	}
	return messages
}

func (ve ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, err := range ve {
		if !seen[err.Field] {
			fields = append(fields, err.Field)
			seen[err.Field] = true
		}
	}
	return fields
}

func (ve ValidationErrors) IsEmpty() bool {
	return len(ve) == 0
}

// ExtractValidationErrors extracts ValidationErrors from an error.
func ExtractValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var validationErr ValidationErrors
	if errors.As(err, &validationErr) {
		return validationErr
	}

	return nil
}

func IsValidationError(err error) bool {
	if err == nil {
		return false
	}

	var validationErr ValidationErrors
	return errors.As(err, &validationErr)
}

// IntrusionError reports input that shows signs of deliberate evasion:
// stacked or mixed encodings, malformed sequences, traversal outside a root
// or a forbidden URI scheme. It is never a ValidationErrors.
type IntrusionError struct {
	Context string
	Rule    string
	Kind    Kind
	Pattern canonical.Pattern
	Codecs  []string
	Reason  string
}

func (e *IntrusionError) Error() string {
	var b strings.Builder
	b.WriteString(ErrIntrusionDetected.Error())
	if e.Context != "" {
		fmt.Fprintf(&b, " in %q", e.Context)
	}
	if e.Pattern != canonical.PatternNone {
		fmt.Fprintf(&b, ": %s encoding", e.Pattern)
	}
	if len(e.Codecs) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Codecs, ", "))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *IntrusionError) Is(target error) bool {
	return target == ErrIntrusionDetected || target == canonical.ErrIntrusion
}

// IsIntrusion reports whether err is, or wraps, an *IntrusionError.
func IsIntrusion(err error) bool {
	return errors.Is(err, ErrIntrusionDetected)
}

// AsIntrusion returns the *IntrusionError in err's chain, if any.
func AsIntrusion(err error) (*IntrusionError, bool) {
	var ie *IntrusionError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// fail builds a single-entry ValidationErrors. Field is filled in by the
// Validator from the call's context label.
func fail(key, message string, values map[string]any) error {
	return ValidationErrors{{
		Message:           message,
		TranslationKey:    key,
		TranslationValues: values,
	}}
}

func failWith(cause error, key, message string, values map[string]any) error {
	return ValidationErrors{{
		Message:           message,
		TranslationKey:    key,
		TranslationValues: values,
		Cause:             cause,
	}}
}

func intrusion(reason string) error {
	return &IntrusionError{Reason: reason}
}

// capabilityError marks a failure of an external capability. The Validator
// logs it and reports ErrUnverifiable instead.
type capabilityError struct {
	capability string
	err        error
}

func (e *capabilityError) Error() string { return e.capability + ": " + e.err.Error() }
func (e *capabilityError) Unwrap() error { return e.err }

func unavailable(capability string, err error) error {
	return &capabilityError{capability: capability, err: err}
}

// withField stamps label on every entry, copying so rule-owned values are never mutated.
func withField(err error, label string) error {
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := make(ValidationErrors, len(ve))
	for i, e := range ve {
		e.Field = label
		if e.TranslationValues == nil {
			e.TranslationValues = map[string]any{}
		} else {
			values := make(map[string]any, len(e.TranslationValues)+1)
			for k, v := range e.TranslationValues {
				values[k] = v
			}
			e.TranslationValues = values
		}
		e.TranslationValues["field"] = label
		out[i] = e
	}
	return out
}
