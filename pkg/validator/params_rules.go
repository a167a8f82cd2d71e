package validator

import (
	"fmt"
	"maps"
	"slices"
)

// Presence marks an HTTP parameter as optional or required.
type Presence uint8

const (
	Optional Presence = iota
	Required
)

func (p Presence) String() string {
	if p == Required {
		return "required"
	}
	return "optional"
}

// HTTPParamsRule accepts a parameter map that contains every Required key,
// no key outside Params, and no empty value. Keys and values are
// canonicalized when the call asks for it. All problems are reported
// together. Values are not type-checked.
type HTTPParamsRule struct {
	Params map[string]Presence
}

func (HTTPParamsRule) Kind() Kind { return KindHTTPParams }

func (r HTTPParamsRule) check() error {
	for name, p := range r.Params {
		if name == "" {
			return fmt.Errorf("%w: empty parameter name", ErrInvalidRule)
		}
		if p != Optional && p != Required {
			return fmt.Errorf("%w: parameter %q has unknown presence", ErrInvalidRule, name)
		}
	}
	return nil
}

func (r HTTPParamsRule) apply(c *call, _ string) (any, error) {
	params := make(map[string][]string, len(c.in.Params))
	for _, key := range slices.Sorted(maps.Keys(c.in.Params)) {
		values := c.in.Params[key]
		if c.canonicalize {
			var err error
			if key, err = c.canon(key); err != nil {
				return nil, err
			}
			decoded := make([]string, len(values))
			for i, val := range values {
				if decoded[i], err = c.canon(val); err != nil {
					return nil, err
				}
			}
			values = decoded
		}
		params[key] = append(params[key], values...)
	}

	var errs ValidationErrors
	for _, name := range slices.Sorted(maps.Keys(r.Params)) {
		values, ok := params[name]
		if !ok {
			if r.Params[name] == Required {
				errs.Add(ValidationError{
					Message:           fmt.Sprintf("parameter %q is required", name),
					TranslationKey:    "validation.param_required",
					TranslationValues: map[string]any{"param": name},
				})
			}
			continue
		}
		if len(values) == 0 || slices.ContainsFunc(values, isBlank) {
			errs.Add(ValidationError{
				Message:           fmt.Sprintf("parameter %q must not be empty", name),
				TranslationKey:    "validation.param_empty",
				TranslationValues: map[string]any{"param": name},
			})
		}
	}

	unexpected := 0
	for key := range params {
		if _, ok := r.Params[key]; !ok {
			unexpected++
		}
	}
	if unexpected > 0 {
		errs.Add(ValidationError{
			Message:           fmt.Sprintf("%d unexpected parameters", unexpected),
			TranslationKey:    "validation.param_unexpected",
			TranslationValues: map[string]any{"count": unexpected},
		})
	}

	if !errs.IsEmpty() {
		return nil, errs
	}
	return params, nil
}
