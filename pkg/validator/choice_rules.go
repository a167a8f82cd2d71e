package validator

import (
	"fmt"
	"slices"
	"strings"
)

// ChoiceRule accepts exactly one of Choices. Matching is case-sensitive.
type ChoiceRule struct {
	Choices []string
}

func (ChoiceRule) Kind() Kind { return KindChoice }

func (r ChoiceRule) check() error {
	if len(r.Choices) == 0 {
		return fmt.Errorf("%w: choice list is empty", ErrInvalidRule)
	}
	return nil
}

func (r ChoiceRule) apply(_ *call, text string) (any, error) {
	if !slices.Contains(r.Choices, text) {
		return nil, fail("validation.in_list",
			"must be one of: "+strings.Join(r.Choices, ", "),
			map[string]any{"choices": strings.Join(r.Choices, ", ")})
	}
	return text, nil
}
