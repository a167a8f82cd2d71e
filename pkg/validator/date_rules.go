package validator

import (
	"fmt"
	"strings"
	"time"
)

var layoutTokens = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"HH", "15",
	"hh", "15",
	"mm", "04",
	"ss", "05",
	"SSS", "000",
)

// GoLayout converts a token layout such as "YYYY-MM-DD" into Go's reference
// layout. Go layouts pass through unchanged.
func GoLayout(layout string) string {
	return layoutTokens.Replace(layout)
}

// DateRule accepts dates in Layout. Out-of-range fields (month 13, February 30)
// fail rather than being normalized. Zero Min or Max disables that bound.
type DateRule struct {
	Layout string
	Min    time.Time
	Max    time.Time
}

func (DateRule) Kind() Kind { return KindDate }

func (r DateRule) check() error {
	if r.Layout == "" {
		return fmt.Errorf("%w: date layout is required", ErrInvalidRule)
	}
	if !r.Min.IsZero() && !r.Max.IsZero() && r.Max.Before(r.Min) {
		return fmt.Errorf("%w: date max is before min", ErrInvalidRule)
	}
	return nil
}

func (r DateRule) apply(_ *call, text string) (any, error) {
	t, err := time.Parse(GoLayout(r.Layout), text)
	if err != nil {
		return nil, fail("validation.date_format",
			"must be a valid date in format "+r.Layout,
			map[string]any{"format": r.Layout})
	}
	if !r.Min.IsZero() && t.Before(r.Min) {
		return nil, fail("validation.date_after",
			"date must not be before "+r.Min.Format(time.DateOnly),
			map[string]any{"min": r.Min.Format(time.DateOnly)})
	}
	if !r.Max.IsZero() && t.After(r.Max) {
		return nil, fail("validation.date_before",
			"date must not be after "+r.Max.Format(time.DateOnly),
			map[string]any{"max": r.Max.Format(time.DateOnly)})
	}
	return t, nil
}
