package validator

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxNumberLength   = 64
	maxNumberExponent = 400
)

var numberGrammar = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE]([+-]?[0-9]+))?$`)

// NumberRule accepts plain decimal numbers within the closed interval
// [Min, Max]. The comparison is exact: 100.0001 is outside [0, 100]. Use
// math.Inf for an open bound.
type NumberRule struct {
	Min float64
	Max float64
}

func (NumberRule) Kind() Kind { return KindNumber }

func (r NumberRule) check() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return fmt.Errorf("%w: number bounds must not be NaN", ErrInvalidRule)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: number min %v is greater than max %v", ErrInvalidRule, r.Min, r.Max)
	}
	return nil
}

func (r NumberRule) apply(_ *call, text string) (any, error) {
	x, ok := parseDecimal(text)
	if !ok {
		return nil, fail("validation.number", "must be a number", nil)
	}

	outOfRange := fail("validation.number_range",
		fmt.Sprintf("must be between %v and %v", r.Min, r.Max),
		map[string]any{"min": r.Min, "max": r.Max})

	if !math.IsInf(r.Min, -1) && x.Cmp(new(big.Rat).SetFloat64(r.Min)) < 0 {
		return nil, outOfRange
	}
	if !math.IsInf(r.Max, 1) && x.Cmp(new(big.Rat).SetFloat64(r.Max)) > 0 {
		return nil, outOfRange
	}

	f, _ := x.Float64()
	if math.IsInf(f, 0) {
		return nil, outOfRange
	}
	return f, nil
}

// parseDecimal parses the plain decimal grammar exactly. Length and exponent
// are capped so a short input cannot demand a huge big.Rat.
func parseDecimal(s string) (*big.Rat, bool) {
	if len(s) > maxNumberLength {
		return nil, false
	}
	m := numberGrammar.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	if m[1] != "" {
		exp, err := strconv.Atoi(m[1])
		if err != nil || exp > maxNumberExponent || exp < -maxNumberExponent {
			return nil, false
		}
	}

	s = strings.TrimPrefix(s, "+")
	mantissa, exp, hasExp := strings.Cut(strings.ToLower(s), "e")
	neg := strings.HasPrefix(mantissa, "-")
	mantissa = strings.TrimPrefix(mantissa, "-")
	if strings.HasPrefix(mantissa, ".") {
		mantissa = "0" + mantissa
	}
	if strings.HasSuffix(mantissa, ".") {
		mantissa += "0"
	}
	norm := mantissa
	if neg {
		norm = "-" + norm
	}
	if hasExp {
		norm += "e" + exp
	}

	x, ok := new(big.Rat).SetString(norm)
	return x, ok
}
