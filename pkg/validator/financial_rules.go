package validator

import "strings"

// CreditCardRule accepts card numbers of 13 to 19 digits, optionally grouped
// with spaces or dashes, that pass the Luhn check. The result is the bare digits.
type CreditCardRule struct{}

func (CreditCardRule) Kind() Kind { return KindCreditCard }

func (CreditCardRule) check() error { return nil }

func (CreditCardRule) apply(_ *call, text string) (any, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(text)

	invalid := fail("validation.credit_card", "invalid credit card number", nil)

	if len(cleaned) < 13 || len(cleaned) > 19 {
		return nil, invalid
	}
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] < '0' || cleaned[i] > '9' {
			return nil, invalid
		}
	}
	if !luhn(cleaned) {
		return nil, invalid
	}
	return cleaned, nil
}

func luhn(digits string) bool {
	sum := 0
	isEven := false

	// Process digits from right to left
	for i := len(digits) - 1; i >= 0; i-- {
		digit := int(digits[i] - '0')

		if isEven {
			digit *= 2
			if digit > 9 {
				digit = digit/10 + digit%10
			}
		}

		sum += digit
		isEven = !isEven
	}

	return sum%10 == 0
}
