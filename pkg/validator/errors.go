package validator

import "errors"

var (
	// ErrValidationFailed is matched by every ValidationErrors value.
	ErrValidationFailed = errors.New("validation failed")

	// ErrIntrusionDetected is matched by every *IntrusionError.
	ErrIntrusionDetected = errors.New("intrusion detected")

	// ErrFieldRequired is the cause of the failure reported for blank input when nulls are not allowed.
	ErrFieldRequired = errors.New("field is required")

	// ErrUnknownRule is returned, as a validation failure, when a rule name is not in the RuleSet.
	ErrUnknownRule = errors.New("unknown rule")

	// ErrInvalidRule is returned when a rule's constraints are inconsistent.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrUnverifiable is returned, as a validation failure, when an external
	// capability (scanner, codec, filesystem) could not give an answer in time.
	ErrUnverifiable = errors.New("input could not be verified")
)
