package ruleset

import "errors"

var (
	ErrParse            = errors.New("ruleset: failed to parse definition")
	ErrNoRules          = errors.New("ruleset: definition contains no rules")
	ErrUnknownKind      = errors.New("ruleset: unknown rule kind")
	ErrMissingField     = errors.New("ruleset: required field is missing")
	ErrInvalidField     = errors.New("ruleset: invalid field value")
	ErrInvalidRegexp    = errors.New("ruleset: invalid pattern")
	ErrReadFile         = errors.New("ruleset: failed to read definition file")
	ErrNoReloadInterval = errors.New("ruleset: reload interval must be positive")
)
