// Package validator is the single choke-point for untrusted input.
//
// Every call runs the same pipeline: a null check governed by allowNull,
// canonicalization through pkg/canonical (decoding stacked HTML entity and
// percent encodings until stable), an optional length bound and finally one
// Rule. The result is either a typed safe value or one of two distinct
// errors:
//
//   - ValidationErrors (matches ErrValidationFailed): ordinary bad input.
//     Messages describe the constraint and never echo the input.
//   - *IntrusionError (matches ErrIntrusionDetected and canonical.ErrIntrusion):
//     mixed or repeated encoding, malformed sequences, a path leaving its
//     root, a forbidden URI scheme. These are logged at Warn and sent to the
//     configured IntrusionRecorder.
//
// Failures of external capabilities (content scanner, codecs, filesystem
// timeouts) fail closed as ValidationErrors matching ErrUnverifiable.
//
// # Rules
//
// Rule is a closed set of variants: DateRule, NumberRule, CreditCardRule,
// ChoiceRule, PrintableRule, StringRule, URIRule, RedirectRule,
// DirectoryRule, FilenameRule, SafeHTMLRule, FileContentRule, UploadRule and
// HTTPParamsRule. Named rules live in an immutable RuleSet; Reload swaps the
// whole set atomically and each validation reads exactly one snapshot.
//
// # Usage
//
//	v := validator.New(
//	    validator.WithRuleSet(rules),
//	    validator.WithLogger(log),
//	    validator.WithAuditLogger(auditLog),
//	)
//
//	name, err := v.GetValidInput(ctx, "Login user name", raw, "Username", 64, false, true)
//	switch {
//	case validator.IsIntrusion(err):
//	    // terminate the session
//	case err != nil:
//	    // re-prompt
//	}
//
//	ok, err := v.IsValidNumber(ctx, "Quantity", raw, 1, 100, false)
//	// ok == false, err == nil for "1000"; err != nil only for intrusions
package validator
