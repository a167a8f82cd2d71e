// Package logger builds *slog.Logger values with functional options, helper
// attribute constructors and injection of values stored in context.Context.
//
// Extractors registered with WithContextExtractors run on every record, which
// is how request-scoped values such as a request id reach log lines without
// being passed around explicitly.
//
// Attribute helpers in attr.go keep key names consistent across packages.
// Validation code uses Context, Rule, Kind, Pattern and Codecs so intrusion
// reports can be queried uniformly. Raw input is never logged; WithRedactedKeys
// masks keys that might carry it anyway.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "inputguard"),
//	    logger.WithRedactedKeys("input"),
//	    logger.WithContextExtractors(requestctx.LoggerExtractor()),
//	)
//	log.WarnContext(ctx, "intrusion detected",
//	    logger.Context("Login name"),
//	    logger.Pattern("multiple_mixed"),
//	    logger.Codecs([]string{"html", "percent"}),
//	)
//
// NewFromConfig reads the same settings from a Config loaded with pkg/config
// (GUARD_ENV, GUARD_LOG_LEVEL, GUARD_SERVICE_NAME, GUARD_LOG_REDACT). Discard
// returns a logger that drops everything, which is what library types default to.
package logger
