// Package requestctx carries request metadata (request ID, client IP and
// user agent) through a context so that intrusion audit events and log
// records can be correlated with the HTTP request that caused them.
//
//	v := validator.New(validator.WithAuditLogger(
//	    audit.NewLogger(storage, requestctx.AuditOptions()...),
//	))
//	log := logger.New(logger.WithContextExtractors(requestctx.LoggerExtractor()))
//	http.ListenAndServe(addr, requestctx.Middleware(mux))
//
// The middleware reuses a well-formed X-Request-ID header and generates a
// UUID otherwise. The client IP comes from RemoteAddr unless proxy headers
// are explicitly trusted with WithTrustedHeaders.
package requestctx
