// Package htmlsafe turns untrusted HTML into markup restricted to a whitelist of
// tags and attributes.
//
// Sanitization is delegated to bluemonday. A Policy names the allowed tags and
// attributes; the compiled bluemonday policy is cached per distinct Policy so
// repeated validations do not rebuild it.
//
// Scripting constructs are never allowed, whatever the policy says: script,
// style, iframe, object and embed elements, event handler attributes (on*),
// inline style attributes and non-standard URL schemes are always removed.
//
//	s := htmlsafe.New()
//	out, err := s.Sanitize(`<b>hi</b><script>alert(1)</script>`, htmlsafe.DefaultPolicy())
//	// out == "<b>hi</b>"
//
// With Policy.RejectUnsafe set, Sanitize returns ErrUnsafeHTML instead of
// stripping disallowed markup.
package htmlsafe
