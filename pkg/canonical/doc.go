// Package canonical reduces untrusted input to its canonical decoded form and
// flags encoding patterns that indicate an evasion attempt.
//
// A Canonicalizer applies an ordered list of codecs (see package codec) in
// passes. Each pass runs every codec once, feeding each output into the next
// codec. The loop ends on the first pass that changes nothing, so the result
// is a fixed point of every configured codec. The number of passes is
// bounded; input that keeps changing past the bound is classified Malformed.
//
// Classification:
//
//	no codec fired                     → PatternNone
//	one codec fired once               → PatternSingle
//	one codec fired two or more times  → PatternMultipleIdentical
//	two or more distinct codecs fired  → PatternMultipleMixed
//	a codec reported an illegal input  → PatternMalformed
//
// Mixed and malformed patterns are always rejected with an *EncodingError.
// Repeated identical encoding is rejected unless the caller allows it:
//
//	c := canonical.New()
//	res, err := c.Canonicalize("%2526", false)
//	if errors.Is(err, canonical.ErrIntrusion) {
//	    // res.Pattern == canonical.PatternMultipleIdentical
//	}
package canonical
