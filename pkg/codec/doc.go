// Package codec implements single-layer decoders for the encoding schemes an
// attacker can stack on untrusted input: URL percent-encoding, HTML character
// references, JavaScript and CSS escapes, and Unicode compatibility forms.
//
// Each Codec removes exactly one layer of its scheme per Decode call. Looping
// until the input is stable, and deciding whether the observed layering is an
// attack, is the job of package canonical.
//
//	c, _ := codec.ByName("percent")
//	out, err := c.Decode("%2526") // "%26", nil
//
// Malformed input (overlong UTF-8 produced by %C0%AE, numeric references to
// NUL or surrogates, truncated escapes) yields an error wrapping ErrMalformed.
package codec
