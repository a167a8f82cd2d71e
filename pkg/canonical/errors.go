package canonical

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIntrusion is matched by every EncodingError.
	ErrIntrusion = errors.New("encoding-based intrusion detected")

	// ErrCodec is returned when a codec fails for reasons other than malformed input.
	ErrCodec = errors.New("codec failure")
)

// EncodingError reports an encoding pattern that indicates deliberate evasion.
type EncodingError struct {
	Pattern Pattern
	Codecs  []string
	Reason  string
}

func (e *EncodingError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s encoding", ErrIntrusion.Error(), e.Pattern)
	if len(e.Codecs) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Codecs, ", "))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrIntrusion
}
