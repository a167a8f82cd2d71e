package codec

import "errors"

var (
	// ErrMalformed is returned when input contains an illegal or malformed encoded sequence.
	ErrMalformed = errors.New("malformed encoding")

	// ErrUnknownCodec is returned by ByName for unsupported codec names.
	ErrUnknownCodec = errors.New("unknown codec")

	// ErrDuplicateCodec is returned when a codec list names the same codec twice.
	ErrDuplicateCodec = errors.New("duplicate codec")

	// ErrNoCodecs is returned when a codec list is empty.
	ErrNoCodecs = errors.New("no codecs configured")
)
