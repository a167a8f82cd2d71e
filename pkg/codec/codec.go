package codec

import (
	"fmt"
	"strings"
)

// Codec decodes one layer of a single encoding scheme.
//
// Decode must not loop: "%2526" decodes to "%26", never to "&". Callers detect
// a change by comparing output to input. A malformed or illegal sequence is
// reported with an error wrapping ErrMalformed; any other error is treated as
// an internal failure of the codec.
type Codec interface {
	Name() string
	Decode(input string) (string, error)
}

// Codec names accepted by ByName.
const (
	NamePercent    = "percent"
	NameHTMLEntity = "html"
	NameJavaScript = "javascript"
	NameCSS        = "css"
	NameUnicode    = "unicode"
)

// Default returns the codec list used when nothing is configured:
// HTML entities first, then percent-encoding.
func Default() []Codec {
	return []Codec{HTMLEntity{}, Percent{}}
}

// ByName resolves a codec by its name or a common alias.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NamePercent, "url", "uri":
		return Percent{}, nil
	case NameHTMLEntity, "html_entity", "htmlentity":
		return HTMLEntity{}, nil
	case NameJavaScript, "js":
		return JavaScript{}, nil
	case NameCSS:
		return CSS{}, nil
	case NameUnicode, "nfkc":
		return Unicode{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// ByNames resolves an ordered codec list, rejecting duplicates.
func ByNames(names ...string) ([]Codec, error) {
	codecs := make([]Codec, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		c, err := ByName(name)
		if err != nil {
			return nil, err
		}
		if seen[c.Name()] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCodec, c.Name())
		}
		seen[c.Name()] = true
		codecs = append(codecs, c)
	}
	if len(codecs) == 0 {
		return nil, ErrNoCodecs
	}
	return codecs, nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// validCodePoint reports whether r may appear in decoded text.
func validCodePoint(r uint64) bool {
	if r == 0 || r > 0x10FFFF {
		return false
	}
	return r < 0xD800 || r > 0xDFFF
}

func isAlphanumeric(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}
