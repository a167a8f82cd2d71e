package file

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

const sniffLen = 512

// DetectMIMEType sniffs the content type from magic bytes, ignoring any
// declared type. Parameters such as charset are dropped.
func DetectMIMEType(r io.Reader) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	return BaseMIMEType(http.DetectContentType(buf[:n])), nil
}

// BaseMIMEType lowercases a media type and strips its parameters.
// Unparsable values are returned trimmed and lowercased.
func BaseMIMEType(v string) string {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		if i := strings.IndexByte(v, ';'); i >= 0 {
			v = v[:i]
		}
		return strings.ToLower(strings.TrimSpace(v))
	}
	return mt
}

// MatchMIMEType reports whether mimeType is covered by one of the allowed
// patterns. Patterns may be exact ("image/png"), a type wildcard ("image/*")
// or "*/*". An empty allow-list matches nothing.
func MatchMIMEType(mimeType string, allowed ...string) bool {
	mt := BaseMIMEType(mimeType)
	major, _, ok := strings.Cut(mt, "/")
	if !ok {
		return false
	}
	for _, pattern := range allowed {
		p := BaseMIMEType(pattern)
		switch {
		case p == "*/*" || p == "*":
			return true
		case strings.HasSuffix(p, "/*") && strings.TrimSuffix(p, "/*") == major:
			return true
		case p == mt:
			return true
		case canonicalAlias(p) == canonicalAlias(mt):
			return true
		}
	}
	return false
}

var aliases = map[string]string{
	"image/jpg":                "image/jpeg",
	"image/pjpeg":              "image/jpeg",
	"audio/wave":               "audio/wav",
	"audio/x-wav":              "audio/wav",
	"application/x-pdf":        "application/pdf",
	"application/x-zip":        "application/zip",
	"application/x-javascript": "text/javascript",
	"application/javascript":   "text/javascript",
}

func canonicalAlias(mt string) string {
	if a, ok := aliases[mt]; ok {
		return a
	}
	return mt
}

// textual types that the sniffer reports as text/plain.
var textual = map[string]bool{
	"application/json":   true,
	"application/xml":    true,
	"application/yaml":   true,
	"application/x-yaml": true,
	"application/csv":    true,
	"text/javascript":    true,
	"image/svg+xml":      true,
}

// zip-container formats the sniffer reports as application/zip.
var zipContainers = map[string]bool{
	"application/zip":                                true,
	"application/epub+zip":                           true,
	"application/java-archive":                       true,
	"application/vnd.oasis.opendocument.text":        true,
	"application/vnd.oasis.opendocument.spreadsheet": true,
}

// ConsistentMIMEType reports whether sniffed content plausibly matches the
// declared type. It catches renamed executables and images posing as
// something else, while tolerating the sniffer's generic answers.
func ConsistentMIMEType(declared, sniffed string) bool {
	d := canonicalAlias(BaseMIMEType(declared))
	s := canonicalAlias(BaseMIMEType(sniffed))

	switch {
	case d == s:
		return true
	case s == "application/octet-stream":
		// unknown signature; nothing to contradict
		return d != "" && !strings.HasPrefix(d, "text/") && !textual[d]
	case s == "text/plain":
		return strings.HasPrefix(d, "text/") || textual[d]
	case s == "text/xml":
		return d == "application/xml" || d == "image/svg+xml" || strings.HasSuffix(d, "+xml")
	case s == "text/html":
		return d == "text/html" || d == "application/xhtml+xml"
	case s == "application/zip":
		return zipContainers[d] || strings.HasPrefix(d, "application/vnd.openxmlformats-officedocument.")
	default:
		return false
	}
}
