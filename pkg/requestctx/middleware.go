package requestctx

import (
	"net"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// Header carries the request ID in both directions.
	Header = "X-Request-ID"

	maxIDLength        = 128
	maxUserAgentLength = 512
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type middlewareConfig struct {
	trusted []string
}

// Option configures Middleware.
type Option func(*middlewareConfig)

// WithTrustedHeaders names proxy headers to read the client IP from, in
// priority order, e.g. "CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP".
// Only set this behind a proxy that overwrites them; clients can forge them.
func WithTrustedHeaders(headers ...string) Option {
	return func(c *middlewareConfig) {
		c.trusted = append(c.trusted, headers...)
	}
}

// Middleware stores request metadata in the request context and echoes the
// request ID in the response.
func Middleware(opts ...Option) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := Info{
				RequestID: requestID(r.Header.Get(Header)),
				IP:        clientIP(r, cfg.trusted),
				UserAgent: truncate(r.UserAgent(), maxUserAgentLength),
			}
			w.Header().Set(Header, info.RequestID)
			next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
		})
	}
}

func requestID(header string) string {
	if header != "" && len(header) <= maxIDLength && validID.MatchString(header) {
		return header
	}
	return uuid.NewString()
}

func clientIP(r *http.Request, trusted []string) string {
	for _, h := range trusted {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		// X-Forwarded-For style lists: the first entry is the client
		for part := range strings.SplitSeq(v, ",") {
			if ip := parseIP(part); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
