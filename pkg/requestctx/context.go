package requestctx

import "context"

// Info is the request metadata stored in a context.
type Info struct {
	RequestID string
	IP        string
	UserAgent string
}

type contextKey struct{}

// WithInfo returns a copy of ctx carrying info.
func WithInfo(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

// FromContext returns the Info stored in ctx, if any.
func FromContext(ctx context.Context) (Info, bool) {
	if ctx == nil {
		return Info{}, false
	}
	info, ok := ctx.Value(contextKey{}).(Info)
	return info, ok
}

func RequestID(ctx context.Context) (string, bool) {
	info, _ := FromContext(ctx)
	return info.RequestID, info.RequestID != ""
}

func IP(ctx context.Context) (string, bool) {
	info, _ := FromContext(ctx)
	return info.IP, info.IP != ""
}

func UserAgent(ctx context.Context) (string, bool) {
	info, _ := FromContext(ctx)
	return info.UserAgent, info.UserAgent != ""
}
