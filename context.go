package adminguard

import "context"

type clientIPContextKey struct{}
type regionContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine hashes it
// into the actor key used for rate limiting, blocklist checks, and audit
// logging. The raw IP itself is never persisted.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithRegion attaches an edge region label to ctx. It is carried on audit
// events for display only and has no effect on any security decision.
func WithRegion(ctx context.Context, region string) context.Context {
	return context.WithValue(ctx, regionContextKey{}, region)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func regionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	region, _ := ctx.Value(regionContextKey{}).(string)
	return region
}
