package authcore

import "context"

type clientIPContextKey struct{}
type userAgentContextKey struct{}
type userIDContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. Authenticate, Issue
// and Refresh fall back to it when called with an empty ip.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the caller's User-Agent to ctx. Authenticate, Issue
// and Refresh fall back to it when called with an empty user agent.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// WithUserID attaches an authenticated user id to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext returns the user id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	userID, _ := ctx.Value(userIDContextKey{}).(string)
	return userID, userID != ""
}

func clientIPFromContext(ctx context.Context, explicit string) string {
	if explicit != "" || ctx == nil {
		return explicit
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context, explicit string) string {
	if explicit != "" || ctx == nil {
		return explicit
	}
	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}
