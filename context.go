package authcore

import "context"

type clientKeyContextKey struct{}

// WithClientKey attaches a caller identity to ctx. The Engine uses it as
// the rate-limit bucket for any credential validation triggered by that
// call; calls without a key share the anonymous bucket.
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, clientKeyContextKey{}, key)
}

func clientKeyFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	key, _ := ctx.Value(clientKeyContextKey{}).(string)
	return key
}
