package domain

import "context"

type ctxRequestIdKey struct{}

// SetRequestId returns a context that carries the id of the API request that triggered the work.
func SetRequestId(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestIdKey{}, id)
}

// GetRequestId returns the request id stored in the context, or an empty string.
func GetRequestId(ctx context.Context) string {
	if id, ok := ctx.Value(ctxRequestIdKey{}).(string); ok {
		return id
	}
	return ""
}
