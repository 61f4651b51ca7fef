package httpx

import "context"

// clientIDKey is an unexported context key type to avoid collisions across packages.
type clientIDKey struct{}

// SetClientIDInContext returns a child context that carries the client context id.
func SetClientIDInContext(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

// ClientIDFromContext returns the client context id, or "" when none is set.
func ClientIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDKey{}).(string); ok {
		return id
	}
	return ""
}
