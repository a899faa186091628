package auth

import "context"

// Identity is the resolved caller identity attached to a request after
// the auth middleware has run.
type Identity struct {
	UserID   string
	Username string
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityKey contextKey = "identity"

// ContextWithIdentity adds the resolved Identity to the context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the Identity from the context.
// Returns nil if the request was not authenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityKey).(*Identity)
	if !ok {
		return nil
	}
	return id
}

// MustIdentityFromContext retrieves the Identity from the context.
// Panics if not present (use only behind the auth middleware).
func MustIdentityFromContext(ctx context.Context) *Identity {
	id := IdentityFromContext(ctx)
	if id == nil {
		panic("identity not found - ensure auth middleware is applied")
	}
	return id
}
