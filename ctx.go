package accounts

import "context"

var identityCtxKey = &contextKey{"identity"}
var sessionCtxKey = &contextKey{"session"}

type contextKey struct {
	name string
}

// WithIdentity sets the calling Identity in the given context. Workflows
// read the caller from here instead of any ambient global state.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the calling identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(Identity)
	return raw, ok
}

// WithSession sets the live session in the given context
func WithSession(ctx context.Context, session *SessionObject) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

// SessionFromContext finds the live session from the context
func SessionFromContext(ctx context.Context) (*SessionObject, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(*SessionObject)
	return raw, ok
}
