package middleware

import "context"

type contextKey string

const (
	ctxUserID     contextKey = "user_id"
	ctxRole       contextKey = "actor_role"
	ctxAccessID   contextKey = "access_id"
	ctxSessionKey contextKey = "session_key"
	ctxSession    contextKey = "session_state"
)

func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

func RoleFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRole)
}

// AccessIDFromContext returns the jti of the access token, used to revoke the
// refresh session on logout.
func AccessIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxAccessID)
}

// SessionKeyFromContext returns the anonymous session key if the request
// carried one or EnsureSessionKey created it.
func SessionKeyFromContext(ctx context.Context) string {
	if key := stringValue(ctx, ctxSessionKey); key != "" {
		return key
	}
	if state := sessionStateFrom(ctx); state != nil {
		return state.key
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithSessionKey injects a fixed anonymous session key. Used by tests and by
// callers that resolve the key outside the cookie middleware.
func WithSessionKey(ctx context.Context, key string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionKey, key)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
