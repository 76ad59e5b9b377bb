package middleware

// ContextKey is a dedicated type for context keys to avoid collisions.
type ContextKey string

const (
	// UserIDCtxKey holds the authenticated user's id in the request context.
	UserIDCtxKey = ContextKey("user_id")

	// UserRoleCtxKey holds the authenticated user's role in the request context.
	UserRoleCtxKey = ContextKey("user_role")
)
