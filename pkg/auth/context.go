package auth

import (
	"context"
)

// UserContext carries the verified caller identity through a request.
type UserContext struct {
	UserID string
	Email  string
	Roles  []string
}

type contextKey string

const userContextKey contextKey = "auth.user"

// SetUserInContext stores the user context on a request context.
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext retrieves the user context, if present.
func GetUserFromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// CallerID returns the verified caller identity from the context, or "".
func CallerID(ctx context.Context) string {
	if user, ok := GetUserFromContext(ctx); ok {
		return user.UserID
	}
	return ""
}
