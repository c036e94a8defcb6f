package handlers

import "context"

// contextKey is unexported so keys cannot collide with other packages.
type contextKey string

const userIDContextKey contextKey = "userID"

// GetUserIDFromContext returns the user id set by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
