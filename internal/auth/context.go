package auth

import (
	"context"

	"shelfmark/models"
)

type contextKey int

const userKey contextKey = iota

// WithUser returns a context carrying the signed-in user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user attached by the auth middleware, or nil
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
