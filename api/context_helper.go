package api

import (
	"context"
	"time"

	"github.com/shaj13/go-guardian/auth"
)

// QueryTimeout is the default timeout for store queries
const QueryTimeout = 10 * time.Second

type contextKey string

const userContextKey contextKey = "user"

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

// WithUser stores the authenticated user in ctx
func WithUser(ctx context.Context, user auth.Info) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil outside the auth middleware
func UserFromContext(ctx context.Context) auth.Info {
	user, _ := ctx.Value(userContextKey).(auth.Info)
	return user
}

// ClientID returns the id of the authenticated user, the key of its session storage
func ClientID(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.ID()
	}
	return ""
}
