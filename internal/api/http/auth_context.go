package httpapi

import (
	"context"

	"github.com/google/uuid"
)

type authContextKey string

const authSessionKey authContextKey = "authSession"

// AuthSession is the authenticated participant in request context.
type AuthSession struct {
	SessionID   uuid.UUID
	DisplayName string
	UserID      *uuid.UUID
}

func withAuthSession(ctx context.Context, s *AuthSession) context.Context {
	if s == nil {
		return ctx
	}
	return context.WithValue(ctx, authSessionKey, s)
}

func authSessionFromContext(ctx context.Context) *AuthSession {
	if v, ok := ctx.Value(authSessionKey).(*AuthSession); ok {
		return v
	}
	return nil
}
