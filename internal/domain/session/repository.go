package session

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for participant sessions.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	GetByID(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	LinkUser(ctx context.Context, sessionID, userID uuid.UUID) error
	UpdateLastSeen(ctx context.Context, sessionID uuid.UUID) error
	DeleteByID(ctx context.Context, sessionID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int, error)
}
