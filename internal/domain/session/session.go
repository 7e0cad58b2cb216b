package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is one participant's credential for joining games. Sessions are
// anonymous by default and may later be linked to a registered user.
type Session struct {
	ID          int64      `json:"id"`
	SessionID   uuid.UUID  `json:"sessionId"`
	TokenHash   string     `json:"-"`
	DisplayName string     `json:"displayName"`
	UserID      *uuid.UUID `json:"userId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	LastSeenAt  *time.Time `json:"lastSeenAt,omitempty"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
