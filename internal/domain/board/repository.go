package board

import (
	"context"

	"github.com/google/uuid"
)

// Provider serves the immutable topology of a game. Implementations may
// cache: the topology never changes after game creation.
type Provider interface {
	Topology(ctx context.Context, gameID uuid.UUID) (*Topology, error)
}
