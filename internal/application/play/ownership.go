package play

import (
	"sync"

	"github.com/google/uuid"
)

// Ledger tracks which participant holds exclusive write access to which
// piece, per game. Ownership is ephemeral and process-local: a restart or an
// observed disconnect frees every piece the participant held. There is no
// lease renewal; the transport's disconnect notification is the release path.
type Ledger struct {
	mu    sync.Mutex
	games map[uuid.UUID]map[int]uuid.UUID
}

// NewLedger creates an empty ownership ledger.
func NewLedger() *Ledger {
	return &Ledger{games: make(map[uuid.UUID]map[int]uuid.UUID)}
}

// Claim grants every member piece to the participant, atomically with
// respect to concurrent claims: if any member is already held by a different
// participant nothing is claimed and the holder is returned. Claiming pieces
// already held by the same participant succeeds.
func (l *Ledger) Claim(gameID uuid.UUID, members []int, participant uuid.UUID) (uuid.UUID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	owners := l.games[gameID]
	if owners == nil {
		owners = make(map[int]uuid.UUID)
		l.games[gameID] = owners
	}
	for _, idx := range members {
		if holder, held := owners[idx]; held && holder != participant {
			return holder, false
		}
	}
	for _, idx := range members {
		owners[idx] = participant
	}
	return uuid.Nil, true
}

// Release frees the given pieces, but only entries currently held by the
// participant. Idempotent; releasing a free piece is a no-op.
func (l *Ledger) Release(gameID uuid.UUID, members []int, participant uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	owners := l.games[gameID]
	if owners == nil {
		return
	}
	for _, idx := range members {
		if owners[idx] == participant {
			delete(owners, idx)
		}
	}
}

// ReleaseAllFor frees every piece the participant holds in the game,
// regardless of group. Called on disconnect.
func (l *Ledger) ReleaseAllFor(gameID uuid.UUID, participant uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	owners := l.games[gameID]
	for idx, holder := range owners {
		if holder == participant {
			delete(owners, idx)
		}
	}
}

// Holder returns the participant currently holding the piece, if any.
func (l *Ledger) Holder(gameID uuid.UUID, pieceIndex int) (uuid.UUID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	holder, held := l.games[gameID][pieceIndex]
	return holder, held
}

// DropGame discards all ownership state for a deleted game.
func (l *Ledger) DropGame(gameID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.games, gameID)
}
