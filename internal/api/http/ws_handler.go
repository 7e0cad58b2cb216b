package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	appGames "github.com/puzzle-hub/puzzle-hub/internal/application/games"
	"github.com/puzzle-hub/puzzle-hub/internal/infrastructure/ws"
)

// gameSocket upgrades the connection and hands it to the realtime layer.
// Auth rides in the token query parameter and the game is addressed by slug.
func (s *Server) gameSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = extractToken(r)
	}
	sess, err := s.authSvc.Authenticate(r.Context(), token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session")
		return
	}

	view, err := s.gameSvc.GetBySlug(r.Context(), slugParam(r), sess.SessionID)
	if err != nil {
		if errors.Is(err, appGames.ErrGameNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "game not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to load game")
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	ws.Serve(s.hub, s.playSvc, conn, view.Game.GameID, sess.SessionID, sess.DisplayName, s.logger)
}

// checkOrigin admits same-origin requests and any configured origin. An
// empty allowlist admits everything, for local development.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
