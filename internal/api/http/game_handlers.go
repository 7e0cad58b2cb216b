package httpapi

import (
	"errors"
	"net/http"

	appGames "github.com/puzzle-hub/puzzle-hub/internal/application/games"
)

type createGameRequest struct {
	PieceCount  int    `json:"pieceCount"`
	ImageURL    string `json:"imageUrl"`
	ImageName   string `json:"imageName"`
	ImageWidth  int    `json:"imageWidth"`
	ImageHeight int    `json:"imageHeight"`
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body")
		return
	}

	g, err := s.gameSvc.Create(r.Context(), appGames.CreateInput{
		PieceCount:  req.PieceCount,
		ImageURL:    req.ImageURL,
		ImageName:   req.ImageName,
		ImageWidth:  req.ImageWidth,
		ImageHeight: req.ImageHeight,
	})
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, g)
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	list, err := s.gameSvc.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to list games")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"games": list})
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	sess := authSessionFromContext(r.Context())
	view, err := s.gameSvc.GetBySlug(r.Context(), slugParam(r), sess.SessionID)
	if err != nil {
		if errors.Is(err, appGames.ErrGameNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "game not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to load game")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) getGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.gameSvc.State(r.Context(), slugParam(r))
	if err != nil {
		if errors.Is(err, appGames.ErrGameNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "game not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to load state")
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) getGameTopology(w http.ResponseWriter, r *http.Request) {
	topo, err := s.gameSvc.Topology(r.Context(), slugParam(r))
	if err != nil {
		if errors.Is(err, appGames.ErrGameNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "game not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to load topology")
		return
	}
	respondJSON(w, http.StatusOK, topo)
}

// deleteGame is admin-only and refused while anyone is connected.
func (s *Server) deleteGame(w http.ResponseWriter, r *http.Request) {
	sess := authSessionFromContext(r.Context())
	view, err := s.gameSvc.GetBySlug(r.Context(), slugParam(r), sess.SessionID)
	if err != nil {
		if errors.Is(err, appGames.ErrGameNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "game not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to load game")
		return
	}
	if !view.IsAdmin {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "only the game admin can delete it")
		return
	}

	if err := s.gameSvc.Delete(r.Context(), slugParam(r)); err != nil {
		if errors.Is(err, appGames.ErrPlayersConnected) {
			respondError(w, http.StatusConflict, "CONFLICT", "players are connected")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete game")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
