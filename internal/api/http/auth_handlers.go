package httpapi

import (
	"net/http"

	appAuth "github.com/puzzle-hub/puzzle-hub/internal/application/auth"
)

type sessionResponse struct {
	SessionID   string  `json:"sessionId"`
	DisplayName string  `json:"displayName"`
	Token       string  `json:"token"`
	UserID      *string `json:"userId,omitempty"`
}

// createSession issues an anonymous participant session. This is the entry
// point for every new visitor; the returned token authenticates both the
// REST surface and the websocket handshake.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	res, err := s.authSvc.CreateAnonymousSession(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "failed to create session")
		return
	}
	http.SetCookie(w, sessionCookie(res.Token, res.Session.ExpiresAt))
	respondJSON(w, http.StatusCreated, sessionResponse{
		SessionID:   res.Session.SessionID.String(),
		DisplayName: res.Session.DisplayName,
		Token:       res.Token,
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body")
		return
	}
	sess := authSessionFromContext(r.Context())

	u, err := s.authSvc.Register(r.Context(), sess.SessionID, appAuth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"userId":   u.UserID.String(),
		"username": u.Username,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body")
		return
	}
	res, err := s.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password")
		return
	}
	userID := res.Session.UserID.String()
	http.SetCookie(w, sessionCookie(res.Token, res.Session.ExpiresAt))
	respondJSON(w, http.StatusOK, sessionResponse{
		SessionID:   res.Session.SessionID.String(),
		DisplayName: res.Session.DisplayName,
		Token:       res.Token,
		UserID:      &userID,
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	sess := authSessionFromContext(r.Context())
	out := map[string]interface{}{
		"sessionId":   sess.SessionID.String(),
		"displayName": sess.DisplayName,
	}
	if sess.UserID != nil {
		out["userId"] = sess.UserID.String()
	}
	respondJSON(w, http.StatusOK, out)
}
