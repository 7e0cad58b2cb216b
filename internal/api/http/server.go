package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	appAuth "github.com/puzzle-hub/puzzle-hub/internal/application/auth"
	appGames "github.com/puzzle-hub/puzzle-hub/internal/application/games"
	appPlay "github.com/puzzle-hub/puzzle-hub/internal/application/play"
	"github.com/puzzle-hub/puzzle-hub/internal/infrastructure/ws"
)

const sessionCookieName = "puzzle_session"

// Server holds dependencies for HTTP handlers.
type Server struct {
	authSvc        *appAuth.Service
	gameSvc        *appGames.Service
	playSvc        *appPlay.Service
	hub            *ws.Hub
	allowedOrigins []string
	logger         zerolog.Logger
}

func NewServer(
	authSvc *appAuth.Service,
	gameSvc *appGames.Service,
	playSvc *appPlay.Service,
	hub *ws.Hub,
	allowedOrigins []string,
	logger zerolog.Logger,
) *Server {
	return &Server{
		authSvc:        authSvc,
		gameSvc:        gameSvc,
		playSvc:        playSvc,
		hub:            hub,
		allowedOrigins: allowedOrigins,
		logger:         logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/session", s.createSession)
			r.Post("/login", s.login)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/register", s.register)
				r.Get("/me", s.me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/games", func(r chi.Router) {
				r.Post("/", s.createGame)
				r.Get("/", s.listGames)
				r.Get("/{slug}", s.getGame)
				r.Get("/{slug}/state", s.getGameState)
				r.Get("/{slug}/topology", s.getGameTopology)
				r.Delete("/{slug}", s.deleteGame)
			})
		})

		// The websocket handshake authenticates via query parameter; the
		// upgrade request cannot carry an Authorization header from browsers.
		r.Get("/games/{slug}/ws", s.gameSocket)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func slugParam(r *http.Request) string {
	return chi.URLParam(r, "slug")
}

// sessionCookie builds the cookie carrying the bearer token for browser
// clients that prefer cookies over the Authorization header.
func sessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
