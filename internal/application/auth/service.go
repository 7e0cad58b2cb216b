package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domainSession "github.com/puzzle-hub/puzzle-hub/internal/domain/session"
	domainUser "github.com/puzzle-hub/puzzle-hub/internal/domain/user"
)

var adjectives = []string{"Happy", "Clever", "Swift", "Brave", "Calm", "Eager", "Gentle", "Kind"}
var nouns = []string{"Panda", "Fox", "Owl", "Bear", "Wolf", "Hawk", "Deer", "Otter"}

// Service issues participant sessions and authenticates tokens for both the
// HTTP surface and the realtime handshake.
type Service struct {
	sessionRepo domainSession.Repository
	userRepo    domainUser.Repository
	sessionTTL  time.Duration
	logger      zerolog.Logger
}

// NewService creates an auth service.
func NewService(sessionRepo domainSession.Repository, userRepo domainUser.Repository, sessionTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		sessionTTL:  sessionTTL,
		logger:      logger.With().Str("service", "auth").Logger(),
	}
}

// SessionResult contains a freshly issued session and its bearer token. The
// token is returned once and stored only as a hash.
type SessionResult struct {
	Session *domainSession.Session
	Token   string
}

// CreateAnonymousSession issues a session with a generated display name.
func (s *Service) CreateAnonymousSession(ctx context.Context) (*SessionResult, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &domainSession.Session{
		SessionID:   uuid.New(),
		TokenHash:   hashToken(token),
		DisplayName: generateDisplayName(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.sessionTTL),
		LastSeenAt:  &now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info().Str("session_id", sess.SessionID.String()).Msg("anonymous session created")
	return &SessionResult{Session: sess, Token: token}, nil
}

// Authenticate validates a session token and returns the session.
func (s *Service) Authenticate(ctx context.Context, token string) (*domainSession.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("missing token")
	}
	sess, err := s.sessionRepo.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found")
	}
	if sess.IsExpired(time.Now().UTC()) {
		_ = s.sessionRepo.DeleteByID(ctx, sess.SessionID)
		return nil, fmt.Errorf("session expired")
	}
	_ = s.sessionRepo.UpdateLastSeen(ctx, sess.SessionID)
	return sess, nil
}

// RegisterInput creates a user account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a user and links it to the calling session.
func (s *Service) Register(ctx context.Context, sessionID uuid.UUID, in RegisterInput) (*domainUser.User, error) {
	username := domainUser.NormalizeUsername(in.Username)
	if err := domainUser.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domainUser.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := domainUser.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("username already taken")
	}

	hash, err := domainUser.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domainUser.User{
		UserID:       uuid.New(),
		Username:     username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	if sessionID != uuid.Nil {
		_ = s.sessionRepo.LinkUser(ctx, sessionID, u.UserID)
	}

	s.logger.Info().Str("user_id", u.UserID.String()).Msg("user registered")
	return u, nil
}

// Login verifies credentials and issues a fresh session linked to the user.
func (s *Service) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !domainUser.VerifyPassword(u.PasswordHash, password) {
		return nil, fmt.Errorf("invalid email or password")
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domainSession.Session{
		SessionID:   uuid.New(),
		TokenHash:   hashToken(token),
		DisplayName: u.Username,
		UserID:      &u.UserID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.sessionTTL),
		LastSeenAt:  &now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", u.UserID.String()).Msg("user login")
	return &SessionResult{Session: sess, Token: token}, nil
}

// PurgeExpiredSessions removes expired sessions; run periodically.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int, error) {
	return s.sessionRepo.DeleteExpired(ctx)
}

func generateDisplayName() string {
	return "Anonymous " + adjectives[randIndex(len(adjectives))] + nouns[randIndex(len(nouns))]
}

func randIndex(n int) int {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return int(binary.BigEndian.Uint64(b[:]) % uint64(n))
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
