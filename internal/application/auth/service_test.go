package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainSession "github.com/puzzle-hub/puzzle-hub/internal/domain/session"
	domainUser "github.com/puzzle-hub/puzzle-hub/internal/domain/user"
)

type fakeSessionRepo struct {
	byHash map[string]*domainSession.Session
	byID   map[uuid.UUID]*domainSession.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		byHash: make(map[string]*domainSession.Session),
		byID:   make(map[uuid.UUID]*domainSession.Session),
	}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *domainSession.Session) error {
	s.ID = int64(len(r.byID) + 1)
	r.byHash[s.TokenHash] = s
	r.byID[s.SessionID] = s
	return nil
}

func (r *fakeSessionRepo) GetByTokenHash(_ context.Context, hash string) (*domainSession.Session, error) {
	return r.byHash[hash], nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*domainSession.Session, error) {
	return r.byID[id], nil
}

func (r *fakeSessionRepo) LinkUser(_ context.Context, sessionID, userID uuid.UUID) error {
	if s := r.byID[sessionID]; s != nil {
		id := userID
		s.UserID = &id
	}
	return nil
}

func (r *fakeSessionRepo) UpdateLastSeen(context.Context, uuid.UUID) error { return nil }

func (r *fakeSessionRepo) DeleteByID(_ context.Context, sessionID uuid.UUID) error {
	if s := r.byID[sessionID]; s != nil {
		delete(r.byHash, s.TokenHash)
		delete(r.byID, sessionID)
	}
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(context.Context) (int, error) {
	n := 0
	now := time.Now().UTC()
	for id, s := range r.byID {
		if s.IsExpired(now) {
			delete(r.byHash, s.TokenHash)
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	users []*domainUser.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *domainUser.User) error {
	u.ID = int64(len(r.users) + 1)
	r.users = append(r.users, u)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domainUser.User, error) {
	for _, u := range r.users {
		if u.UserID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domainUser.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domainUser.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func newTestService(ttl time.Duration) (*Service, *fakeSessionRepo, *fakeUserRepo) {
	sessions := newFakeSessionRepo()
	users := &fakeUserRepo{}
	return NewService(sessions, users, ttl, zerolog.Nop()), sessions, users
}

func TestAnonymousSessionRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(time.Hour)

	res, err := svc.CreateAnonymousSession(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.True(t, strings.HasPrefix(res.Session.DisplayName, "Anonymous "))
	// The raw token is never stored.
	assert.NotEqual(t, res.Token, res.Session.TokenHash)

	sess, err := svc.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.SessionID, sess.SessionID)

	_, err = svc.Authenticate(context.Background(), "not-a-token")
	assert.Error(t, err)
	_, err = svc.Authenticate(context.Background(), "")
	assert.Error(t, err)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	svc, sessions, _ := newTestService(-time.Minute)

	res, err := svc.CreateAnonymousSession(context.Background())
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), res.Token)
	require.Error(t, err)
	// Expired sessions are removed on sight.
	assert.Empty(t, sessions.byID)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService(time.Hour)

	anon, err := svc.CreateAnonymousSession(context.Background())
	require.NoError(t, err)

	u, err := svc.Register(context.Background(), anon.Session.SessionID, RegisterInput{
		Username: "Alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	// The registering session is now linked to the account.
	sess, err := svc.Authenticate(context.Background(), anon.Token)
	require.NoError(t, err)
	require.NotNil(t, sess.UserID)
	assert.Equal(t, u.UserID, *sess.UserID)

	_, err = svc.Register(context.Background(), uuid.Nil, RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "correct horse",
	})
	assert.Error(t, err, "duplicate username must be rejected")

	login, err := svc.Login(context.Background(), "alice@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", login.Session.DisplayName)
	require.NotNil(t, login.Session.UserID)

	_, err = svc.Login(context.Background(), "alice@example.com", "wrong password")
	assert.Error(t, err)
	_, err = svc.Login(context.Background(), "nobody@example.com", "correct horse")
	assert.Error(t, err)
}

func TestPurgeExpiredSessions(t *testing.T) {
	svc, sessions, _ := newTestService(-time.Minute)
	_, err := svc.CreateAnonymousSession(context.Background())
	require.NoError(t, err)
	_, err = svc.CreateAnonymousSession(context.Background())
	require.NoError(t, err)

	n, err := svc.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, sessions.byID)
}
