package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/pkg/logger"
	"evoting-portal/pkg/redis"
)

func newTestStore(t *testing.T, backendHandler http.Handler) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisClient.Close() })

	server := httptest.NewServer(backendHandler)
	t.Cleanup(server.Close)

	log := &logger.Logger{Logger: zap.NewNop()}
	backendClient := backend.New(server.URL+"/api", "", TokenFromContext, log)
	return NewStore(redisClient, backendClient, log), mr
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestStore_LoginCreatesSession(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"token": "tok-abc",
			"user": {"user_id": "u1", "name": "Ada", "role": "voter"},
			"profile": {"voter_id": "VOTER00001", "registration_verified": true, "can_vote": true},
			"message": "Welcome back"
		}`))
	}))

	result, err := store.Login(context.Background(), domain.LoginRequest{
		PhoneNumber: "08012345678",
		Password:    "secret123",
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.Session)
	assert.Equal(t, "Welcome back", result.Message)

	loaded, err := store.Get(context.Background(), result.Session.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tok-abc", loaded.Token)
	assert.Equal(t, "Ada", loaded.User.Name)
	assert.True(t, loaded.IsVoter())
	assert.False(t, loaded.IsAdmin())
}

func TestStore_LoginFailureSurfacesBackendMessage(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "Invalid phone number or password", "phone_number": "Not registered"}`))
	}))

	result, err := store.Login(context.Background(), domain.LoginRequest{
		PhoneNumber: "08000000000",
		Password:    "wrong",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid phone number or password", result.Error)
	assert.Equal(t, "Not registered", result.Details["phone_number"])
	assert.Nil(t, result.Session)
}

func TestStore_GetUnknownSession(t *testing.T) {
	store, _ := newTestStore(t, http.NotFoundHandler())

	sess, err := store.Get(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestStore_GetDestroysExpiredTokenSession(t *testing.T) {
	store, mr := newTestStore(t, http.NotFoundHandler())

	sess := &Session{
		ID:    "sess-1",
		Token: signedToken(t, time.Now().Add(-time.Hour)),
		User:  &domain.User{UserID: "u1", Role: domain.RoleVoter},
	}
	require.NoError(t, store.Save(context.Background(), sess))

	loaded, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.Empty(t, mr.Keys(), "expired session record is removed")
}

func TestStore_GetKeepsValidJWTSession(t *testing.T) {
	store, _ := newTestStore(t, http.NotFoundHandler())

	sess := &Session{
		ID:    "sess-2",
		Token: signedToken(t, time.Now().Add(time.Hour)),
		User:  &domain.User{UserID: "u1", Role: domain.RoleVoter},
	}
	require.NoError(t, store.Save(context.Background(), sess))

	loaded, err := store.Get(context.Background(), "sess-2")
	require.NoError(t, err)
	require.NotNil(t, loaded)
}

func TestStore_OpaqueTokenNeverExpiresLocally(t *testing.T) {
	assert.False(t, tokenExpired("not-a-jwt", time.Now()))
}

func TestStore_LogoutIsIdempotent(t *testing.T) {
	var logoutCalls int
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/logout/" {
			logoutCalls++
		}
		_, _ = w.Write([]byte(`{}`))
	}))

	sess := &Session{
		ID:    "sess-3",
		Token: "tok",
		User:  &domain.User{UserID: "u1", Role: domain.RoleVoter},
	}
	require.NoError(t, store.Save(context.Background(), sess))

	ctx := WithSession(context.Background(), sess)
	require.NoError(t, store.Logout(ctx, sess))
	require.NoError(t, store.Logout(ctx, sess))
	require.NoError(t, store.Logout(ctx, nil))
	assert.Equal(t, 2, logoutCalls)

	loaded, err := store.Get(context.Background(), "sess-3")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_LogoutSurvivesBackendFailure(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	sess := &Session{ID: "sess-4", Token: "tok", User: &domain.User{UserID: "u1"}}
	require.NoError(t, store.Save(context.Background(), sess))

	require.NoError(t, store.Logout(WithSession(context.Background(), sess), sess))

	loaded, err := store.Get(context.Background(), "sess-4")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSession_RolePredicates(t *testing.T) {
	tests := []struct {
		name      string
		user      *domain.User
		admin     bool
		inec      bool
		voter     bool
		superuser bool
	}{
		{name: "anonymous", user: nil},
		{name: "voter", user: &domain.User{Role: domain.RoleVoter}, voter: true},
		{name: "admin", user: &domain.User{Role: domain.RoleAdmin}, admin: true},
		{name: "inec official", user: &domain.User{Role: domain.RoleInec}, inec: true},
		{
			name:      "superuser counts as admin",
			user:      &domain.User{Role: domain.RoleVoter, IsSuperuser: true},
			admin:     true,
			voter:     true,
			superuser: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{User: tt.user}
			assert.Equal(t, tt.admin, s.IsAdmin())
			assert.Equal(t, tt.inec, s.IsInec())
			assert.Equal(t, tt.voter, s.IsVoter())
			assert.Equal(t, tt.superuser, s.IsSuperuser())
		})
	}
}

func TestStore_SetTheme(t *testing.T) {
	store, _ := newTestStore(t, http.NotFoundHandler())

	sess := &Session{ID: "sess-5", Token: "tok", User: &domain.User{UserID: "u1"}}
	require.NoError(t, store.Save(context.Background(), sess))

	require.NoError(t, store.SetTheme(context.Background(), sess, ThemeDark))
	loaded, err := store.Get(context.Background(), "sess-5")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, loaded.Theme)

	require.NoError(t, store.SetTheme(context.Background(), sess, "neon"))
	loaded, err = store.Get(context.Background(), "sess-5")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, loaded.Theme, "unknown themes fall back to light")
}
