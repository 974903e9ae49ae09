package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/internal/middleware"
	"evoting-portal/internal/session"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
	"evoting-portal/pkg/redis"
)

func newTestResponder(t *testing.T) (*Responder, *session.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisClient.Close() })

	backendServer := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(backendServer.Close)

	log := &logger.Logger{Logger: zap.NewNop()}
	store := session.NewStore(redisClient,
		backend.New(backendServer.URL+"/api", "", session.TokenFromContext, log), log)
	guard := middleware.NewGuard(store, "portal_session", false, log)
	return NewResponder(store, guard, log), store
}

func TestResponder_AppErrorEnvelope(t *testing.T) {
	responder, _ := newTestResponder(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/vote/cast", nil)
	responder.Error(rec, req, apperrors.NewConflictError("You have already voted in this election. Each voter can only vote once per election.", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.ErrorTypeConflict, resp.Error.Type)
	assert.Equal(t,
		"You have already voted in this election. Each voter can only vote once per election.",
		resp.Error.Message)
}

func TestResponder_UnauthorizedEndsSession(t *testing.T) {
	responder, store := newTestResponder(t)

	sess := &session.Session{ID: "sess-1", Token: "tok", User: &domain.User{UserID: "u1", Role: domain.RoleVoter}}
	require.NoError(t, store.Save(context.Background(), sess))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req = req.WithContext(session.WithSession(req.Context(), sess))

	responder.Error(rec, req, backend.ErrUnauthorized)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	loaded, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Nil(t, loaded, "session record is destroyed")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestResponder_UnknownErrorIsOpaque(t *testing.T) {
	responder, _ := newTestResponder(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	responder.Error(rec, req, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
