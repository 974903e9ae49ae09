package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/internal/session"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
)

func newVoterFixture(t *testing.T, handler http.Handler) *VoterService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := &logger.Logger{Logger: zap.NewNop()}
	return NewVoterService(backend.New(server.URL+"/api", "", session.TokenFromContext, log), log)
}

func rollOfTwo() []domain.Voter {
	return []domain.Voter{
		{
			VoterProfile: domain.VoterProfile{VoterID: "VOTER00001", RegistrationVerified: true, CanVote: true},
			User:         &domain.User{UserID: "u1", Name: "Ada Obi"},
		},
		{
			VoterProfile: domain.VoterProfile{VoterID: "VOTER00002"},
			User:         &domain.User{UserID: "u2", Name: "Bola Eze"},
		},
	}
}

func TestVoterList_ClampsPaging(t *testing.T) {
	var gotQuery map[string]string
	svc := newVoterFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"page":      r.URL.Query().Get("page"),
			"page_size": r.URL.Query().Get("page_size"),
		}
		_ = json.NewEncoder(w).Encode(rollOfTwo())
	}))

	page, err := svc.List(context.Background(), "  ada ", nil, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, "1", gotQuery["page"])
	assert.Equal(t, "20", gotQuery["page_size"])
	assert.Equal(t, 2, page.Count)
	assert.False(t, page.HasNext)
}

func TestVoterList_PaginatedEnvelope(t *testing.T) {
	svc := newVoterFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"count":    41,
			"next":     "http://backend/api/auth/voters/?page=3",
			"previous": "http://backend/api/auth/voters/?page=1",
			"results":  rollOfTwo(),
		})
	}))

	page, err := svc.List(context.Background(), "", nil, 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 41, page.Count)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
	assert.Len(t, page.Voters, 2)
}

func TestVoterDetail_IncludesHistory(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/auth/voters/", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "VOTER00001", req.URL.Query().Get("search"))
		_ = json.NewEncoder(w).Encode(rollOfTwo())
	})
	r.Get("/api/voting/voters/{voterID}/history/", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "VOTER00001", chi.URLParam(req, "voterID"))
		_ = json.NewEncoder(w).Encode([]domain.Vote{{VoteID: "v1", ElectionID: "e1"}})
	})
	svc := newVoterFixture(t, r)

	detail, err := svc.Detail(context.Background(), "VOTER00001")
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", detail.Voter.User.Name)
	require.Len(t, detail.History, 1)
	assert.Equal(t, "v1", detail.History[0].VoteID)
}

func TestVoterDetail_HistoryUnavailable(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/auth/voters/", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(rollOfTwo())
	})
	r.Get("/api/voting/voters/{voterID}/history/", func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"error": "Not found"}`, http.StatusNotFound)
	})
	svc := newVoterFixture(t, r)

	detail, err := svc.Detail(context.Background(), "VOTER00002")
	require.NoError(t, err, "a missing history endpoint must not hide the voter record")
	assert.Equal(t, "Bola Eze", detail.Voter.User.Name)
	assert.Empty(t, detail.History)
}

func TestVoterDetail_UnknownVoter(t *testing.T) {
	svc := newVoterFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := svc.Detail(context.Background(), "VOTER99999")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}

func TestVoterVerify_RequiresID(t *testing.T) {
	svc := newVoterFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("blank voter IDs must not reach the backend")
	}))

	require.Error(t, svc.Verify(context.Background(), ""))
	require.Error(t, svc.Cancel(context.Background(), ""))
}
