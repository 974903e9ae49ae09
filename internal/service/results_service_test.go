package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/internal/session"
	"evoting-portal/pkg/logger"
	"evoting-portal/pkg/redis"
)

func newResultsFixture(t *testing.T, handler http.Handler) (*ResultsService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisClient.Close() })

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := &logger.Logger{Logger: zap.NewNop()}
	svc := NewResultsService(backend.New(server.URL+"/api", "", session.TokenFromContext, log), redisClient, log)
	t.Cleanup(svc.Stop)
	return svc, mr
}

func liveResultsPayload(total int) domain.LiveResults {
	return domain.LiveResults{
		ElectionID:    "e1",
		ElectionTitle: "Presidential 2027",
		Status:        domain.StatusOngoing,
		TotalVotes:    total,
		LastUpdated:   time.Now().UTC(),
		LiveResults: []domain.CandidateResult{
			{CandidateID: "c1", Name: "Ada Obi", VoteCount: total},
		},
	}
}

func TestLiveResults_CachesBackendResponse(t *testing.T) {
	var calls atomic.Int32
	svc, _ := newResultsFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(liveResultsPayload(10))
	}))

	first, err := svc.LiveResults(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, 10, first.TotalVotes)

	second, err := svc.LiveResults(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, 10, second.TotalVotes)

	assert.Equal(t, int32(1), calls.Load(), "second read is served from cache")
}

func TestLiveResults_CacheExpiryRefetches(t *testing.T) {
	var calls atomic.Int32
	svc, mr := newResultsFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(liveResultsPayload(int(calls.Load()) * 10))
	}))

	_, err := svc.LiveResults(context.Background(), "e1")
	require.NoError(t, err)

	mr.FastForward(redis.TTLLiveResults + time.Second)

	refreshed, err := svc.LiveResults(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, 20, refreshed.TotalVotes)
	assert.Equal(t, int32(2), calls.Load())
}

func resultsReader() *session.Session {
	return &session.Session{
		ID:    "sess-1",
		Token: "tok",
		User:  &domain.User{UserID: "u1", Role: domain.RoleVoter},
	}
}

func TestWatch_IsIdempotentAndStoppable(t *testing.T) {
	svc, _ := newResultsFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(liveResultsPayload(1))
	}))

	svc.Watch(resultsReader(), "e1")
	svc.Watch(resultsReader(), "e1")

	svc.mu.Lock()
	count := len(svc.watchers)
	svc.mu.Unlock()
	assert.Equal(t, 1, count)

	svc.Unwatch("e1")
	svc.Unwatch("e1")

	svc.mu.Lock()
	count = len(svc.watchers)
	svc.mu.Unlock()
	assert.Equal(t, 0, count)
}

func TestWatch_RefreshesWithReaderCredentials(t *testing.T) {
	tokens := make(chan string, 8)
	svc, _ := newResultsFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case tokens <- r.Header.Get("Authorization"):
		default:
		}
		_ = json.NewEncoder(w).Encode(liveResultsPayload(1))
	}))
	svc.liveInterval = 5 * time.Millisecond

	svc.Watch(resultsReader(), "e1")

	select {
	case got := <-tokens:
		assert.Equal(t, "Bearer tok", got)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never refreshed")
	}
}

func TestWatch_StopsAfterIdleReads(t *testing.T) {
	svc, _ := newResultsFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(liveResultsPayload(1))
	}))
	svc.liveInterval = 5 * time.Millisecond
	svc.idleAfter = 20 * time.Millisecond

	svc.Watch(resultsReader(), "e1")

	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.watchers) == 0
	}, 2*time.Second, 5*time.Millisecond, "an unread watcher stops itself")
}

func TestStop_HaltsMonitorAndWatchers(t *testing.T) {
	svc, _ := newResultsFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/elections/active/":
			_, _ = w.Write([]byte(`[]`))
		case "/api/elections/elections/check-status/":
			_, _ = w.Write([]byte(`{}`))
		default:
			_ = json.NewEncoder(w).Encode(liveResultsPayload(1))
		}
	}))

	svc.StartElectionMonitor()
	svc.Watch(resultsReader(), "e1")
	svc.Stop()

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Nil(t, svc.monitor)
	assert.Empty(t, svc.watchers)
}
