package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"evoting-portal/internal/domain"
	"evoting-portal/pkg/logger"
)

func newTestLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func staticToken(token string) TokenProvider {
	return func(ctx context.Context) string { return token }
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(server.URL+"/api", "", staticToken("tok-123"), newTestLogger())
	_, err := client.ListElections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_AnonymousRequestHasNoAuthHeader(t *testing.T) {
	var hadAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(server.URL+"/api", "", staticToken(""), newTestLogger())
	_, err := client.ListElections(context.Background())
	require.NoError(t, err)
	assert.False(t, hadAuth)
}

func TestClient_UnauthorizedMapsToSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Invalid token."}`))
	}))
	defer server.Close()

	client := New(server.URL+"/api", "", staticToken("expired"), newTestLogger())
	_, err := client.GetProfile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_CreateCandidateWithoutPhotoSendsJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/elections/candidates/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"candidate_id": "c1", "name": "Ada"}`))
	}))
	defer server.Close()

	client := New(server.URL+"/api", "", staticToken("tok"), newTestLogger())
	candidate, err := client.CreateCandidate(context.Background(), domain.CandidateRequest{
		Name: "Ada", Party: "PP", Position: "President", Election: "e1",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "c1", candidate.CandidateID)
}

func TestClient_CreateCandidateWithPhotoSendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		assert.Equal(t, "Ada", r.FormValue("name"))
		assert.Equal(t, "e1", r.FormValue("election"))

		file, header, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "ada.png", header.Filename)

		_, _ = w.Write([]byte(`{"candidate_id": "c1"}`))
	}))
	defer server.Close()

	client := New(server.URL+"/api", "", staticToken("tok"), newTestLogger())
	_, err := client.CreateCandidate(context.Background(), domain.CandidateRequest{
		Name: "Ada", Party: "PP", Position: "President", Election: "e1",
	}, &Upload{Filename: "ada.png", Content: strings.NewReader("png-bytes")})
	require.NoError(t, err)
}

func TestClient_CreateIncidentWithEvidenceSendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "ballot_stuffing", r.FormValue("incident_type"))
		files := r.MultipartForm.File["evidence_files"]
		assert.Len(t, files, 2)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"report_id": "r1"}`))
	}))
	defer server.Close()

	client := New(server.URL+"/api", "", staticToken("tok"), newTestLogger())
	report, err := client.CreateIncident(context.Background(), domain.IncidentRequest{
		IncidentType: "ballot_stuffing",
		Description:  "Observed at polling unit 12",
		Location:     "Ward 4",
		Priority:     "high",
	}, []Upload{
		{Filename: "a.jpg", Content: strings.NewReader("a")},
		{Filename: "b.jpg", Content: strings.NewReader("b")},
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", report.ReportID)
}

func TestClient_ListVotersQueryEncoding(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"count": 0, "next": null, "previous": null, "results": []}`))
	}))
	defer server.Close()

	verified := true
	client := New(server.URL+"/api", "", staticToken("tok"), newTestLogger())
	list, err := client.ListVoters(context.Background(), VoterQuery{
		Search:   "ada",
		Verified: &verified,
		Page:     2,
		PageSize: 20,
	})
	require.NoError(t, err)
	require.NotNil(t, list.Meta)

	assert.Contains(t, gotQuery, "search=ada")
	assert.Contains(t, gotQuery, "registration_verified=true")
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "page_size=20")
}

func TestClient_MediaURL(t *testing.T) {
	client := New("http://backend/api", "", staticToken(""), newTestLogger())

	assert.Equal(t, "http://backend/media/p.png", client.MediaURL("/media/p.png"))
	assert.Equal(t, "http://backend/media/p.png", client.MediaURL("media/p.png"))
	assert.Equal(t, "https://cdn/x.png", client.MediaURL("https://cdn/x.png"))
	assert.Equal(t, "", client.MediaURL(""))

	custom := New("http://backend/api", "http://media.backend/", staticToken(""), newTestLogger())
	assert.Equal(t, "http://media.backend/media/p.png", custom.MediaURL("/media/p.png"))
}
