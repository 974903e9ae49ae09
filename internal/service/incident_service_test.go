package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/internal/session"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
)

func newIncidentFixture(t *testing.T, handler http.Handler) *IncidentService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := &logger.Logger{Logger: zap.NewNop()}
	return NewIncidentService(backend.New(server.URL+"/api", "", session.TokenFromContext, log), log)
}

func TestIncidentList_RoleSelectsEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		user     *domain.User
		wantPath string
	}{
		{name: "admin sees all reports", user: &domain.User{Role: domain.RoleAdmin}, wantPath: "/api/incidents/reports/"},
		{name: "inec official sees all reports", user: &domain.User{Role: domain.RoleInec}, wantPath: "/api/incidents/reports/"},
		{name: "voter sees own reports", user: &domain.User{Role: domain.RoleVoter}, wantPath: "/api/incidents/my-incidents/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			svc := newIncidentFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				_, _ = w.Write([]byte(`[]`))
			}))

			sess := &session.Session{ID: "s1", Token: "tok", User: tt.user}
			_, err := svc.List(context.Background(), sess)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, gotPath)
		})
	}
}

func TestIncidentReport_Validation(t *testing.T) {
	svc := newIncidentFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid reports must not reach the backend")
	}))

	_, err := svc.Report(context.Background(), domain.IncidentRequest{
		IncidentType: "made_up",
		Description:  "",
		Location:     "",
	}, nil)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Details, "incident_type")
	assert.Contains(t, appErr.Details, "description")
	assert.Contains(t, appErr.Details, "location")
}

func TestIncidentReport_DefaultsPriority(t *testing.T) {
	var gotPriority string
	svc := newIncidentFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.IncidentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotPriority = req.Priority
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"report_id": "r1", "incident_type": "other", "priority": "medium"}`))
	}))

	_, err := svc.Report(context.Background(), domain.IncidentRequest{
		IncidentType: domain.IncidentOther,
		Description:  "Broken card reader",
		Location:     "Ward 4",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, gotPriority)
}

func TestIncidentAssign_ConflictNamesCurrentAssignee(t *testing.T) {
	svc := newIncidentFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "Already assigned", "assigned_to_name": "Officer Bello"}`))
	}))

	err := svc.Assign(context.Background(), domain.IncidentAssignRequest{
		IncidentID: "r1",
		OfficialID: "o2",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "This incident is already assigned to Officer Bello. Only admins can reassign.", appErr.Message)
}

func TestIncidentAssign_ConflictWithoutName(t *testing.T) {
	svc := newIncidentFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "Already assigned"}`))
	}))

	err := svc.Assign(context.Background(), domain.IncidentAssignRequest{IncidentID: "r1", OfficialID: "o2"})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "This incident is already assigned to another official. Only admins can reassign.", appErr.Message)
}

func TestIncidentUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	svc := newIncidentFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid statuses must not reach the backend")
	}))

	err := svc.UpdateStatus(context.Background(), "r1", domain.IncidentStatusRequest{Status: "archived"})
	assert.Error(t, err)
}
