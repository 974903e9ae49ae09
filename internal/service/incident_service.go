package service

import (
	"context"
	"fmt"
	"strings"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/internal/session"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
)

// IncidentService handles incident reporting and triage
type IncidentService struct {
	backend *backend.Client
	log     *logger.Logger
}

// NewIncidentService creates an incident service
func NewIncidentService(backendClient *backend.Client, log *logger.Logger) *IncidentService {
	return &IncidentService{backend: backendClient, log: log}
}

// List returns the incidents visible to the session: officials see all
// reports, voters only their own.
func (s *IncidentService) List(ctx context.Context, sess *session.Session) ([]domain.IncidentReport, error) {
	var (
		list backend.List[domain.IncidentReport]
		err  error
	)
	if sess.IsAdmin() || sess.IsInec() {
		list, err = s.backend.ListIncidents(ctx)
	} else {
		list, err = s.backend.ListMyIncidents(ctx)
	}
	if err != nil {
		return nil, err
	}
	for i := range list.Data {
		s.resolveEvidence(&list.Data[i])
	}
	return list.Data, nil
}

// Get fetches a single incident report
func (s *IncidentService) Get(ctx context.Context, reportID string) (*domain.IncidentReport, error) {
	report, err := s.backend.GetIncident(ctx, reportID)
	if err != nil {
		return nil, err
	}
	s.resolveEvidence(report)
	return report, nil
}

func (s *IncidentService) resolveEvidence(report *domain.IncidentReport) {
	for i, f := range report.EvidenceFiles {
		report.EvidenceFiles[i] = s.backend.MediaURL(f)
	}
}

// Report validates and files a new incident, forwarding any evidence files
func (s *IncidentService) Report(ctx context.Context, req domain.IncidentRequest, evidence []backend.Upload) (*domain.IncidentReport, error) {
	details := map[string]interface{}{}
	if !domain.ValidIncidentType(req.IncidentType) {
		details["incident_type"] = "Select a valid incident type"
	}
	if strings.TrimSpace(req.Description) == "" {
		details["description"] = "Description is required"
	}
	if strings.TrimSpace(req.Location) == "" {
		details["location"] = "Location is required"
	}
	if req.Priority != "" && !domain.ValidIncidentPriority(req.Priority) {
		details["priority"] = "Select a valid priority"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("Please correct the highlighted fields", details)
	}
	if req.Priority == "" {
		req.Priority = domain.PriorityMedium
	}

	report, err := s.backend.CreateIncident(ctx, req, evidence)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{
		"report_id":     report.ReportID,
		"incident_type": report.IncidentType,
		"priority":      report.Priority,
	}).Info("Incident reported")
	return report, nil
}

// Assign gives an incident to an official. Reassigning someone else's
// incident is an admin-only move; the backend refuses it for everyone else
// and the refusal is surfaced with the current assignee's name.
func (s *IncidentService) Assign(ctx context.Context, req domain.IncidentAssignRequest) error {
	err := s.backend.AssignIncident(ctx, req)
	if err == nil {
		return nil
	}
	if apiErr, ok := backend.AsAPIError(err); ok && apiErr.IsConflict() {
		name := apiErr.Detail("assigned_to_name")
		if name == "" {
			name = "another official"
		}
		msg := fmt.Sprintf("This incident is already assigned to %s. Only admins can reassign.", name)
		return apperrors.NewConflictError(msg, nil)
	}
	return err
}

// UpdateStatus transitions an incident's status with optional notes
func (s *IncidentService) UpdateStatus(ctx context.Context, reportID string, req domain.IncidentStatusRequest) error {
	switch req.Status {
	case domain.IncidentPending, domain.IncidentInvestigating, domain.IncidentResolved, domain.IncidentDismissed:
	default:
		return apperrors.NewValidationError("Select a valid incident status", nil)
	}
	return s.backend.UpdateIncidentStatus(ctx, reportID, req)
}

// Delete removes an incident report
func (s *IncidentService) Delete(ctx context.Context, reportID string) error {
	return s.backend.DeleteIncident(ctx, reportID)
}

// Stats proxies aggregate incident counts
func (s *IncidentService) Stats(ctx context.Context) (*domain.IncidentStats, error) {
	return s.backend.GetIncidentStats(ctx)
}
