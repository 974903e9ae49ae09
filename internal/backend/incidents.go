package backend

import (
	"context"
	"net/http"

	"evoting-portal/internal/domain"
)

// ListIncidents returns all incident reports visible to the caller
func (c *Client) ListIncidents(ctx context.Context) (List[domain.IncidentReport], error) {
	raw, err := c.getRaw(ctx, "/incidents/reports/", nil)
	if err != nil {
		return List[domain.IncidentReport]{}, err
	}
	return normalizeList[domain.IncidentReport](raw)
}

// ListMyIncidents returns the caller's own reports
func (c *Client) ListMyIncidents(ctx context.Context) (List[domain.IncidentReport], error) {
	raw, err := c.getRaw(ctx, "/incidents/my-incidents/", nil)
	if err != nil {
		return List[domain.IncidentReport]{}, err
	}
	return normalizeList[domain.IncidentReport](raw)
}

// GetIncident fetches one incident report
func (c *Client) GetIncident(ctx context.Context, reportID string) (*domain.IncidentReport, error) {
	var report domain.IncidentReport
	if err := c.do(ctx, http.MethodGet, "/incidents/reports/"+reportID+"/", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// CreateIncident files an incident report. Evidence files switch the request
// to multipart/form-data; without them it is plain JSON.
func (c *Client) CreateIncident(ctx context.Context, req domain.IncidentRequest, evidence []Upload) (*domain.IncidentReport, error) {
	var report domain.IncidentReport

	if len(evidence) == 0 {
		if err := c.do(ctx, http.MethodPost, "/incidents/reports/", req, &report); err != nil {
			return nil, err
		}
		return &report, nil
	}

	fields := map[string]string{
		"incident_type": req.IncidentType,
		"description":   req.Description,
		"location":      req.Location,
		"priority":      req.Priority,
	}
	files := make([]Upload, 0, len(evidence))
	for _, file := range evidence {
		if file.Field == "" {
			file.Field = "evidence_files"
		}
		files = append(files, file)
	}
	if err := c.postMultipart(ctx, "/incidents/reports/", fields, files, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// UpdateIncident replaces an incident's editable fields
func (c *Client) UpdateIncident(ctx context.Context, reportID string, req domain.IncidentRequest) (*domain.IncidentReport, error) {
	var report domain.IncidentReport
	if err := c.do(ctx, http.MethodPut, "/incidents/reports/"+reportID+"/", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DeleteIncident removes an incident report
func (c *Client) DeleteIncident(ctx context.Context, reportID string) error {
	return c.do(ctx, http.MethodDelete, "/incidents/reports/"+reportID+"/", nil, nil)
}

// AssignIncident assigns a report to an official. The backend answers 403
// with an assigned_to_name detail when the report is already taken.
func (c *Client) AssignIncident(ctx context.Context, req domain.IncidentAssignRequest) error {
	return c.do(ctx, http.MethodPost, "/incidents/assign/", req, nil)
}

// UpdateIncidentStatus transitions a report's status
func (c *Client) UpdateIncidentStatus(ctx context.Context, reportID string, req domain.IncidentStatusRequest) error {
	return c.do(ctx, http.MethodPost, "/incidents/reports/"+reportID+"/status/", req, nil)
}

// GetIncidentStats returns aggregate incident statistics
func (c *Client) GetIncidentStats(ctx context.Context) (*domain.IncidentStats, error) {
	var stats domain.IncidentStats
	if err := c.do(ctx, http.MethodGet, "/incidents/stats/", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
