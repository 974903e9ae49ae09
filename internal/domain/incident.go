package domain

import "time"

// Incident types
const (
	IncidentVoterIntimidation    = "voter_intimidation"
	IncidentBallotStuffing       = "ballot_stuffing"
	IncidentTechnicalIssue       = "technical_issue"
	IncidentViolence             = "violence"
	IncidentBribery              = "bribery"
	IncidentEquipmentMalfunction = "equipment_malfunction"
	IncidentUnauthorizedAccess   = "unauthorized_access"
	IncidentOther                = "other"
)

// Incident priorities
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Incident statuses
const (
	IncidentPending       = "pending"
	IncidentInvestigating = "investigating"
	IncidentResolved      = "resolved"
	IncidentDismissed     = "dismissed"
)

// ValidIncidentType reports whether t is a recognized incident category
func ValidIncidentType(t string) bool {
	switch t {
	case IncidentVoterIntimidation, IncidentBallotStuffing, IncidentTechnicalIssue,
		IncidentViolence, IncidentBribery, IncidentEquipmentMalfunction,
		IncidentUnauthorizedAccess, IncidentOther:
		return true
	}
	return false
}

// ValidIncidentPriority reports whether p is a recognized priority level
func ValidIncidentPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// IncidentReport is an incident record owned by the backend
type IncidentReport struct {
	ReportID       string    `json:"report_id"`
	IncidentType   string    `json:"incident_type"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	Priority       string    `json:"priority"`
	Status         string    `json:"status"`
	EvidenceFiles  []string  `json:"evidence_files,omitempty"`
	ReportedBy     string    `json:"reported_by,omitempty"`
	AssignedTo     string    `json:"assigned_to,omitempty"`
	AssignedToName string    `json:"assigned_to_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// IncidentRequest creates an incident report. Evidence travels separately as
// multipart files when present.
type IncidentRequest struct {
	IncidentType string `json:"incident_type"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	Priority     string `json:"priority"`
}

// IncidentStatusRequest transitions an incident's status
type IncidentStatusRequest struct {
	Status          string `json:"status"`
	ResolutionNotes string `json:"resolution_notes,omitempty"`
}

// IncidentAssignRequest assigns an incident to an official
type IncidentAssignRequest struct {
	IncidentID string `json:"incident_id"`
	OfficialID string `json:"official_id"`
}

// IncidentStats is the backend's aggregate incident statistics record
type IncidentStats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	Investigating int `json:"investigating"`
	Resolved      int `json:"resolved"`
	Dismissed     int `json:"dismissed"`
}
