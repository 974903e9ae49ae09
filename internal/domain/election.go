package domain

import "time"

// Election types recognized by the backend
const (
	ElectionPresidential    = "presidential"
	ElectionGubernatorial   = "gubernatorial"
	ElectionSenatorial      = "senatorial"
	ElectionHouseOfReps     = "house_of_reps"
	ElectionHouseOfAssembly = "house_of_assembly"
	ElectionLocalGovernment = "local_government"
)

// Election statuses. Transitions are backend-owned; the portal only displays
// them and may request a re-check.
const (
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Election is an election record owned by the backend
type Election struct {
	ElectionID  string      `json:"election_id"`
	Title       string      `json:"title"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Status      string      `json:"status"`
	CreatedBy   string      `json:"created_by,omitempty"`
	Candidates  []Candidate `json:"candidates,omitempty"`
	TotalVotes  int         `json:"total_votes"`
}

// WindowContains reports whether the election's start/end bracket t. Used to
// defend against stale "active" listings.
func (e *Election) WindowContains(t time.Time) bool {
	return !e.StartDate.After(t) && !e.EndDate.Before(t)
}

// Candidate is a candidate standing in an election
type Candidate struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	Position    string `json:"position"`
	Biography   string `json:"biography,omitempty"`
	Photo       string `json:"photo,omitempty"`
	VoteCount   int    `json:"vote_count"`
	Election    string `json:"election,omitempty"`
}

// ElectionRequest creates or updates an election
type ElectionRequest struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// CandidateRequest creates or updates a candidate. Photo travels separately
// as a multipart file when present.
type CandidateRequest struct {
	Name      string `json:"name"`
	Party     string `json:"party"`
	Position  string `json:"position"`
	Biography string `json:"biography"`
	Election  string `json:"election"`
}

// CandidateResult is one row of a live or final result set
type CandidateResult struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	Position    string `json:"position"`
	VoteCount   int    `json:"vote_count"`
}

// LiveResults is the backend's live tally for one election
type LiveResults struct {
	ElectionID    string            `json:"election_id"`
	ElectionTitle string            `json:"election_title"`
	ElectionType  string            `json:"election_type"`
	Status        string            `json:"status"`
	TotalVotes    int               `json:"total_votes"`
	LastUpdated   time.Time         `json:"last_updated"`
	LiveResults   []CandidateResult `json:"live_results"`
}
