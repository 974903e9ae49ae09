package backend

import (
	"context"
	"net/http"

	"evoting-portal/internal/domain"
)

// ListElections returns every election visible to the caller
func (c *Client) ListElections(ctx context.Context) (List[domain.Election], error) {
	raw, err := c.getRaw(ctx, "/elections/elections/", nil)
	if err != nil {
		return List[domain.Election]{}, err
	}
	return normalizeList[domain.Election](raw)
}

// ListActiveElections returns elections the backend currently flags active
func (c *Client) ListActiveElections(ctx context.Context) (List[domain.Election], error) {
	raw, err := c.getRaw(ctx, "/elections/active/", nil)
	if err != nil {
		return List[domain.Election]{}, err
	}
	return normalizeList[domain.Election](raw)
}

// GetElection fetches one election
func (c *Client) GetElection(ctx context.Context, electionID string) (*domain.Election, error) {
	var election domain.Election
	if err := c.do(ctx, http.MethodGet, "/elections/elections/"+electionID+"/", nil, &election); err != nil {
		return nil, err
	}
	return &election, nil
}

// CreateElection creates an election (admin role)
func (c *Client) CreateElection(ctx context.Context, req domain.ElectionRequest) (*domain.Election, error) {
	var election domain.Election
	if err := c.do(ctx, http.MethodPost, "/elections/elections/", req, &election); err != nil {
		return nil, err
	}
	return &election, nil
}

// UpdateElection replaces an election's editable fields
func (c *Client) UpdateElection(ctx context.Context, electionID string, req domain.ElectionRequest) (*domain.Election, error) {
	var election domain.Election
	if err := c.do(ctx, http.MethodPut, "/elections/elections/"+electionID+"/", req, &election); err != nil {
		return nil, err
	}
	return &election, nil
}

// DeleteElection removes an election
func (c *Client) DeleteElection(ctx context.Context, electionID string) error {
	return c.do(ctx, http.MethodDelete, "/elections/elections/"+electionID+"/", nil, nil)
}

// ListCandidates returns the candidates standing in one election
func (c *Client) ListCandidates(ctx context.Context, electionID string) (List[domain.Candidate], error) {
	raw, err := c.getRaw(ctx, "/elections/elections/"+electionID+"/candidates/", nil)
	if err != nil {
		return List[domain.Candidate]{}, err
	}
	return normalizeList[domain.Candidate](raw)
}

// CreateCandidate creates a candidate. With a photo the request is dispatched
// as multipart/form-data; without one it is plain JSON. Same operation, same
// endpoint, either shape.
func (c *Client) CreateCandidate(ctx context.Context, req domain.CandidateRequest, photo *Upload) (*domain.Candidate, error) {
	var candidate domain.Candidate

	if photo == nil {
		if err := c.do(ctx, http.MethodPost, "/elections/candidates/", req, &candidate); err != nil {
			return nil, err
		}
		return &candidate, nil
	}

	fields := map[string]string{
		"name":      req.Name,
		"party":     req.Party,
		"position":  req.Position,
		"biography": req.Biography,
		"election":  req.Election,
	}
	if photo.Field == "" {
		photo.Field = "photo"
	}
	if err := c.postMultipart(ctx, "/elections/candidates/", fields, []Upload{*photo}, &candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// UpdateCandidate replaces a candidate's editable fields
func (c *Client) UpdateCandidate(ctx context.Context, candidateID string, req domain.CandidateRequest) (*domain.Candidate, error) {
	var candidate domain.Candidate
	if err := c.do(ctx, http.MethodPut, "/elections/candidates/"+candidateID+"/", req, &candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// DeleteCandidate removes a candidate
func (c *Client) DeleteCandidate(ctx context.Context, candidateID string) error {
	return c.do(ctx, http.MethodDelete, "/elections/candidates/"+candidateID+"/", nil, nil)
}

// GetLiveResults returns the live tally for one election
func (c *Client) GetLiveResults(ctx context.Context, electionID string) (*domain.LiveResults, error) {
	var results domain.LiveResults
	if err := c.do(ctx, http.MethodGet, "/elections/elections/"+electionID+"/live-results/", nil, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// GetResults returns the final result set for one election
func (c *Client) GetResults(ctx context.Context, electionID string) (*domain.LiveResults, error) {
	var results domain.LiveResults
	if err := c.do(ctx, http.MethodGet, "/elections/elections/"+electionID+"/results/", nil, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// StartElection asks the backend to open an election
func (c *Client) StartElection(ctx context.Context, electionID string) error {
	return c.do(ctx, http.MethodPost, "/elections/elections/"+electionID+"/start/", nil, nil)
}

// EndElection asks the backend to close an election
func (c *Client) EndElection(ctx context.Context, electionID string) error {
	return c.do(ctx, http.MethodPost, "/elections/elections/"+electionID+"/end/", nil, nil)
}

// CheckElectionStatus asks the backend to re-evaluate election statuses.
// Status transitions themselves are backend-owned.
func (c *Client) CheckElectionStatus(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/elections/elections/check-status/", nil, nil)
}
