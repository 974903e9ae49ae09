package service

import (
	"context"
	"time"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
	"evoting-portal/pkg/redis"
)

// AdminService covers election and candidate management plus official
// account creation.
type AdminService struct {
	backend *backend.Client
	redis   *redis.Client
	log     *logger.Logger
}

// NewAdminService creates an admin service
func NewAdminService(backendClient *backend.Client, redisClient *redis.Client, log *logger.Logger) *AdminService {
	return &AdminService{backend: backendClient, redis: redisClient, log: log}
}

// Elections lists every election for the management screen
func (s *AdminService) Elections(ctx context.Context) ([]domain.Election, error) {
	list, err := s.backend.ListElections(ctx)
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}

// CreateElection validates and creates an election
func (s *AdminService) CreateElection(ctx context.Context, req domain.ElectionRequest) (*domain.Election, error) {
	if err := validateElectionRequest(req); err != nil {
		return nil, err
	}
	election, err := s.backend.CreateElection(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidateElectionCaches(ctx, election.ElectionID)
	s.log.WithFields(map[string]interface{}{
		"election_id": election.ElectionID,
		"type":        election.Type,
	}).Info("Election created")
	return election, nil
}

// UpdateElection validates and updates an election
func (s *AdminService) UpdateElection(ctx context.Context, electionID string, req domain.ElectionRequest) (*domain.Election, error) {
	if err := validateElectionRequest(req); err != nil {
		return nil, err
	}
	election, err := s.backend.UpdateElection(ctx, electionID, req)
	if err != nil {
		return nil, err
	}
	s.invalidateElectionCaches(ctx, electionID)
	return election, nil
}

// DeleteElection removes an election
func (s *AdminService) DeleteElection(ctx context.Context, electionID string) error {
	if err := s.backend.DeleteElection(ctx, electionID); err != nil {
		return err
	}
	s.invalidateElectionCaches(ctx, electionID)
	return nil
}

// StartElection opens an election for voting
func (s *AdminService) StartElection(ctx context.Context, electionID string) error {
	if err := s.backend.StartElection(ctx, electionID); err != nil {
		return err
	}
	s.invalidateElectionCaches(ctx, electionID)
	s.log.WithField("election_id", electionID).Info("Election started")
	return nil
}

// EndElection closes an election
func (s *AdminService) EndElection(ctx context.Context, electionID string) error {
	if err := s.backend.EndElection(ctx, electionID); err != nil {
		return err
	}
	s.invalidateElectionCaches(ctx, electionID)
	s.log.WithField("election_id", electionID).Info("Election ended")
	return nil
}

// CheckStatus asks the backend to re-evaluate every election window, then
// drops the active-elections cache so the next read sees the outcome
func (s *AdminService) CheckStatus(ctx context.Context) error {
	if err := s.backend.CheckElectionStatus(ctx); err != nil {
		return err
	}
	s.invalidateElectionCaches(ctx, "")
	return nil
}

// Candidates lists an election's candidates
func (s *AdminService) Candidates(ctx context.Context, electionID string) ([]domain.Candidate, error) {
	list, err := s.backend.ListCandidates(ctx, electionID)
	if err != nil {
		return nil, err
	}
	for i := range list.Data {
		list.Data[i].Photo = s.backend.MediaURL(list.Data[i].Photo)
	}
	return list.Data, nil
}

// CreateCandidate registers a candidate, with an optional photo upload
func (s *AdminService) CreateCandidate(ctx context.Context, req domain.CandidateRequest, photo *backend.Upload) (*domain.Candidate, error) {
	details := map[string]interface{}{}
	if req.Name == "" {
		details["name"] = "Candidate name is required"
	}
	if req.Party == "" {
		details["party"] = "Party is required"
	}
	if req.Position == "" {
		details["position"] = "Position is required"
	}
	if req.Election == "" {
		details["election"] = "Election is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("Please correct the highlighted fields", details)
	}
	return s.backend.CreateCandidate(ctx, req, photo)
}

// UpdateCandidate updates a candidate's details
func (s *AdminService) UpdateCandidate(ctx context.Context, candidateID string, req domain.CandidateRequest) (*domain.Candidate, error) {
	return s.backend.UpdateCandidate(ctx, candidateID, req)
}

// DeleteCandidate removes a candidate
func (s *AdminService) DeleteCandidate(ctx context.Context, candidateID string) error {
	return s.backend.DeleteCandidate(ctx, candidateID)
}

// CreateAdmin provisions an admin account, superuser only
func (s *AdminService) CreateAdmin(ctx context.Context, req domain.CreateOfficialRequest) (string, error) {
	return s.backend.CreateAdmin(ctx, req)
}

// CreateInecOfficial provisions an INEC official account
func (s *AdminService) CreateInecOfficial(ctx context.Context, req domain.CreateOfficialRequest) (string, error) {
	return s.backend.CreateInecOfficial(ctx, req)
}

// invalidateElectionCaches drops cached listings and tallies so management
// changes show up without waiting for TTL expiry.
func (s *AdminService) invalidateElectionCaches(ctx context.Context, electionID string) {
	keys := []string{s.redis.KeyBuilder.KeyActiveElections()}
	if electionID != "" {
		keys = append(keys, s.redis.KeyBuilder.KeyLiveResults(electionID))
	}
	if err := s.redis.Delete(ctx, keys...); err != nil {
		s.log.WithError(err).Debug("Failed to invalidate election caches")
	}
}

func validateElectionRequest(req domain.ElectionRequest) error {
	details := map[string]interface{}{}
	if req.Title == "" {
		details["title"] = "Title is required"
	}
	switch req.Type {
	case domain.ElectionPresidential, domain.ElectionGubernatorial, domain.ElectionSenatorial,
		domain.ElectionHouseOfReps, domain.ElectionHouseOfAssembly, domain.ElectionLocalGovernment:
	default:
		details["type"] = "Select a valid election type"
	}

	start, startErr := time.Parse(time.RFC3339, req.StartDate)
	if startErr != nil {
		details["start_date"] = "Start date must be a valid date"
	}
	end, endErr := time.Parse(time.RFC3339, req.EndDate)
	if endErr != nil {
		details["end_date"] = "End date must be a valid date"
	}
	if startErr == nil && endErr == nil && !end.After(start) {
		details["end_date"] = "End date must be after the start date"
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("Please correct the highlighted fields", details)
	}
	return nil
}
