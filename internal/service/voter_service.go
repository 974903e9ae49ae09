package service

import (
	"context"
	"strings"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
)

// VoterService backs the voter management screens
type VoterService struct {
	backend *backend.Client
	log     *logger.Logger
}

// NewVoterService creates a voter service
func NewVoterService(backendClient *backend.Client, log *logger.Logger) *VoterService {
	return &VoterService{backend: backendClient, log: log}
}

// VoterPage is one page of the voter roll plus its filter echo
type VoterPage struct {
	Voters   []domain.Voter `json:"voters"`
	Count    int            `json:"count"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasNext  bool           `json:"has_next"`
	HasPrev  bool           `json:"has_prev"`
}

// List returns a filtered, paginated page of the voter roll
func (s *VoterService) List(ctx context.Context, search string, verified *bool, page, pageSize int) (*VoterPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	list, err := s.backend.ListVoters(ctx, backend.VoterQuery{
		Search:   strings.TrimSpace(search),
		Verified: verified,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}

	result := &VoterPage{
		Voters:   list.Data,
		Count:    len(list.Data),
		Page:     page,
		PageSize: pageSize,
	}
	if list.Meta != nil {
		result.Count = list.Meta.Count
		result.HasNext = list.Meta.Next != ""
		result.HasPrev = list.Meta.Previous != ""
	}
	return result, nil
}

// VoterDetail is one voter record with their recorded votes
type VoterDetail struct {
	Voter   domain.Voter  `json:"voter"`
	History []domain.Vote `json:"history"`
}

// Detail returns one voter from the roll together with their voting history.
// History is best effort: when the backend cannot serve it the record is
// still returned with an empty list.
func (s *VoterService) Detail(ctx context.Context, voterID string) (*VoterDetail, error) {
	if voterID == "" {
		return nil, apperrors.NewValidationError("Voter ID is required", nil)
	}

	list, err := s.backend.ListVoters(ctx, backend.VoterQuery{Search: voterID})
	if err != nil {
		return nil, err
	}
	var voter *domain.Voter
	for i := range list.Data {
		if list.Data[i].VoterID == voterID {
			voter = &list.Data[i]
			break
		}
	}
	if voter == nil {
		return nil, apperrors.NewNotFoundError("Voter not found")
	}

	detail := &VoterDetail{Voter: *voter, History: []domain.Vote{}}
	history, err := s.backend.GetVoterVotes(ctx, voterID)
	if err != nil {
		s.log.WithError(err).WithField("voter_id", voterID).Warn("Voter history unavailable")
		return detail, nil
	}
	if history != nil {
		detail.History = history
	}
	return detail, nil
}

// Verify approves a voter's registration
func (s *VoterService) Verify(ctx context.Context, voterID string) error {
	if voterID == "" {
		return apperrors.NewValidationError("Voter ID is required", nil)
	}
	if err := s.backend.VerifyVoter(ctx, voterID); err != nil {
		return err
	}
	s.log.WithField("voter_id", voterID).Info("Voter verified")
	return nil
}

// Cancel revokes a voter's verification
func (s *VoterService) Cancel(ctx context.Context, voterID string) error {
	if voterID == "" {
		return apperrors.NewValidationError("Voter ID is required", nil)
	}
	if err := s.backend.CancelVoter(ctx, voterID); err != nil {
		return err
	}
	s.log.WithField("voter_id", voterID).Info("Voter verification cancelled")
	return nil
}
