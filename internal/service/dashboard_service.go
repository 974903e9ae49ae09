package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/internal/session"
	"evoting-portal/pkg/logger"
)

// DashboardStats is the admin dashboard's headline figures
type DashboardStats struct {
	TotalElections   int `json:"total_elections"`
	ActiveElections  int `json:"active_elections"`
	TotalVoters      int `json:"total_voters"`
	VerifiedVoters   int `json:"verified_voters"`
	PendingVoters    int `json:"pending_voters"`
	TotalIncidents   int `json:"total_incidents"`
	PendingIncidents int `json:"pending_incidents"`
	TotalVotes       int `json:"total_votes"`
}

// VoterOverview is the voter dashboard view model
type VoterOverview struct {
	ActiveElections []domain.Election `json:"active_elections"`
	VotingHistory   []domain.Vote     `json:"voting_history"`
	Verified        bool              `json:"verified"`
	CanVote         bool              `json:"can_vote"`
}

// DashboardService aggregates figures from several backend endpoints
type DashboardService struct {
	backend *backend.Client
	voting  *VotingService
	log     *logger.Logger
}

// NewDashboardService creates a dashboard service
func NewDashboardService(backendClient *backend.Client, voting *VotingService, log *logger.Logger) *DashboardService {
	return &DashboardService{backend: backendClient, voting: voting, log: log}
}

// AdminStats gathers the admin dashboard figures, fanning out to the backend
// concurrently and failing fast on the first error.
func (s *DashboardService) AdminStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.backend.ListElections(gctx)
		if err != nil {
			return err
		}
		stats.TotalElections = len(list.Data)
		for _, e := range list.Data {
			if e.Status == domain.StatusOngoing {
				stats.ActiveElections++
			}
		}
		return nil
	})

	g.Go(func() error {
		verified := true
		total, err := s.countVoters(gctx, nil)
		if err != nil {
			return err
		}
		verifiedCount, err := s.countVoters(gctx, &verified)
		if err != nil {
			return err
		}
		stats.TotalVoters = total
		stats.VerifiedVoters = verifiedCount
		stats.PendingVoters = total - verifiedCount
		return nil
	})

	g.Go(func() error {
		incidents, err := s.backend.GetIncidentStats(gctx)
		if err != nil {
			return err
		}
		stats.TotalIncidents = incidents.Total
		stats.PendingIncidents = incidents.Pending
		return nil
	})

	g.Go(func() error {
		voting, err := s.backend.GetVotingStats(gctx)
		if err != nil {
			return err
		}
		stats.TotalVotes = voting.TotalVotes
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// VoterStats gathers the voter dashboard view: open elections, the voter's
// history and their verification flags.
func (s *DashboardService) VoterStats(ctx context.Context, sess *session.Session) (*VoterOverview, error) {
	overview := &VoterOverview{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		elections, err := s.voting.ActiveElections(gctx)
		if err != nil {
			return err
		}
		overview.ActiveElections = elections
		return nil
	})

	if sess.IsVoter() {
		g.Go(func() error {
			history, err := s.voting.VotingHistory(gctx, sess)
			if err != nil {
				return err
			}
			overview.VotingHistory = history
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if sess.Profile != nil {
		overview.Verified = sess.Profile.RegistrationVerified
		overview.CanVote = sess.Profile.CanVote
	}
	return overview, nil
}

// countVoters asks for a single-row page and reads the envelope count
func (s *DashboardService) countVoters(ctx context.Context, verified *bool) (int, error) {
	list, err := s.backend.ListVoters(ctx, backend.VoterQuery{
		Verified: verified,
		Page:     1,
		PageSize: 1,
	})
	if err != nil {
		return 0, err
	}
	if list.Meta != nil {
		return list.Meta.Count, nil
	}
	return len(list.Data), nil
}
