package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/internal/session"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
	"evoting-portal/pkg/redis"
)

// Wizard stages. The flow only ever moves one stage at a time and Cast is the
// single transition into StageConfirmed.
const (
	StageSelectElection = "select_election"
	StageReviewBallot   = "review_ballot"
	StageConfirmVote    = "confirm_vote"
	StageConfirmed      = "confirmed"
)

// User-facing voting messages
const (
	MsgAlreadyVoted     = "You have already voted in this election. Each voter can only vote once per election."
	MsgNotEligible      = "You are not eligible to vote in this election."
	MsgElectionInactive = "This election is not currently active."
	MsgInvalidCandidate = "One of your selected candidates is not valid for this election. Please review your ballot and try again."
	MsgElectionNotFound = "This election is no longer available. Please start over and choose another election."
	MsgCastInProgress   = "Your vote is already being processed. Please wait."
)

// WizardState is a voter's progress through the voting flow, persisted in
// Redis per session so a page reload lands back on the same stage.
type WizardState struct {
	Stage      string                      `json:"stage"`
	Election   *domain.Election            `json:"election,omitempty"`
	Ballot     *domain.Ballot              `json:"ballot,omitempty"`
	Preview    *domain.Candidate           `json:"preview,omitempty"`
	Selections map[string]domain.Candidate `json:"selections"`
	CastVotes  []domain.Vote               `json:"cast_votes,omitempty"`
}

func newWizardState() *WizardState {
	return &WizardState{
		Stage:      StageSelectElection,
		Selections: map[string]domain.Candidate{},
	}
}

// VotingService drives the voting wizard
type VotingService struct {
	backend *backend.Client
	redis   *redis.Client
	log     *logger.Logger
}

// NewVotingService creates a voting service
func NewVotingService(backendClient *backend.Client, redisClient *redis.Client, log *logger.Logger) *VotingService {
	return &VotingService{
		backend: backendClient,
		redis:   redisClient,
		log:     log,
	}
}

// State loads the wizard state for a session, defaulting to the election
// selection stage.
func (s *VotingService) State(ctx context.Context, sessionID string) (*WizardState, error) {
	key := s.redis.KeyBuilder.KeyWizard(sessionID)
	data, err := s.redis.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return newWizardState(), nil
		}
		return nil, apperrors.NewInternalError("Failed to load voting state", err)
	}

	var state WizardState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		s.log.WithError(err).Warn("Corrupt wizard state, resetting")
		return newWizardState(), nil
	}
	if state.Selections == nil {
		state.Selections = map[string]domain.Candidate{}
	}
	return &state, nil
}

func (s *VotingService) saveState(ctx context.Context, sessionID string, state *WizardState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return apperrors.NewInternalError("Failed to save voting state", err)
	}
	key := s.redis.KeyBuilder.KeyWizard(sessionID)
	if err := s.redis.Set(ctx, key, string(data), redis.TTLWizard); err != nil {
		return apperrors.NewInternalError("Failed to save voting state", err)
	}
	return nil
}

// Reset clears the wizard back to election selection. Leaving the confirmed
// stage also re-fetches the voter's history so the dashboard shows the new
// votes without waiting for the cache to expire.
func (s *VotingService) Reset(ctx context.Context, sessionID string) (*WizardState, error) {
	prior, err := s.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if prior.Stage == StageConfirmed {
		if sess := session.FromContext(ctx); sess != nil {
			if _, err := s.refreshVotingHistory(ctx, sess); err != nil {
				s.log.WithError(err).Warn("Voting history refresh failed on reset")
			}
		}
	}

	state := newWizardState()
	if err := s.saveState(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ActiveElections lists elections currently open for voting, served from a
// short-lived Redis cache.
func (s *VotingService) ActiveElections(ctx context.Context) ([]domain.Election, error) {
	key := s.redis.KeyBuilder.KeyActiveElections()
	if data, err := s.redis.Get(ctx, key); err == nil {
		var elections []domain.Election
		if json.Unmarshal([]byte(data), &elections) == nil {
			return elections, nil
		}
	}

	list, err := s.backend.ListActiveElections(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(list.Data); err == nil {
		if err := s.redis.Set(ctx, key, string(data), redis.TTLActiveElections); err != nil {
			s.log.WithError(err).Debug("Failed to cache active elections")
		}
	}
	return list.Data, nil
}

// SelectElection validates the voter's eligibility for the chosen election
// and, when eligible, loads its ballot and advances to the review stage.
func (s *VotingService) SelectElection(ctx context.Context, sess *session.Session, electionID string) (*WizardState, error) {
	election, err := s.backend.GetElection(ctx, electionID)
	if err != nil {
		return nil, err
	}

	history, err := s.VotingHistory(ctx, sess)
	if err != nil {
		return nil, err
	}
	for _, v := range history {
		if v.ElectionID == electionID {
			return nil, apperrors.NewConflictError(MsgAlreadyVoted, nil)
		}
	}

	if sess.Profile == nil || !sess.Profile.RegistrationVerified || !sess.Profile.CanVote {
		return nil, apperrors.NewAuthorizationError(MsgNotEligible, nil)
	}

	if election.Status != domain.StatusOngoing || !election.WindowContains(time.Now()) {
		return nil, apperrors.NewValidationError(MsgElectionInactive, nil)
	}

	ballot, err := s.backend.GetBallot(ctx, electionID)
	if err != nil {
		return nil, err
	}
	for i := range ballot.Candidates {
		c := &ballot.Candidates[i].Candidate
		c.Photo = s.backend.MediaURL(c.Photo)
	}

	state := newWizardState()
	state.Stage = StageReviewBallot
	state.Election = election
	state.Ballot = ballot
	if err := s.saveState(ctx, sess.ID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// PreviewCandidate marks a ballot candidate as the pending choice for their
// position without committing it.
func (s *VotingService) PreviewCandidate(ctx context.Context, sessionID string, candidateID string) (*WizardState, error) {
	state, err := s.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Stage != StageReviewBallot || state.Ballot == nil {
		return nil, apperrors.NewValidationError("No ballot is open for review", nil)
	}

	candidate := findBallotCandidate(state.Ballot, candidateID)
	if candidate == nil {
		return nil, apperrors.NewNotFoundError("Candidate is not on this ballot")
	}

	state.Preview = candidate
	if err := s.saveState(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ConfirmCandidate commits the previewed candidate as the selection for
// their position, replacing any earlier choice for that position.
func (s *VotingService) ConfirmCandidate(ctx context.Context, sessionID string) (*WizardState, error) {
	state, err := s.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Stage != StageReviewBallot || state.Preview == nil {
		return nil, apperrors.NewValidationError("No candidate is selected", nil)
	}

	state.Selections[state.Preview.Position] = *state.Preview
	state.Preview = nil
	if err := s.saveState(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ClearCandidate removes the confirmed choice for the given candidate's
// position, restoring that ballot slot.
func (s *VotingService) ClearCandidate(ctx context.Context, sessionID string, candidateID string) (*WizardState, error) {
	state, err := s.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Stage != StageReviewBallot || state.Ballot == nil {
		return nil, apperrors.NewValidationError("No ballot is open for review", nil)
	}

	candidate := findBallotCandidate(state.Ballot, candidateID)
	if candidate == nil {
		return nil, apperrors.NewNotFoundError("Candidate is not on this ballot")
	}
	delete(state.Selections, candidate.Position)
	if state.Preview != nil && state.Preview.CandidateID == candidateID {
		state.Preview = nil
	}
	if err := s.saveState(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Proceed moves from ballot review to the confirmation summary. At least one
// position must have a confirmed candidate.
func (s *VotingService) Proceed(ctx context.Context, sessionID string) (*WizardState, error) {
	state, err := s.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Stage != StageReviewBallot {
		return nil, apperrors.NewValidationError("No ballot is open for review", nil)
	}
	if len(state.Selections) == 0 {
		return nil, apperrors.NewValidationError("Please select at least one candidate before proceeding", nil)
	}

	state.Stage = StageConfirmVote
	state.Preview = nil
	if err := s.saveState(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Back steps the wizard one stage backward, keeping confirmed selections
func (s *VotingService) Back(ctx context.Context, sessionID string) (*WizardState, error) {
	state, err := s.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch state.Stage {
	case StageConfirmVote:
		state.Stage = StageReviewBallot
	case StageReviewBallot:
		return s.Reset(ctx, sessionID)
	default:
		return state, nil
	}

	if err := s.saveState(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Cast submits one vote per selected position, all concurrently and
// fail-fast. Any failure leaves the wizard on the confirmation stage with
// the mapped backend message; only full success advances to confirmed.
func (s *VotingService) Cast(ctx context.Context, sess *session.Session) (*WizardState, error) {
	state, err := s.State(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if state.Stage != StageConfirmVote || state.Election == nil {
		return nil, apperrors.NewValidationError("There is no vote awaiting confirmation", nil)
	}
	if len(state.Selections) == 0 {
		return nil, apperrors.NewValidationError("Please select at least one candidate before proceeding", nil)
	}

	lockKey := s.redis.KeyBuilder.KeyCastLock(sess.ID, state.Election.ElectionID)
	acquired, err := s.redis.SetNX(ctx, lockKey, "1", redis.TTLCastLock)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to acquire voting lock", err)
	}
	if !acquired {
		return nil, apperrors.NewConflictError(MsgCastInProgress, nil)
	}
	defer func() {
		if err := s.redis.Delete(context.WithoutCancel(ctx), lockKey); err != nil {
			s.log.WithError(err).Debug("Failed to release voting lock")
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, candidate := range state.Selections {
		req := domain.CastVoteRequest{
			ElectionID:  state.Election.ElectionID,
			CandidateID: candidate.CandidateID,
		}
		g.Go(func() error {
			_, err := s.backend.CastVote(gctx, req)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, mapCastError(err)
	}

	s.log.WithFields(map[string]interface{}{
		"user_id":     sess.User.UserID,
		"election_id": state.Election.ElectionID,
		"positions":   len(state.Selections),
	}).Info("Votes cast")

	history, err := s.refreshVotingHistory(ctx, sess)
	if err != nil {
		s.log.WithError(err).Warn("Failed to refresh voting history after cast")
		history = nil
	}

	state.Stage = StageConfirmed
	state.Preview = nil
	state.CastVotes = votesForElection(history, state.Election.ElectionID)
	if err := s.saveState(ctx, sess.ID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// VotingHistory returns the voter's past votes, cached per user
func (s *VotingService) VotingHistory(ctx context.Context, sess *session.Session) ([]domain.Vote, error) {
	key := s.redis.KeyBuilder.KeyVotingHistory(sess.User.UserID)
	if data, err := s.redis.Get(ctx, key); err == nil {
		var votes []domain.Vote
		if json.Unmarshal([]byte(data), &votes) == nil {
			return votes, nil
		}
	}
	return s.refreshVotingHistory(ctx, sess)
}

// VerifyVote checks a vote receipt against the backend record
func (s *VotingService) VerifyVote(ctx context.Context, voteID string) (*domain.Vote, error) {
	return s.backend.VerifyVote(ctx, voteID)
}

// VotingStats proxies aggregate turnout figures
func (s *VotingService) VotingStats(ctx context.Context) (*domain.VotingStats, error) {
	return s.backend.GetVotingStats(ctx)
}

func (s *VotingService) refreshVotingHistory(ctx context.Context, sess *session.Session) ([]domain.Vote, error) {
	votes, err := s.backend.GetVotingHistory(ctx)
	if err != nil {
		return nil, err
	}

	key := s.redis.KeyBuilder.KeyVotingHistory(sess.User.UserID)
	if data, err := json.Marshal(votes); err == nil {
		if err := s.redis.Set(ctx, key, string(data), redis.TTLVotingHistory); err != nil {
			s.log.WithError(err).Debug("Failed to cache voting history")
		}
	}
	return votes, nil
}

func findBallotCandidate(ballot *domain.Ballot, candidateID string) *domain.Candidate {
	for i := range ballot.Candidates {
		if ballot.Candidates[i].Candidate.CandidateID == candidateID {
			return &ballot.Candidates[i].Candidate
		}
	}
	return nil
}

func votesForElection(history []domain.Vote, electionID string) []domain.Vote {
	var out []domain.Vote
	for _, v := range history {
		if v.ElectionID == electionID {
			out = append(out, v)
		}
	}
	return out
}

// mapCastError turns backend cast failures into the messages voters see
func mapCastError(err error) error {
	apiErr, ok := backend.AsAPIError(err)
	if !ok {
		return apperrors.NewUpstreamError("Failed to cast vote. Please try again.", err)
	}

	msg := strings.ToLower(apiErr.Message())
	switch {
	case strings.Contains(msg, "already voted"):
		return apperrors.NewConflictError(MsgAlreadyVoted, nil)
	case strings.Contains(msg, "not eligible"):
		return apperrors.NewAuthorizationError(MsgNotEligible, nil)
	case strings.Contains(msg, "not accepting votes"), strings.Contains(msg, "not currently active"), strings.Contains(msg, "not active"):
		return apperrors.NewValidationError(MsgElectionInactive, nil)
	case strings.Contains(msg, "invalid candidate"):
		return apperrors.NewValidationError(MsgInvalidCandidate, nil)
	case strings.Contains(msg, "not found"):
		return apperrors.NewNotFoundError(MsgElectionNotFound)
	default:
		return apperrors.NewUpstreamError(fmt.Sprintf("Failed to cast vote. %s", apiErr.Message()), err)
	}
}
