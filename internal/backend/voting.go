package backend

import (
	"context"
	"net/http"

	"evoting-portal/internal/domain"
)

// GetBallot fetches the caller's ballot for one election. Ballots are
// ephemeral; they are fetched fresh on every entry into the wizard.
func (c *Client) GetBallot(ctx context.Context, electionID string) (*domain.Ballot, error) {
	var ballot domain.Ballot
	if err := c.do(ctx, http.MethodGet, "/voting/ballot/"+electionID+"/", nil, &ballot); err != nil {
		return nil, err
	}
	return &ballot, nil
}

// CastVote submits one vote. Write-once per (voter, election) is enforced by
// the backend; a rejection here is authoritative.
func (c *Client) CastVote(ctx context.Context, req domain.CastVoteRequest) (*domain.Vote, error) {
	var vote domain.Vote
	if err := c.do(ctx, http.MethodPost, "/voting/cast-vote/", req, &vote); err != nil {
		return nil, err
	}
	return &vote, nil
}

// GetVotingHistory returns the caller's recorded votes
func (c *Client) GetVotingHistory(ctx context.Context) ([]domain.Vote, error) {
	raw, err := c.getRaw(ctx, "/voting/history/", nil)
	if err != nil {
		return nil, err
	}
	list, err := normalizeList[domain.Vote](raw)
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}

// GetVoterVotes returns another voter's recorded votes. Official-only; not
// every backend deployment exposes it, callers should tolerate a not-found.
func (c *Client) GetVoterVotes(ctx context.Context, voterID string) ([]domain.Vote, error) {
	raw, err := c.getRaw(ctx, "/voting/voters/"+voterID+"/history/", nil)
	if err != nil {
		return nil, err
	}
	list, err := normalizeList[domain.Vote](raw)
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}

// VerifyVote confirms a recorded vote by its ID
func (c *Client) VerifyVote(ctx context.Context, voteID string) (*domain.Vote, error) {
	var vote domain.Vote
	body := map[string]string{"vote_id": voteID}
	if err := c.do(ctx, http.MethodPost, "/voting/verify/", body, &vote); err != nil {
		return nil, err
	}
	return &vote, nil
}

// GetVotingStats returns aggregate voting statistics
func (c *Client) GetVotingStats(ctx context.Context) (*domain.VotingStats, error) {
	var stats domain.VotingStats
	if err := c.do(ctx, http.MethodGet, "/voting/stats/", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
