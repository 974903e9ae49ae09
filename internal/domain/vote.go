package domain

import "time"

// Ballot is the per-election, per-voter view model fetched fresh each time a
// voter proceeds to vote. Never persisted beyond the active wizard session.
type Ballot struct {
	ElectionID    string        `json:"election_id"`
	ElectionTitle string        `json:"election_title"`
	Candidates    []BallotEntry `json:"candidates"`
}

// BallotEntry is one selectable entry on a ballot. Entries are rendered in
// backend order, grouped implicitly by position.
type BallotEntry struct {
	Candidate Candidate `json:"candidate"`
}

// CastVoteRequest submits one vote for one candidate
type CastVoteRequest struct {
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
}

// Vote is a recorded vote as reported by the backend's history endpoint
type Vote struct {
	VoteID        string    `json:"vote_id"`
	ElectionID    string    `json:"election_id"`
	ElectionTitle string    `json:"election_title"`
	CandidateID   string    `json:"candidate_id"`
	CandidateName string    `json:"candidate_name"`
	Timestamp     time.Time `json:"timestamp"`
}

// VotingStats is the backend's aggregate voting statistics record
type VotingStats struct {
	TotalVotes     int `json:"total_votes"`
	TotalElections int `json:"total_elections"`
	TotalVoters    int `json:"total_voters"`
}
