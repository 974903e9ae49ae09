package handler

import (
	"net/http"

	"evoting-portal/internal/domain"
	"evoting-portal/internal/service"
	"evoting-portal/internal/session"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
)

// VotingHandler serves the voting wizard endpoints
type VotingHandler struct {
	voting    *service.VotingService
	responder *Responder
	log       *logger.Logger
}

// NewVotingHandler creates a voting handler
func NewVotingHandler(voting *service.VotingService, responder *Responder, log *logger.Logger) *VotingHandler {
	return &VotingHandler{voting: voting, responder: responder, log: log}
}

// State returns the wizard state, with the open elections list while the
// voter is still choosing one.
func (h *VotingHandler) State(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	state, err := h.voting.State(r.Context(), sess.ID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	payload := map[string]interface{}{"state": state}
	if state.Stage == service.StageSelectElection {
		elections, err := h.voting.ActiveElections(r.Context())
		if err != nil {
			h.responder.Error(w, r, err)
			return
		}
		payload["elections"] = elections
	}
	h.responder.JSON(w, http.StatusOK, payload)
}

// SelectElection runs eligibility checks and opens the ballot
func (h *VotingHandler) SelectElection(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	var req struct {
		ElectionID string `json:"election_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if req.ElectionID == "" {
		h.responder.Error(w, r, apperrors.NewValidationError("Election is required", nil))
		return
	}

	state, err := h.voting.SelectElection(r.Context(), sess, req.ElectionID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"state": state})
}

// PreviewCandidate marks a pending candidate choice
func (h *VotingHandler) PreviewCandidate(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	var req struct {
		CandidateID string `json:"candidate_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	state, err := h.voting.PreviewCandidate(r.Context(), sess.ID, req.CandidateID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"state": state})
}

// ConfirmCandidate commits the previewed candidate for their position
func (h *VotingHandler) ConfirmCandidate(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	state, err := h.voting.ConfirmCandidate(r.Context(), sess.ID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"state": state})
}

// ClearCandidate drops the confirmed choice for a candidate's position
func (h *VotingHandler) ClearCandidate(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	var req struct {
		CandidateID string `json:"candidate_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	state, err := h.voting.ClearCandidate(r.Context(), sess.ID, req.CandidateID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"state": state})
}

// Proceed advances to the confirmation summary
func (h *VotingHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	state, err := h.voting.Proceed(r.Context(), sess.ID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"state": state})
}

// Back steps the wizard backward one stage
func (h *VotingHandler) Back(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	state, err := h.voting.Back(r.Context(), sess.ID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"state": state})
}

// Cast submits the confirmed selections
func (h *VotingHandler) Cast(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	state, err := h.voting.Cast(r.Context(), sess)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"state": state})
}

// Reset clears the wizard back to election selection
func (h *VotingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	state, err := h.voting.Reset(r.Context(), sess.ID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"state": state})
}

// History returns the voter's past votes
func (h *VotingHandler) History(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	votes, err := h.voting.VotingHistory(r.Context(), sess)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if votes == nil {
		votes = []domain.Vote{}
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"votes": votes})
}

// VerifyVote checks a vote receipt
func (h *VotingHandler) VerifyVote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VoteID string `json:"vote_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if req.VoteID == "" {
		h.responder.Error(w, r, apperrors.NewValidationError("Vote ID is required", nil))
		return
	}

	vote, err := h.voting.VerifyVote(r.Context(), req.VoteID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"vote": vote, "verified": true})
}
