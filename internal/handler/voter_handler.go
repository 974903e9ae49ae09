package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"evoting-portal/internal/service"
	"evoting-portal/pkg/logger"
)

// VoterHandler serves the voter management screens
type VoterHandler struct {
	voters    *service.VoterService
	responder *Responder
	log       *logger.Logger
}

// NewVoterHandler creates a voter handler
func NewVoterHandler(voters *service.VoterService, responder *Responder, log *logger.Logger) *VoterHandler {
	return &VoterHandler{voters: voters, responder: responder, log: log}
}

// List returns a filtered page of the voter roll. Query parameters: search,
// verified (true/false), page, page_size.
func (h *VoterHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var verified *bool
	if v := q.Get("verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			verified = &b
		}
	}
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	result, err := h.voters.List(r.Context(), q.Get("search"), verified, page, pageSize)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, result)
}

// Detail returns one voter with their voting history
func (h *VoterHandler) Detail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.voters.Detail(r.Context(), chi.URLParam(r, "voterID"))
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, detail)
}

// Verify approves a voter's registration
func (h *VoterHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := h.voters.Verify(r.Context(), chi.URLParam(r, "voterID")); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Cancel revokes a voter's verification
func (h *VoterHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.voters.Cancel(r.Context(), chi.URLParam(r, "voterID")); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
