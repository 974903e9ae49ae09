package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"evoting-portal/internal/service"
	"evoting-portal/internal/session"
	"evoting-portal/pkg/logger"
)

// ResultsHandler serves election results views
type ResultsHandler struct {
	results   *service.ResultsService
	responder *Responder
	log       *logger.Logger
}

// NewResultsHandler creates a results handler
func NewResultsHandler(results *service.ResultsService, responder *Responder, log *logger.Logger) *ResultsHandler {
	return &ResultsHandler{results: results, responder: responder, log: log}
}

// Elections lists every election for the results selector
func (h *ResultsHandler) Elections(w http.ResponseWriter, r *http.Request) {
	elections, err := h.results.AllElections(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"elections": elections})
}

// Live returns the live tally for one election and keeps it warm for
// subsequent polls from the same page.
func (h *ResultsHandler) Live(w http.ResponseWriter, r *http.Request) {
	electionID := chi.URLParam(r, "electionID")
	results, err := h.results.LiveResults(r.Context(), electionID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.results.Watch(session.FromContext(r.Context()), electionID)
	h.responder.JSON(w, http.StatusOK, results)
}

// Final returns the published results for a completed election
func (h *ResultsHandler) Final(w http.ResponseWriter, r *http.Request) {
	electionID := chi.URLParam(r, "electionID")
	results, err := h.results.FinalResults(r.Context(), electionID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.results.Unwatch(electionID)
	h.responder.JSON(w, http.StatusOK, results)
}
