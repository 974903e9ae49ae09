package handler

import (
	"net/http"

	"evoting-portal/internal/service"
	"evoting-portal/internal/session"
	"evoting-portal/pkg/logger"
)

// DashboardHandler serves the landing pages' data
type DashboardHandler struct {
	dashboard *service.DashboardService
	responder *Responder
	log       *logger.Logger
}

// NewDashboardHandler creates a dashboard handler
func NewDashboardHandler(dashboard *service.DashboardService, responder *Responder, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, responder: responder, log: log}
}

// Home returns the voter dashboard: open elections, the caller's voting
// history and verification flags. Admins are sent on to their own dashboard
// instead.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess.IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	overview, err := h.dashboard.VoterStats(r.Context(), sess)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, overview)
}

// AdminStats returns the admin dashboard's headline figures
func (h *DashboardHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.AdminStats(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, stats)
}
