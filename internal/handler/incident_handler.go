package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/internal/service"
	"evoting-portal/internal/session"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
)

const maxEvidenceMemory = 32 << 20

// IncidentHandler serves incident reporting and triage endpoints
type IncidentHandler struct {
	incidents *service.IncidentService
	responder *Responder
	log       *logger.Logger
}

// NewIncidentHandler creates an incident handler
func NewIncidentHandler(incidents *service.IncidentService, responder *Responder, log *logger.Logger) *IncidentHandler {
	return &IncidentHandler{incidents: incidents, responder: responder, log: log}
}

// List returns the incidents visible to the caller's role
func (h *IncidentHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	reports, err := h.incidents.List(r.Context(), sess)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if reports == nil {
		reports = []domain.IncidentReport{}
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"incidents": reports})
}

// Get returns one incident report
func (h *IncidentHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.incidents.Get(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, report)
}

// Create files a new incident. A multipart submission carries evidence
// files; a JSON body files a report without evidence.
func (h *IncidentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		req      domain.IncidentRequest
		evidence []backend.Upload
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxEvidenceMemory); err != nil {
			h.responder.Error(w, r, apperrors.NewValidationError("Invalid form submission", nil))
			return
		}
		req = domain.IncidentRequest{
			IncidentType: r.FormValue("incident_type"),
			Description:  r.FormValue("description"),
			Location:     r.FormValue("location"),
			Priority:     r.FormValue("priority"),
		}
		if r.MultipartForm != nil {
			for _, header := range r.MultipartForm.File["evidence_files"] {
				file, err := header.Open()
				if err != nil {
					h.responder.Error(w, r, apperrors.NewValidationError("Could not read evidence file", nil))
					return
				}
				defer file.Close()
				evidence = append(evidence, backend.Upload{
					Filename: header.Filename,
					Content:  file,
				})
			}
		}
	} else {
		if err := decodeJSON(r, &req); err != nil {
			h.responder.Error(w, r, err)
			return
		}
	}

	report, err := h.incidents.Report(r.Context(), req, evidence)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusCreated, report)
}

// Assign gives an incident to an official
func (h *IncidentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req domain.IncidentAssignRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	req.IncidentID = chi.URLParam(r, "reportID")
	if req.OfficialID == "" {
		h.responder.Error(w, r, apperrors.NewValidationError("Official is required", nil))
		return
	}
	if err := h.incidents.Assign(r.Context(), req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// UpdateStatus transitions an incident's status
func (h *IncidentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.IncidentStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if err := h.incidents.UpdateStatus(r.Context(), chi.URLParam(r, "reportID"), req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Delete removes an incident report
func (h *IncidentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.incidents.Delete(r.Context(), chi.URLParam(r, "reportID")); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Stats returns aggregate incident counts
func (h *IncidentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.incidents.Stats(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, stats)
}
