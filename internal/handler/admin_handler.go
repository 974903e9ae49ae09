package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/internal/service"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
)

// AdminHandler serves election and candidate management plus official
// account creation.
type AdminHandler struct {
	admin     *service.AdminService
	responder *Responder
	log       *logger.Logger
}

// NewAdminHandler creates an admin handler
func NewAdminHandler(admin *service.AdminService, responder *Responder, log *logger.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, responder: responder, log: log}
}

// Elections lists every election
func (h *AdminHandler) Elections(w http.ResponseWriter, r *http.Request) {
	elections, err := h.admin.Elections(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"elections": elections})
}

// CreateElection creates an election
func (h *AdminHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req domain.ElectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	election, err := h.admin.CreateElection(r.Context(), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusCreated, election)
}

// UpdateElection updates an election
func (h *AdminHandler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	var req domain.ElectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	election, err := h.admin.UpdateElection(r.Context(), chi.URLParam(r, "electionID"), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, election)
}

// DeleteElection removes an election
func (h *AdminHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteElection(r.Context(), chi.URLParam(r, "electionID")); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// StartElection opens an election for voting
func (h *AdminHandler) StartElection(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.StartElection(r.Context(), chi.URLParam(r, "electionID")); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// CheckStatus triggers a re-check of every election window
func (h *AdminHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.CheckStatus(r.Context()); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// EndElection closes an election
func (h *AdminHandler) EndElection(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.EndElection(r.Context(), chi.URLParam(r, "electionID")); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Candidates lists an election's candidates
func (h *AdminHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.admin.Candidates(r.Context(), chi.URLParam(r, "electionID"))
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"candidates": candidates})
}

// CreateCandidate registers a candidate. A multipart submission may carry a
// photo; a JSON body registers without one.
func (h *AdminHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var (
		req   domain.CandidateRequest
		photo *backend.Upload
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxEvidenceMemory); err != nil {
			h.responder.Error(w, r, apperrors.NewValidationError("Invalid form submission", nil))
			return
		}
		req = domain.CandidateRequest{
			Name:      r.FormValue("name"),
			Party:     r.FormValue("party"),
			Position:  r.FormValue("position"),
			Biography: r.FormValue("biography"),
			Election:  r.FormValue("election"),
		}
		if file, header, err := r.FormFile("photo"); err == nil {
			defer file.Close()
			photo = &backend.Upload{Filename: header.Filename, Content: file}
		}
	} else {
		if err := decodeJSON(r, &req); err != nil {
			h.responder.Error(w, r, err)
			return
		}
	}

	if req.Election == "" {
		req.Election = chi.URLParam(r, "electionID")
	}

	candidate, err := h.admin.CreateCandidate(r.Context(), req, photo)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusCreated, candidate)
}

// UpdateCandidate updates a candidate's details
func (h *AdminHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	var req domain.CandidateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	candidate, err := h.admin.UpdateCandidate(r.Context(), chi.URLParam(r, "candidateID"), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, candidate)
}

// DeleteCandidate removes a candidate
func (h *AdminHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteCandidate(r.Context(), chi.URLParam(r, "candidateID")); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// CreateAdmin provisions an admin account
func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOfficialRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if err := validateOfficial(req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	message, err := h.admin.CreateAdmin(r.Context(), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusCreated, map[string]interface{}{"success": true, "message": message})
}

// CreateInecOfficial provisions an INEC official account
func (h *AdminHandler) CreateInecOfficial(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOfficialRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if err := validateOfficial(req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	message, err := h.admin.CreateInecOfficial(r.Context(), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusCreated, map[string]interface{}{"success": true, "message": message})
}

func validateOfficial(req domain.CreateOfficialRequest) error {
	details := map[string]interface{}{}
	if strings.TrimSpace(req.Name) == "" {
		details["name"] = "Name is required"
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		details["phone_number"] = "Phone number is required"
	}
	if len(req.Password) < 8 {
		details["password"] = "Password must be at least 8 characters"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("Please correct the highlighted fields", details)
	}
	return nil
}
