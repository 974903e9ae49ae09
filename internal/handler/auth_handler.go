package handler

import (
	"net/http"
	"strings"
	"time"

	"evoting-portal/internal/domain"
	"evoting-portal/internal/middleware"
	"evoting-portal/internal/session"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
)

// AuthHandler serves login, registration, logout, password and profile flows
type AuthHandler struct {
	sessions  *session.Store
	guard     *middleware.Guard
	responder *Responder
	log       *logger.Logger
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(sessions *session.Store, guard *middleware.Guard, responder *Responder, log *logger.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, guard: guard, responder: responder, log: log}
}

// Login authenticates credentials and sets the session cookie on success
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if req.PhoneNumber == "" || req.Password == "" {
		h.responder.Error(w, r, apperrors.NewValidationError("Phone number and password are required", nil))
		return
	}

	result, err := h.sessions.Login(r.Context(), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	if !result.Success {
		h.responder.JSON(w, http.StatusUnauthorized, result)
		return
	}

	h.guard.SetCookie(w, result.Session.ID)
	h.responder.JSON(w, http.StatusOK, loginPayload(result))
}

// Register validates the registration form before it ever reaches the
// backend, then creates the account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if err := validateRegistration(req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	result, err := h.sessions.Register(r.Context(), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	if !result.Success {
		h.responder.JSON(w, http.StatusBadRequest, result)
		return
	}

	if result.Session != nil {
		h.guard.SetCookie(w, result.Session.ID)
	}
	h.responder.JSON(w, http.StatusCreated, loginPayload(result))
}

// Logout ends the session and clears the cookie. Always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := h.sessions.Logout(r.Context(), sess); err != nil {
		h.log.WithError(err).Warn("Logout cleanup failed")
	}
	h.guard.ClearCookie(w)
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Profile returns the session's user and voter profile, refreshed from the
// backend so verification changes show up.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := h.sessions.RefreshProfile(r.Context(), sess); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{
		"user":    sess.User,
		"profile": sess.Profile,
		"theme":   sess.Theme,
	})
}

// ChangePassword updates the logged-in user's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if len(req.NewPassword) < 8 {
		h.responder.Error(w, r, apperrors.NewValidationError("Password must be at least 8 characters", map[string]interface{}{
			"new_password": "Password must be at least 8 characters",
		}))
		return
	}
	if err := h.sessions.ChangePassword(r.Context(), req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// RequestPasswordReset starts the reset flow for a phone number
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if req.PhoneNumber == "" {
		h.responder.Error(w, r, apperrors.NewValidationError("Phone number is required", nil))
		return
	}
	if err := h.sessions.RequestPasswordReset(r.Context(), req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ResetPassword completes the reset flow with the code sent to the voter
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetConfirm
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if req.PhoneNumber == "" || req.Code == "" {
		h.responder.Error(w, r, apperrors.NewValidationError("Phone number and reset code are required", nil))
		return
	}
	if len(req.NewPassword) < 8 {
		h.responder.Error(w, r, apperrors.NewValidationError("Password must be at least 8 characters", map[string]interface{}{
			"new_password": "Password must be at least 8 characters",
		}))
		return
	}
	if err := h.sessions.ResetPassword(r.Context(), req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// SetTheme stores the session's light/dark preference
func (h *AuthHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	var req struct {
		Theme string `json:"theme"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if err := h.sessions.SetTheme(r.Context(), sess, req.Theme); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, map[string]interface{}{"theme": sess.Theme})
}

func loginPayload(result *session.AuthResult) map[string]interface{} {
	payload := map[string]interface{}{
		"success": true,
		"message": result.Message,
	}
	if result.VerificationStatus != nil {
		payload["verification_status"] = result.VerificationStatus
	}
	if result.Session != nil {
		payload["user"] = result.Session.User
		payload["profile"] = result.Session.Profile
		payload["redirect"] = middleware.HomeFor(result.Session)
	}
	return payload
}

// validateRegistration applies the form rules before the backend sees the
// request: password length and match, a 10-character alphanumeric voter ID,
// and a minimum age of 18.
func validateRegistration(req domain.RegisterRequest) error {
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
	if req.Password != req.PasswordConfirm {
		details["password_confirm"] = "Passwords do not match"
	}
	if !validVoterID(req.VoterID) {
		details["voter_id"] = "Voter ID must be exactly 10 letters or digits"
	}

	if req.DOB == "" {
		details["dob"] = "Date of birth is required"
	} else if dob, err := time.Parse("2006-01-02", req.DOB); err != nil {
		details["dob"] = "Date of birth must be a valid date"
	} else if !isAdult(dob, time.Now()) {
		details["dob"] = "You must be at least 18 years old to register"
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("Please correct the highlighted fields", details)
	}
	return nil
}

func validVoterID(id string) bool {
	if len(id) != 10 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}

func isAdult(dob, now time.Time) bool {
	cutoff := dob.AddDate(18, 0, 0)
	return !cutoff.After(now)
}
