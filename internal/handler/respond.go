package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/middleware"
	"evoting-portal/internal/session"
	apperrors "evoting-portal/pkg/errors"
	"evoting-portal/pkg/logger"
)

// Responder renders JSON responses and owns the error-to-response mapping.
// An expired or revoked backend token surfaces here as ErrUnauthorized; the
// responder destroys the session and sends the browser back to login.
type Responder struct {
	sessions *session.Store
	guard    *middleware.Guard
	log      *logger.Logger
}

// NewResponder creates a responder
func NewResponder(sessions *session.Store, guard *middleware.Guard, log *logger.Logger) *Responder {
	return &Responder{sessions: sessions, guard: guard, log: log}
}

// JSON writes a JSON response with the given status
func (rp *Responder) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rp.log.WithError(err).Error("Failed to encode response")
	}
}

// Error maps an error to its response. Unauthorized backend replies end the
// session; everything else renders the standard error envelope.
func (rp *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, backend.ErrUnauthorized) {
		if sess := session.FromContext(r.Context()); sess != nil {
			if derr := rp.sessions.Destroy(r.Context(), sess.ID); derr != nil {
				rp.log.WithError(derr).Warn("Failed to destroy session after unauthorized reply")
			}
		}
		rp.guard.ClearCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode >= http.StatusInternalServerError {
			rp.log.WithError(err).Error("Request failed")
		}
		rp.writeError(w, r, appErr.StatusCode, appErr.Type, appErr.Message, appErr.Details)
		return
	}

	if apiErr, ok := backend.AsAPIError(err); ok {
		details := map[string]interface{}{}
		for k, v := range apiErr.FieldDetails() {
			details[k] = v
		}
		if len(details) == 0 {
			details = nil
		}
		rp.writeError(w, r, apiErr.StatusCode, apperrors.ErrorTypeUpstream, apiErr.Message(), details)
		return
	}

	rp.log.WithError(err).Error("Unhandled error")
	rp.writeError(w, r, http.StatusInternalServerError, apperrors.ErrorTypeInternal, "Something went wrong. Please try again.", nil)
}

func (rp *Responder) writeError(w http.ResponseWriter, r *http.Request, status int, errType apperrors.ErrorType, message string, details map[string]interface{}) {
	var resp apperrors.ErrorResponse
	resp.Error.Type = errType
	resp.Error.Message = message
	resp.Error.Details = details
	resp.Error.RequestID = middleware.GetRequestID(r.Context())
	resp.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)
	rp.JSON(w, status, resp)
}

// decodeJSON decodes a request body into dst, rejecting unknown payloads
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("Invalid request body", nil)
	}
	return nil
}
