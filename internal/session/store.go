package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/pkg/logger"
	"evoting-portal/pkg/redis"
)

// AuthResult is the outcome of a login or register attempt, shaped for the
// handlers that render it. Details carries per-field backend errors.
type AuthResult struct {
	Success            bool                       `json:"success"`
	Error              string                     `json:"error,omitempty"`
	Details            map[string]string          `json:"details,omitempty"`
	Status             string                     `json:"status,omitempty"`
	Message            string                     `json:"message,omitempty"`
	VerificationStatus *domain.VerificationStatus `json:"verification_status,omitempty"`
	Session            *Session                   `json:"-"`
}

// Store manages session records in Redis and drives the auth flows against
// the election backend.
type Store struct {
	redis   *redis.Client
	backend *backend.Client
	log     *logger.Logger
}

// NewStore creates a session store
func NewStore(redisClient *redis.Client, backendClient *backend.Client, log *logger.Logger) *Store {
	return &Store{
		redis:   redisClient,
		backend: backendClient,
		log:     log,
	}
}

// Login authenticates against the backend and, on success, creates a session.
// A failed login never creates a session; the backend's message and field
// details are surfaced verbatim.
func (s *Store) Login(ctx context.Context, req domain.LoginRequest) (*AuthResult, error) {
	resp, err := s.backend.Login(ctx, req)
	if err != nil {
		if apiErr, ok := backend.AsAPIError(err); ok {
			return &AuthResult{
				Success: false,
				Error:   apiErr.Message(),
				Details: apiErr.FieldDetails(),
				Status:  apiErr.Detail("status"),
			}, nil
		}
		return nil, err
	}

	if resp.Token == "" || resp.User == nil {
		result := &AuthResult{Success: false, Error: "Login failed. Please try again."}
		if resp.Message != "" {
			result.Error = resp.Message
		}
		result.Status = resp.Status
		result.VerificationStatus = resp.VerificationStatus
		return result, nil
	}

	sess, err := s.create(ctx, resp)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"user_id": resp.User.UserID,
		"role":    resp.User.Role,
	}).Info("Login successful")

	return &AuthResult{
		Success:            true,
		Message:            resp.Message,
		VerificationStatus: resp.VerificationStatus,
		Session:            sess,
	}, nil
}

// Register creates a voter account and logs the new voter in when the
// backend returns a token with the registration response.
func (s *Store) Register(ctx context.Context, req domain.RegisterRequest) (*AuthResult, error) {
	resp, err := s.backend.Register(ctx, req)
	if err != nil {
		if apiErr, ok := backend.AsAPIError(err); ok {
			return &AuthResult{
				Success: false,
				Error:   apiErr.Message(),
				Details: apiErr.FieldDetails(),
			}, nil
		}
		return nil, err
	}

	result := &AuthResult{
		Success:            true,
		Message:            resp.Message,
		VerificationStatus: resp.VerificationStatus,
	}

	if resp.Token != "" && resp.User != nil {
		sess, err := s.create(ctx, resp)
		if err != nil {
			return nil, err
		}
		result.Session = sess
	}
	return result, nil
}

func (s *Store) create(ctx context.Context, resp *domain.AuthResponse) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Token:     resp.Token,
		User:      resp.User,
		Profile:   resp.Profile,
		Theme:     ThemeLight,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Save persists the session record with the session TTL
func (s *Store) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	key := s.redis.KeyBuilder.KeySession(sess.ID)
	return s.redis.Set(ctx, key, string(data), redis.TTLSession)
}

// Get resolves a session ID to its record. It returns nil without error for
// unknown IDs and for sessions whose bearer token has since expired; expired
// sessions are destroyed on the way out.
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	key := s.redis.KeyBuilder.KeySession(sessionID)
	data, err := s.redis.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("Corrupt session record, destroying")
		_ = s.Destroy(ctx, sessionID)
		return nil, nil
	}

	if tokenExpired(sess.Token, time.Now()) {
		s.log.WithField("session_id", sessionID).Info("Session token expired")
		_ = s.Destroy(ctx, sessionID)
		return nil, nil
	}
	return &sess, nil
}

// Logout tells the backend to invalidate the token, then destroys the local
// session regardless of the backend outcome. Safe to call for a session that
// is already gone.
func (s *Store) Logout(ctx context.Context, sess *Session) error {
	if sess == nil {
		return nil
	}
	if err := s.backend.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("Backend logout failed, destroying session anyway")
	}
	return s.Destroy(ctx, sess.ID)
}

// Destroy removes the session record and any wizard state tied to it
func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	wizardKey := s.redis.KeyBuilder.KeyWizard(sessionID)
	if err := s.redis.Delete(ctx, wizardKey); err != nil && !redis.IsNil(err) {
		s.log.WithError(err).Debug("Failed to clear wizard state on logout")
	}
	return s.redis.Delete(ctx, s.redis.KeyBuilder.KeySession(sessionID))
}

// RefreshProfile re-fetches the user and voter profile from the backend and
// updates the session record in place.
func (s *Store) RefreshProfile(ctx context.Context, sess *Session) error {
	resp, err := s.backend.GetProfile(ctx)
	if err != nil {
		return err
	}
	if resp.User != nil {
		sess.User = resp.User
	}
	sess.Profile = resp.Profile
	return s.Save(ctx, sess)
}

// ChangePassword updates the logged-in user's password on the backend
func (s *Store) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	return s.backend.ChangePassword(ctx, req)
}

// RequestPasswordReset starts a reset flow for a phone number
func (s *Store) RequestPasswordReset(ctx context.Context, req domain.PasswordResetRequest) error {
	return s.backend.RequestPasswordReset(ctx, req)
}

// ResetPassword completes a reset flow
func (s *Store) ResetPassword(ctx context.Context, req domain.PasswordResetConfirm) error {
	return s.backend.ResetPassword(ctx, req)
}

// SetTheme updates the session's theme preference
func (s *Store) SetTheme(ctx context.Context, sess *Session, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		theme = ThemeLight
	}
	sess.Theme = theme
	return s.Save(ctx, sess)
}
