package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"evoting-portal/internal/domain"
)

// Login exchanges credentials for a token plus the user and profile records
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a voter account pending INEC verification
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the token on the backend. Local session teardown does
// not depend on this call succeeding.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout/", nil, nil)
}

// GetProfile returns the authenticated user and, for voters, the profile
func (c *Client) GetProfile(ctx context.Context) (*domain.ProfileResponse, error) {
	var resp domain.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/auth/profile/", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword changes the authenticated user's password
func (c *Client) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/change-password/", req, nil)
}

// RequestPasswordReset starts a password reset for the given phone number
func (c *Client) RequestPasswordReset(ctx context.Context, req domain.PasswordResetRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password-request/", req, nil)
}

// ResetPassword completes a password reset
func (c *Client) ResetPassword(ctx context.Context, req domain.PasswordResetConfirm) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password/", req, nil)
}

// VoterQuery filters and paginates the voter listing
type VoterQuery struct {
	Search   string
	Verified *bool
	Page     int
	PageSize int
}

// ListVoters returns the voter roll, normalized whether or not the backend
// paginates it
func (c *Client) ListVoters(ctx context.Context, q VoterQuery) (List[domain.Voter], error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Verified != nil {
		query.Set("registration_verified", strconv.FormatBool(*q.Verified))
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(q.PageSize))
	}

	raw, err := c.getRaw(ctx, "/auth/voters/", query)
	if err != nil {
		return List[domain.Voter]{}, err
	}
	return normalizeList[domain.Voter](raw)
}

// VerifyVoter marks a voter's registration verified
func (c *Client) VerifyVoter(ctx context.Context, voterID string) error {
	return c.do(ctx, http.MethodPost, "/auth/voters/"+voterID+"/verify/", nil, nil)
}

// CancelVoter cancels a voter's registration
func (c *Client) CancelVoter(ctx context.Context, voterID string) error {
	return c.do(ctx, http.MethodPost, "/auth/voters/"+voterID+"/cancel/", nil, nil)
}

// CreateAdmin creates an admin account (superuser only)
func (c *Client) CreateAdmin(ctx context.Context, req domain.CreateOfficialRequest) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/create-admin/", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// CreateInecOfficial creates an INEC official account
func (c *Client) CreateInecOfficial(ctx context.Context, req domain.CreateOfficialRequest) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/create-inec-official/", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
