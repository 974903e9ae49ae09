package domain

import "time"

// Role values assigned by the election backend
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
	RoleInec  = "inec_official"
)

// User represents an account on the election backend
type User struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Role        string    `json:"role"`
	IsSuperuser bool      `json:"is_superuser"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// VoterProfile is the voter-side registration record, one-to-one with a User
// of role voter. Mutated only by backend verification actions.
type VoterProfile struct {
	VoterID              string `json:"voter_id"`
	VotersCardID         string `json:"voters_card_id"`
	RegistrationVerified bool   `json:"registration_verified"`
	CanVote              bool   `json:"can_vote"`
}

// Voter is the management view of a voter: profile fields plus the owning user
type Voter struct {
	VoterProfile
	User *User `json:"user,omitempty"`
}

// LoginRequest carries credentials to the backend
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// RegisterRequest carries a new voter registration
type RegisterRequest struct {
	Name            string `json:"name"`
	PhoneNumber     string `json:"phone_number"`
	DOB             string `json:"dob"`
	VoterID         string `json:"voter_id"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// VerificationStatus is reported by the backend on login
type VerificationStatus struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message,omitempty"`
}

// AuthResponse is the backend's answer to login and register calls
type AuthResponse struct {
	User               *User               `json:"user"`
	Profile            *VoterProfile       `json:"profile"`
	Token              string              `json:"token"`
	Message            string              `json:"message,omitempty"`
	Status             string              `json:"status,omitempty"`
	VerificationStatus *VerificationStatus `json:"verification_status,omitempty"`
}

// ProfileResponse is the backend's answer to the profile call
type ProfileResponse struct {
	User    *User         `json:"user"`
	Profile *VoterProfile `json:"profile"`
}

// ChangePasswordRequest carries a password change for the logged-in user
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// PasswordResetRequest starts a reset flow for the given phone number
type PasswordResetRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// PasswordResetConfirm completes a reset flow
type PasswordResetConfirm struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// CreateOfficialRequest creates an admin or INEC official account
type CreateOfficialRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}
