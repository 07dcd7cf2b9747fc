package api

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the body of POST /register
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// VerifyRequest is the body of POST /verify
type VerifyRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Token     string `json:"token"`
}

// SignInRequest is the body of POST /signin
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the body of PUT /me
type UpdateProfileRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	NewPassword     string `json:"new_password,omitempty"`
	CurrentPassword string `json:"current_password"`
}

// StartPasswordResetRequest is the body of POST /password-reset
type StartPasswordResetRequest struct {
	Email string `json:"email"`
}

// FinishPasswordResetRequest is the body of PUT /password-reset
type FinishPasswordResetRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// AdminUpdateRequest is the body of PUT /accounts/{id}
type AdminUpdateRequest struct {
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Password      string `json:"password,omitempty"`
	SecurityLevel string `json:"security_level"`
	RoleID        string `json:"role_id"`
	Active        bool   `json:"active"`
}

// AccountResponse is the account view returned by every endpoint. It never
// carries password or token material.
type AccountResponse struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Status        string    `json:"status"`
	Active        bool      `json:"active"`
	SecurityLevel string    `json:"security_level"`
	RoleID        uuid.UUID `json:"role_id,omitempty"`
	RoleName      string    `json:"role_name,omitempty"`
	Permissions   []string  `json:"permissions"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MessageResponse is a simple success acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error body returned on failure
type ErrorResponse struct {
	Error string `json:"error"`
}
