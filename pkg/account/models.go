package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/role"
)

// Status is the lifecycle state of an account. The "active" boolean exposed
// at the boundary is derived from it; status is the single source of truth.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Active reports whether the status allows authentication
func (s Status) Active() bool {
	return s == StatusActive
}

// SecurityLevel classifies the sensitivity of an account
type SecurityLevel string

const (
	LevelPublic       SecurityLevel = "public"
	LevelConfidential SecurityLevel = "confidential"
	LevelPrivate      SecurityLevel = "private"
)

// ParseSecurityLevel resolves a configured level name, case-insensitively.
// An unresolvable name is a configuration fault, not an ignorable default.
func ParseSecurityLevel(name string) (SecurityLevel, error) {
	switch SecurityLevel(strings.ToLower(strings.TrimSpace(name))) {
	case LevelPublic:
		return LevelPublic, nil
	case LevelConfidential:
		return LevelConfidential, nil
	case LevelPrivate:
		return LevelPrivate, nil
	}
	return "", &InvalidConfigurationError{Field: "security level", Value: name}
}

// Account is the persisted identity and credentials of a registered user.
// PasswordHash and TokenHash only ever hold digests; the plaintext token
// exists solely inside the outbound notification payload.
type Account struct {
	ID            uuid.UUID
	Username      string
	PasswordHash  string
	FirstName     string
	LastName      string
	Email         string
	Status        Status
	SecurityLevel SecurityLevel
	TokenHash     string // empty = no pending verification or reset
	Role          role.Role
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Active reports whether the account may authenticate
func (a Account) Active() bool {
	return a.Status.Active()
}

// FullName returns the display name
func (a Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Projection is the read view of an account handed to callers. It carries
// no password or token material.
type Projection struct {
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

func asProjection(a Account) Projection {
	return Projection{
		ID:            a.ID,
		Username:      a.Username,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		FullName:      a.FullName(),
		Email:         a.Email,
		Status:        string(a.Status),
		Active:        a.Active(),
		SecurityLevel: string(a.SecurityLevel),
		RoleID:        a.Role.ID,
		RoleName:      a.Role.Name,
		Permissions:   a.Role.PermissionNames(),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// AnonymousProjection is the well-defined guest view returned when no
// principal is bound. Callers render "not logged in" state from it instead
// of handling an error.
func AnonymousProjection() Projection {
	return Projection{
		Username:      "anonymous",
		FirstName:     "No",
		LastName:      "One",
		FullName:      "No One",
		Email:         "no.one@example.com",
		Status:        string(StatusDisabled),
		Active:        false,
		SecurityLevel: string(LevelPublic),
		RoleName:      "Browser",
		Permissions:   []string{},
	}
}

// RegisterParams carries a registration request
type RegisterParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

// VerifyParams carries a self-verification attempt: the emailed token plus
// the name details used as an identity cross-check
type VerifyParams struct {
	FirstName string
	LastName  string
	Token     string
}

// UpdateProfileParams carries a self-service profile update. CurrentPassword
// re-authenticates the caller; NewPassword is applied only when non-empty.
type UpdateProfileParams struct {
	FirstName       string
	LastName        string
	NewPassword     string
	CurrentPassword string
}

// AdminUpdateParams carries the administrative full-update payload. Active
// is translated to a status at the edge: true means active, false disabled.
type AdminUpdateParams struct {
	Username      string
	FirstName     string
	LastName      string
	Email         string
	Password      string // optional; hashed when non-empty
	SecurityLevel string
	RoleID        uuid.UUID
	Active        bool
}
