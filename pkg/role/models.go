package role

import (
	"github.com/google/uuid"
)

// Permission is a capability name granted through a role (e.g., "admin").
// Immutable from the account lifecycle's perspective.
type Permission struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Role represents a named set of permissions
type Role struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// PermissionNames returns the permission names carried by the role
func (r Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}
	return names
}

// CreateRoleParams contains parameters for creating a role
type CreateRoleParams struct {
	Name        string
	Permissions []string
}
