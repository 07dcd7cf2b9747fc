package role

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrEmptyRoleName = errors.New("role name cannot be empty")
	ErrRoleNotFound  = errors.New("role not found")
)

// RoleService resolves roles and their permission sets. Roles are read-only
// from the account lifecycle's perspective; CreateRole exists for bootstrap
// and tests.
type RoleService struct {
	repo RoleRepository
}

// NewRoleService creates a new role service
func NewRoleService(repo RoleRepository) *RoleService {
	return &RoleService{
		repo: repo,
	}
}

// FindRoles returns all roles
func (s *RoleService) FindRoles(ctx context.Context) ([]Role, error) {
	return s.repo.FindRoles(ctx)
}

// FindByName resolves a role by name
func (s *RoleService) FindByName(ctx context.Context, name string) (Role, error) {
	if name == "" {
		return Role{}, ErrEmptyRoleName
	}
	return s.repo.GetRoleByName(ctx, name)
}

// GetRole retrieves a role by ID
func (s *RoleService) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	return s.repo.GetRoleById(ctx, id)
}

// CreateRole adds a new role
func (s *RoleService) CreateRole(ctx context.Context, params CreateRoleParams) (Role, error) {
	if params.Name == "" {
		return Role{}, ErrEmptyRoleName
	}
	return s.repo.CreateRole(ctx, params)
}
