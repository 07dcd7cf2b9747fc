package role

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByName(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRoleRepository()
	service := NewRoleService(repo)

	created, err := service.CreateRole(ctx, CreateRoleParams{
		Name:        "Contributor",
		Permissions: []string{"read", "write"},
	})
	require.NoError(t, err)

	found, err := service.FindByName(ctx, "Contributor")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.ElementsMatch(t, []string{"read", "write"}, found.PermissionNames())
}

func TestFindByNameNotFound(t *testing.T) {
	ctx := context.Background()
	service := NewRoleService(NewInMemoryRoleRepository())

	_, err := service.FindByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestFindByNameEmpty(t *testing.T) {
	ctx := context.Background()
	service := NewRoleService(NewInMemoryRoleRepository())

	_, err := service.FindByName(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyRoleName)
}

func TestGetRole(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRoleRepository()
	service := NewRoleService(repo)

	created, err := service.CreateRole(ctx, CreateRoleParams{Name: "Admin", Permissions: []string{"admin"}})
	require.NoError(t, err)

	found, err := service.GetRole(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin", found.Name)

	_, err = service.GetRole(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestCreateRoleEmptyName(t *testing.T) {
	ctx := context.Background()
	service := NewRoleService(NewInMemoryRoleRepository())

	_, err := service.CreateRole(ctx, CreateRoleParams{Name: ""})
	assert.ErrorIs(t, err, ErrEmptyRoleName)
}

func TestFindRoles(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRoleRepository()
	service := NewRoleService(repo)

	_, err := service.CreateRole(ctx, CreateRoleParams{Name: "Browser"})
	require.NoError(t, err)
	_, err = service.CreateRole(ctx, CreateRoleParams{Name: "Admin"})
	require.NoError(t, err)

	roles, err := service.FindRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}
