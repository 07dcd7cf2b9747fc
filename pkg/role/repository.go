package role

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoleRepository defines the interface for role lookup and management
type RoleRepository interface {
	FindRoles(ctx context.Context) ([]Role, error)
	GetRoleById(ctx context.Context, id uuid.UUID) (Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	CreateRole(ctx context.Context, params CreateRoleParams) (Role, error)
}

// PostgresRoleRepository implements RoleRepository using PostgreSQL
type PostgresRoleRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRoleRepository creates a new PostgreSQL-based role repository
func NewPostgresRoleRepository(db *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{db: db}
}

// FindRoles returns all roles with their permissions
func (r *PostgresRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	query := `
		SELECT id, name
		FROM roles
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		permissions, err := r.findPermissions(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = permissions
	}

	return roles, nil
}

// GetRoleById retrieves a role and its permissions by ID
func (r *PostgresRoleRepository) GetRoleById(ctx context.Context, id uuid.UUID) (Role, error) {
	query := `
		SELECT id, name
		FROM roles
		WHERE id = $1
	`

	var role Role
	err := r.db.QueryRow(ctx, query, id).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrRoleNotFound
		}
		return Role{}, err
	}

	role.Permissions, err = r.findPermissions(ctx, role.ID)
	if err != nil {
		return Role{}, err
	}

	return role, nil
}

// GetRoleByName retrieves a role and its permissions by name
func (r *PostgresRoleRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	query := `
		SELECT id, name
		FROM roles
		WHERE name = $1
	`

	var role Role
	err := r.db.QueryRow(ctx, query, name).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrRoleNotFound
		}
		return Role{}, err
	}

	role.Permissions, err = r.findPermissions(ctx, role.ID)
	if err != nil {
		return Role{}, err
	}

	return role, nil
}

// CreateRole creates a role and its permission set
func (r *PostgresRoleRepository) CreateRole(ctx context.Context, params CreateRoleParams) (Role, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Role{}, err
	}
	defer tx.Rollback(ctx)

	role := Role{ID: uuid.New(), Name: params.Name}
	_, err = tx.Exec(ctx, `INSERT INTO roles (id, name) VALUES ($1, $2)`, role.ID, role.Name)
	if err != nil {
		return Role{}, err
	}

	for _, name := range params.Permissions {
		permission := Permission{ID: uuid.New(), Name: name}
		_, err = tx.Exec(ctx, `
			INSERT INTO permissions (id, role_id, name)
			VALUES ($1, $2, $3)
		`, permission.ID, role.ID, permission.Name)
		if err != nil {
			return Role{}, err
		}
		role.Permissions = append(role.Permissions, permission)
	}

	if err := tx.Commit(ctx); err != nil {
		return Role{}, err
	}

	return role, nil
}

func (r *PostgresRoleRepository) findPermissions(ctx context.Context, roleID uuid.UUID) ([]Permission, error) {
	query := `
		SELECT id, name
		FROM permissions
		WHERE role_id = $1
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}

	return permissions, rows.Err()
}
