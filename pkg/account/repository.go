package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-account/pkg/role"
)

// AccountRepository defines the persistence contract for accounts. Lookups
// taking activeOnly filter to active status when true; token lookups never
// filter, since verification and reset operate on pending accounts.
// Create and Update detect username/email/token conflicts at commit time and
// return ErrUniquenessViolation; callers never pre-check.
type AccountRepository interface {
	Create(ctx context.Context, account Account) (Account, error)
	Update(ctx context.Context, account Account) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	FindByUsernameAndPassword(ctx context.Context, username, passwordHash string, activeOnly bool) (Account, error)
	FindByEmailAndPassword(ctx context.Context, email, passwordHash string, activeOnly bool) (Account, error)
	FindByEmail(ctx context.Context, email string, activeOnly bool) (Account, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (Account, error)
	FindByRole(ctx context.Context, roleID uuid.UUID) ([]Account, error)
	FindAll(ctx context.Context) ([]Account, error)
}

// PostgresAccountRepository implements AccountRepository using PostgreSQL
type PostgresAccountRepository struct {
	db *pgxpool.Pool
}

// NewPostgresAccountRepository creates a new PostgreSQL-based account repository
func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

const accountColumns = `
	a.id, a.username, a.password_hash, a.first_name, a.last_name, a.email,
	a.status, a.security_level, COALESCE(a.token_hash, ''),
	a.created_at, a.updated_at,
	r.id, r.name
`

// Create inserts a new account
func (r *PostgresAccountRepository) Create(ctx context.Context, account Account) (Account, error) {
	query := `
		INSERT INTO accounts (id, username, password_hash, first_name, last_name,
			email, status, security_level, token_hash, role_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
		RETURNING created_at, updated_at
	`

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.Email,
		account.Status,
		account.SecurityLevel,
		account.TokenHash,
		account.Role.ID,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return Account{}, mapUniqueness(err)
	}

	return account, nil
}

// Update persists changes to an existing account
func (r *PostgresAccountRepository) Update(ctx context.Context, account Account) (Account, error) {
	query := `
		UPDATE accounts
		SET username = $2, password_hash = $3, first_name = $4, last_name = $5,
			email = $6, status = $7, security_level = $8,
			token_hash = NULLIF($9, ''), role_id = $10,
			updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.Email,
		account.Status,
		account.SecurityLevel,
		account.TokenHash,
		account.Role.ID,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, mapUniqueness(err)
	}

	return account, nil
}

// GetByID retrieves an account by ID
func (r *PostgresAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE a.id = $1
	`
	return r.queryOne(ctx, query, id)
}

// FindByUsernameAndPassword retrieves an account matching both username and
// password digest
func (r *PostgresAccountRepository) FindByUsernameAndPassword(ctx context.Context, username, passwordHash string, activeOnly bool) (Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE a.username = $1 AND a.password_hash = $2
	` + activeClause(activeOnly)
	return r.queryOne(ctx, query, username, passwordHash)
}

// FindByEmailAndPassword retrieves an account matching both email and
// password digest
func (r *PostgresAccountRepository) FindByEmailAndPassword(ctx context.Context, email, passwordHash string, activeOnly bool) (Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE a.email = $1 AND a.password_hash = $2
	` + activeClause(activeOnly)
	return r.queryOne(ctx, query, email, passwordHash)
}

// FindByEmail retrieves an account by email
func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string, activeOnly bool) (Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE a.email = $1
	` + activeClause(activeOnly)
	return r.queryOne(ctx, query, email)
}

// FindByTokenHash retrieves the account holding a pending token digest.
// Never filtered by status: the account is typically still pending.
func (r *PostgresAccountRepository) FindByTokenHash(ctx context.Context, tokenHash string) (Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE a.token_hash = $1
	`
	return r.queryOne(ctx, query, tokenHash)
}

// FindByRole retrieves all accounts holding a role
func (r *PostgresAccountRepository) FindByRole(ctx context.Context, roleID uuid.UUID) ([]Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE a.role_id = $1
		ORDER BY a.created_at DESC
	`
	return r.queryMany(ctx, query, roleID)
}

// FindAll retrieves all accounts, newest first
func (r *PostgresAccountRepository) FindAll(ctx context.Context) ([]Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		ORDER BY a.created_at DESC
	`
	return r.queryMany(ctx, query)
}

func activeClause(activeOnly bool) string {
	if activeOnly {
		return ` AND a.status = 'active'`
	}
	return ``
}

func (r *PostgresAccountRepository) queryOne(ctx context.Context, query string, args ...interface{}) (Account, error) {
	row := r.db.QueryRow(ctx, query, args...)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}

	account.Role.Permissions, err = r.findPermissions(ctx, account.Role.ID)
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

func (r *PostgresAccountRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		accounts[i].Role.Permissions, err = r.findPermissions(ctx, accounts[i].Role.ID)
		if err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (r *PostgresAccountRepository) findPermissions(ctx context.Context, roleID uuid.UUID) ([]role.Permission, error) {
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

	var permissions []role.Permission
	for rows.Next() {
		var p role.Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.PasswordHash,
		&a.FirstName,
		&a.LastName,
		&a.Email,
		&a.Status,
		&a.SecurityLevel,
		&a.TokenHash,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.Role.ID,
		&a.Role.Name,
	)
	return a, err
}

func mapUniqueness(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrUniquenessViolation, pgErr.ConstraintName)
	}
	return err
}
