package account

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryAccountRepository implements AccountRepository using in-memory
// storage. It enforces the same username/email/token uniqueness the
// PostgreSQL schema does, so services see identical conflict behavior.
type InMemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
}

// NewInMemoryAccountRepository creates a new in-memory account repository
func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		accounts: make(map[uuid.UUID]Account),
	}
}

// Create inserts a new account
func (r *InMemoryAccountRepository) Create(ctx context.Context, account Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if err := r.checkUnique(account); err != nil {
		return Account{}, err
	}

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts[account.ID] = account
	return account, nil
}

// Update persists changes to an existing account
func (r *InMemoryAccountRepository) Update(ctx context.Context, account Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.accounts[account.ID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	if err := r.checkUnique(account); err != nil {
		return Account{}, err
	}

	account.CreatedAt = existing.CreatedAt
	account.UpdatedAt = time.Now().UTC()
	r.accounts[account.ID] = account
	return account, nil
}

// GetByID retrieves an account by ID
func (r *InMemoryAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

// FindByUsernameAndPassword retrieves an account matching username and
// password digest
func (r *InMemoryAccountRepository) FindByUsernameAndPassword(ctx context.Context, username, passwordHash string, activeOnly bool) (Account, error) {
	return r.findOne(func(a Account) bool {
		return a.Username == username && a.PasswordHash == passwordHash && (!activeOnly || a.Active())
	})
}

// FindByEmailAndPassword retrieves an account matching email and password
// digest
func (r *InMemoryAccountRepository) FindByEmailAndPassword(ctx context.Context, email, passwordHash string, activeOnly bool) (Account, error) {
	return r.findOne(func(a Account) bool {
		return a.Email == email && a.PasswordHash == passwordHash && (!activeOnly || a.Active())
	})
}

// FindByEmail retrieves an account by email
func (r *InMemoryAccountRepository) FindByEmail(ctx context.Context, email string, activeOnly bool) (Account, error) {
	return r.findOne(func(a Account) bool {
		return a.Email == email && (!activeOnly || a.Active())
	})
}

// FindByTokenHash retrieves the account holding a pending token digest
func (r *InMemoryAccountRepository) FindByTokenHash(ctx context.Context, tokenHash string) (Account, error) {
	if tokenHash == "" {
		return Account{}, ErrAccountNotFound
	}
	return r.findOne(func(a Account) bool {
		return a.TokenHash == tokenHash
	})
}

// FindByRole retrieves all accounts holding a role
func (r *InMemoryAccountRepository) FindByRole(ctx context.Context, roleID uuid.UUID) ([]Account, error) {
	return r.findMany(func(a Account) bool {
		return a.Role.ID == roleID
	})
}

// FindAll retrieves all accounts, newest first
func (r *InMemoryAccountRepository) FindAll(ctx context.Context) ([]Account, error) {
	return r.findMany(func(a Account) bool { return true })
}

func (r *InMemoryAccountRepository) findOne(match func(Account) bool) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if match(account) {
			return account, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (r *InMemoryAccountRepository) findMany(match func(Account) bool) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var accounts []Account
	for _, account := range r.accounts {
		if match(account) {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *InMemoryAccountRepository) checkUnique(account Account) error {
	for _, other := range r.accounts {
		if other.ID == account.ID {
			continue
		}
		if other.Username == account.Username {
			return fmt.Errorf("%w: username %s", ErrUniquenessViolation, account.Username)
		}
		if other.Email == account.Email {
			return fmt.Errorf("%w: email %s", ErrUniquenessViolation, account.Email)
		}
		if account.TokenHash != "" && other.TokenHash == account.TokenHash {
			return fmt.Errorf("%w: token", ErrUniquenessViolation)
		}
	}
	return nil
}
