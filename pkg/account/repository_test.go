package account

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tendant/simple-account/pkg/role"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	dbName := "account_db"
	dbUser := "account"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "account_db.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	fmt.Println("Connection string:", connString)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func seededRole(t *testing.T, pool *pgxpool.Pool, name string) role.Role {
	t.Helper()
	repo := role.NewPostgresRoleRepository(pool)
	r, err := repo.GetRoleByName(context.Background(), name)
	require.NoError(t, err)
	return r
}

func testAccount(username, email string, memberRole role.Role) Account {
	return Account{
		ID:            uuid.New(),
		Username:      username,
		PasswordHash:  "digest-" + username,
		FirstName:     "Alice",
		LastName:      "Smith",
		Email:         email,
		Status:        StatusPending,
		SecurityLevel: LevelConfidential,
		TokenHash:     "",
		Role:          memberRole,
	}
}

func TestPostgresAccountRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewPostgresAccountRepository(pool)
	memberRole := seededRole(t, pool, "Member")

	t.Run("CreateAndGet", func(t *testing.T) {
		created, err := repo.Create(ctx, testAccount("alice", "alice@example.com", memberRole))
		require.NoError(t, err)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, StatusPending, got.Status)
		assert.Equal(t, "Member", got.Role.Name)
		assert.ElementsMatch(t, []string{"account:read", "account:write"}, got.Role.PermissionNames())
		assert.Empty(t, got.TokenHash)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := repo.Create(ctx, testAccount("alice", "alice2@example.com", memberRole))
		assert.ErrorIs(t, err, ErrUniquenessViolation)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := repo.Create(ctx, testAccount("alice2", "alice@example.com", memberRole))
		assert.ErrorIs(t, err, ErrUniquenessViolation)
	})

	t.Run("EmptyTokenHashesDoNotConflict", func(t *testing.T) {
		_, err := repo.Create(ctx, testAccount("bob", "bob@example.com", memberRole))
		require.NoError(t, err)
		_, err = repo.Create(ctx, testAccount("carol", "carol@example.com", memberRole))
		require.NoError(t, err)
	})

	t.Run("DuplicateTokenHash", func(t *testing.T) {
		first := testAccount("dave", "dave@example.com", memberRole)
		first.TokenHash = "same-token-digest"
		_, err := repo.Create(ctx, first)
		require.NoError(t, err)

		second := testAccount("erin", "erin@example.com", memberRole)
		second.TokenHash = "same-token-digest"
		_, err = repo.Create(ctx, second)
		assert.ErrorIs(t, err, ErrUniquenessViolation)
	})

	t.Run("FindByTokenHashIgnoresStatus", func(t *testing.T) {
		got, err := repo.FindByTokenHash(ctx, "same-token-digest")
		require.NoError(t, err)
		assert.Equal(t, "dave", got.Username)
		assert.Equal(t, StatusPending, got.Status)
	})

	t.Run("CredentialLookupsFilterByStatus", func(t *testing.T) {
		_, err := repo.FindByUsernameAndPassword(ctx, "alice", "digest-alice", true)
		assert.ErrorIs(t, err, ErrAccountNotFound)

		pending, err := repo.FindByUsernameAndPassword(ctx, "alice", "digest-alice", false)
		require.NoError(t, err)

		pending.Status = StatusActive
		_, err = repo.Update(ctx, pending)
		require.NoError(t, err)

		active, err := repo.FindByUsernameAndPassword(ctx, "alice", "digest-alice", true)
		require.NoError(t, err)
		assert.Equal(t, pending.ID, active.ID)

		byEmail, err := repo.FindByEmailAndPassword(ctx, "alice@example.com", "digest-alice", true)
		require.NoError(t, err)
		assert.Equal(t, pending.ID, byEmail.ID)

		_, err = repo.FindByEmailAndPassword(ctx, "alice@example.com", "wrong-digest", true)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("UpdateClearsToken", func(t *testing.T) {
		got, err := repo.FindByTokenHash(ctx, "same-token-digest")
		require.NoError(t, err)

		got.TokenHash = ""
		got.Status = StatusActive
		updated, err := repo.Update(ctx, got)
		require.NoError(t, err)
		assert.Empty(t, updated.TokenHash)

		_, err = repo.FindByTokenHash(ctx, "same-token-digest")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("UpdateUnknownAccount", func(t *testing.T) {
		missing := testAccount("frank", "frank@example.com", memberRole)
		_, err := repo.Update(ctx, missing)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("FindByRoleAndFindAll", func(t *testing.T) {
		byRole, err := repo.FindByRole(ctx, memberRole.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, byRole)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), len(byRole))
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i-1].CreatedAt.Before(all[i].CreatedAt))
		}
	})
}
