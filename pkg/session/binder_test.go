package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBinderBindAndCurrent(t *testing.T) {
	ctx := context.Background()
	binder := NewMemoryBinder()

	_, ok := binder.Current(ctx)
	assert.False(t, ok)

	principal := Principal{
		AccountID:   uuid.New(),
		Username:    "pat",
		Email:       "pat@example.com",
		Authorities: []string{"read", "write"},
	}
	require.NoError(t, binder.Bind(ctx, principal))

	current, ok := binder.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, principal, current)
}

func TestMemoryBinderClear(t *testing.T) {
	ctx := context.Background()
	binder := NewMemoryBinder()

	require.NoError(t, binder.Bind(ctx, Principal{Username: "pat"}))
	require.NoError(t, binder.Clear(ctx))

	_, ok := binder.Current(ctx)
	assert.False(t, ok)
}

func TestPrincipalHasAuthority(t *testing.T) {
	p := Principal{Authorities: []string{"admin", "read"}}

	assert.True(t, p.HasAuthority("admin"))
	assert.False(t, p.HasAuthority("write"))
	assert.False(t, Principal{}.HasAuthority("admin"))
}
