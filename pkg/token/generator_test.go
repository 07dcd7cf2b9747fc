package token

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomGeneratorProducesUniqueTokens(t *testing.T) {
	g := NewRandomGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		secret, err := g.Generate()
		require.NoError(t, err)
		require.False(t, secret.IsZero())

		value := secret.Reveal()
		assert.False(t, seen[value], "token must not repeat")
		seen[value] = true
	}
}

func TestRandomGeneratorTokenLength(t *testing.T) {
	g := NewRandomGenerator()

	secret, err := g.Generate()
	require.NoError(t, err)
	// 32 random bytes, base64 raw url encoded
	assert.Len(t, secret.Reveal(), 43)
}

func TestSecretRedaction(t *testing.T) {
	secret := NewSecret("super-secret-token")

	assert.Equal(t, "[REDACTED]", secret.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", secret))
	assert.Equal(t, "[REDACTED]", secret.LogValue().String())
	assert.Equal(t, "super-secret-token", secret.Reveal())
}

func TestSecretIsZero(t *testing.T) {
	assert.True(t, Secret{}.IsZero())
	assert.False(t, NewSecret("x").IsZero())
}
