package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPBKDF2HasherDeterministic(t *testing.T) {
	h := NewPBKDF2Hasher("test-pepper")

	first := h.Hash("pwd")
	second := h.Hash("pwd")
	assert.Equal(t, first, second, "same plaintext must hash to the same digest")
	assert.NotEmpty(t, first)
}

func TestPBKDF2HasherDistinctInputs(t *testing.T) {
	h := NewPBKDF2Hasher("test-pepper")

	assert.NotEqual(t, h.Hash("pwd"), h.Hash("pwd2"))
	assert.NotEqual(t, h.Hash("pwd"), h.Hash(""))
}

func TestPBKDF2HasherPepperChangesDigest(t *testing.T) {
	a := NewPBKDF2Hasher("pepper-a")
	b := NewPBKDF2Hasher("pepper-b")

	assert.NotEqual(t, a.Hash("pwd"), b.Hash("pwd"))
}

func TestPBKDF2HasherOptions(t *testing.T) {
	h := NewPBKDF2Hasher("pepper", WithIterations(1000), WithKeyLength(16))

	digest := h.Hash("pwd")
	// hex-encoded 16 byte key
	assert.Len(t, digest, 32)
}
